package models

import "time"

// IncidentStatus is the web incident lifecycle state.
type IncidentStatus string

const (
	StatusPending    IncidentStatus = "pending"
	StatusTriaged    IncidentStatus = "triaged"
	StatusApproved   IncidentStatus = "approved"
	StatusRejected   IncidentStatus = "rejected"
	StatusOverridden IncidentStatus = "overridden"
	StatusResolved   IncidentStatus = "resolved"
)

// IsValidStatus reports whether s names a lifecycle state.
func IsValidStatus(s string) bool {
	switch IncidentStatus(s) {
	case StatusPending, StatusTriaged, StatusApproved, StatusRejected,
		StatusOverridden, StatusResolved:
		return true
	}
	return false
}

// TriageResult is the embedded triage outcome stored with a web incident.
// It combines the LLM verdict, the committed policy severity, the risk
// score and the matched runbooks.
type TriageResult struct {
	Category             IncidentCategory `json:"incident_type"`
	Severity             Severity         `json:"severity"`
	Confidence           float64          `json:"confidence"`
	RiskScore            float64          `json:"risk_score"`
	RiskLevel            string           `json:"risk_level"`
	OwnerTeam            string           `json:"owner_team"`
	ShortSummary         string           `json:"short_summary"`
	FirstActions         []string         `json:"first_actions"`
	PrimaryRunbook       *RunbookFit      `json:"primary_runbook,omitempty"`
	AlternativeRunbooks  []RunbookFit     `json:"alternative_runbooks,omitempty"`
	NeedsHumanReview     bool             `json:"needs_human_review"`
	PolicyOverrideReason string           `json:"policy_override_reason,omitempty"`
}

// WebIncident is a stored, mutable incident created through the web form.
// Unlike webhook incidents it lives forever in the store and moves through
// the lifecycle state machine.
type WebIncident struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Component        string         `json:"component"`
	Environment      Environment    `json:"environment"`
	Reporter         string         `json:"reporter"`
	Status           IncidentStatus `json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	Triage           *TriageResult  `json:"triage,omitempty"`
	DecisionBy       string         `json:"decision_by,omitempty"`
	DecisionAt       *time.Time     `json:"decision_at,omitempty"`
	DecisionNote     string         `json:"decision_note,omitempty"`
	OriginalSeverity Severity       `json:"original_severity,omitempty"`
}

// WebIncidentListItem is the summary row for paginated incident listings.
type WebIncidentListItem struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Component        string         `json:"component"`
	Environment      Environment    `json:"environment"`
	Status           IncidentStatus `json:"status"`
	Severity         Severity       `json:"severity,omitempty"`
	RiskScore        float64        `json:"risk_score,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	NeedsHumanReview bool           `json:"needs_human_review"`
}

// ListItem projects the incident into its listing summary.
func (w *WebIncident) ListItem() WebIncidentListItem {
	item := WebIncidentListItem{
		ID:          w.ID,
		Title:       w.Title,
		Component:   w.Component,
		Environment: w.Environment,
		Status:      w.Status,
		CreatedAt:   w.CreatedAt,
	}
	if w.Triage != nil {
		item.Severity = w.Triage.Severity
		item.RiskScore = w.Triage.RiskScore
		item.NeedsHumanReview = w.Triage.NeedsHumanReview
	}
	return item
}
