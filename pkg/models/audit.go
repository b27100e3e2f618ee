package models

import "time"

// Audit event statuses. The set is closed; new statuses need a schema note.
const (
	AuditStatusSuccess = "success"
	AuditStatusFailure = "failure"
	AuditStatusSkipped = "skipped"
	AuditStatusNoMatch = "no_match"
	AuditStatusFlagged = "flagged"
	AuditStatusApplied = "applied"
)

// Audit event types emitted by the pipeline and the web-UI lifecycle.
const (
	AuditWebhook            = "webhook"
	AuditNormalization      = "normalization"
	AuditCorrelation        = "correlation"
	AuditLLMTriage          = "llm_triage"
	AuditPolicy             = "policy"
	AuditJira               = "jira"
	AuditSlack              = "slack"
	AuditDryRun             = "dry_run"
	AuditIncidentCreated    = "incident_created"
	AuditIncidentTriaged    = "incident_triaged"
	AuditIncidentApproved   = "incident_approved"
	AuditIncidentOverridden = "incident_overridden"
	AuditIncidentResolved   = "incident_resolved"
	AuditIncidentTriageFail = "incident_triage_failed"
	AuditPIRGenerated       = "pir_generated"
	AuditIncidentDecision   = "incident_decision"
)

// AuditEvent is one append-only audit trail entry. Events are written to
// both the durable store and the JSONL log; there is no update or delete.
type AuditEvent struct {
	ID        int64          `json:"id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	EventType string         `json:"event_type"`
	JiraKey   string         `json:"jira_key,omitempty"`
	Component string         `json:"component,omitempty"`
	Severity  string         `json:"severity,omitempty"`
	Action    string         `json:"action"`
	Status    string         `json:"status"`
	Details   map[string]any `json:"details"`
	DryRun    bool           `json:"dry_run"`
}
