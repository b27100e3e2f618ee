// Package services implements the web incident lifecycle: create, triage,
// approve, override, resolve, plus post-incident reports.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/autopilot/pkg/audit"
	"github.com/codeready-toolchain/autopilot/pkg/database"
	"github.com/codeready-toolchain/autopilot/pkg/llm"
	"github.com/codeready-toolchain/autopilot/pkg/models"
	"github.com/codeready-toolchain/autopilot/pkg/policy"
	"github.com/codeready-toolchain/autopilot/pkg/risk"
	"github.com/codeready-toolchain/autopilot/pkg/runbook"
)

// IncidentStore is the persistence surface the service needs. Satisfied by
// *database.Client.
type IncidentStore interface {
	InsertWebIncident(ctx context.Context, inc *models.WebIncident) error
	UpdateWebIncident(ctx context.Context, inc *models.WebIncident) error
	GetWebIncident(ctx context.Context, id string) (*models.WebIncident, error)
	ListWebIncidents(ctx context.Context, status models.IncidentStatus, limit, offset int) ([]models.WebIncident, int, error)
	GetAuditEventsByKey(ctx context.Context, jiraKey string) ([]models.AuditEvent, error)
}

// IncidentService drives the web incident state machine.
type IncidentService struct {
	store        IncidentStore
	auditor      *audit.Logger
	mockProvider llm.Provider
	realProvider llm.Provider
	policies     *policy.Engine
	matcher      *runbook.Matcher
	log          *slog.Logger
	now          func() time.Time
}

// NewIncidentService creates the service. realProvider may equal
// mockProvider when no hosted model is configured.
func NewIncidentService(store IncidentStore, auditor *audit.Logger, mockProvider, realProvider llm.Provider, policies *policy.Engine, matcher *runbook.Matcher) *IncidentService {
	return &IncidentService{
		store:        store,
		auditor:      auditor,
		mockProvider: mockProvider,
		realProvider: realProvider,
		policies:     policies,
		matcher:      matcher,
		log:          slog.Default().With("component", "incident-service"),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CreateRequest carries the fields of a new incident.
type CreateRequest struct {
	Title       string
	Description string
	Component   string
	Environment string
	Reporter    string
}

// Create stores a new incident in pending state. Creation never triages;
// triage is a separate, explicit step.
func (s *IncidentService) Create(ctx context.Context, req CreateRequest) (*models.WebIncident, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, validationErr("title", "must not be empty")
	}
	component := strings.TrimSpace(req.Component)
	if component == "" {
		component = "unknown"
	}
	reporter := strings.TrimSpace(req.Reporter)
	if reporter == "" {
		reporter = "unknown"
	}

	now := s.now()
	inc := &models.WebIncident{
		ID:          uuid.New().String()[:8],
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Component:   component,
		Environment: models.ParseEnvironment(req.Environment),
		Reporter:    reporter,
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.InsertWebIncident(ctx, inc); err != nil {
		return nil, fmt.Errorf("store incident: %w", err)
	}

	s.auditor.Log(ctx, audit.Entry{
		EventType: models.AuditIncidentCreated,
		Action:    "created",
		Status:    models.AuditStatusSuccess,
		JiraKey:   inc.ID,
		Component: inc.Component,
		Details: map[string]any{
			"title":       inc.Title,
			"environment": string(inc.Environment),
			"reporter":    inc.Reporter,
		},
	})
	return inc, nil
}

// Triage runs the triage chain over a pending or rejected incident and
// moves it to triaged. useRealProvider selects the configured hosted model
// instead of the default mock.
func (s *IncidentService) Triage(ctx context.Context, id string, useRealProvider bool) (*models.WebIncident, error) {
	inc, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inc.Status != models.StatusPending && inc.Status != models.StatusRejected {
		return nil, fmt.Errorf("%w: cannot triage from %s", ErrInvalidTransition, inc.Status)
	}

	provider := s.mockProvider
	if useRealProvider {
		provider = s.realProvider
	}

	pseudo := s.asPipelineIncident(inc)
	verdict, err := provider.Triage(ctx, pseudo)
	if err != nil {
		s.auditor.Log(ctx, audit.Entry{
			EventType: models.AuditIncidentTriageFail,
			Action:    "triage",
			Status:    models.AuditStatusFailure,
			JiraKey:   inc.ID,
			Details:   map[string]any{"provider": provider.Name(), "error": err.Error()},
		})
		return nil, fmt.Errorf("triage incident %s: %w", inc.ID, err)
	}

	decision := s.policies.Apply(pseudo, verdict)
	inc.Triage = s.buildTriageResult(pseudo, verdict, decision)
	inc.Status = models.StatusTriaged
	inc.UpdatedAt = s.now()

	if err := s.store.UpdateWebIncident(ctx, inc); err != nil {
		return nil, s.mapStoreErr(err)
	}

	s.auditor.Log(ctx, audit.Entry{
		EventType: models.AuditIncidentTriaged,
		Action:    "triaged",
		Status:    models.AuditStatusSuccess,
		JiraKey:   inc.ID,
		Component: inc.Component,
		Severity:  string(inc.Triage.Severity),
		Details: map[string]any{
			"provider":   provider.Name(),
			"risk_score": inc.Triage.RiskScore,
			"risk_level": inc.Triage.RiskLevel,
		},
	})
	return inc, nil
}

// Approve accepts a triaged verdict as-is.
func (s *IncidentService) Approve(ctx context.Context, id, by, note string) (*models.WebIncident, error) {
	inc, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inc.Status != models.StatusTriaged {
		return nil, fmt.Errorf("%w: cannot approve from %s", ErrInvalidTransition, inc.Status)
	}

	s.recordDecision(inc, models.StatusApproved, by, note)
	if err := s.store.UpdateWebIncident(ctx, inc); err != nil {
		return nil, s.mapStoreErr(err)
	}

	s.auditor.Log(ctx, audit.Entry{
		EventType: models.AuditIncidentApproved,
		Action:    "approved",
		Status:    models.AuditStatusSuccess,
		JiraKey:   inc.ID,
		Severity:  string(inc.Triage.Severity),
		Details:   map[string]any{"by": by, "note": note},
	})
	return inc, nil
}

// Reject discards a triaged verdict. The triage result stays on the record
// so the rejection is reviewable; a rejected incident can be re-triaged or
// resolved.
func (s *IncidentService) Reject(ctx context.Context, id, by, note string) (*models.WebIncident, error) {
	inc, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inc.Status != models.StatusTriaged {
		return nil, fmt.Errorf("%w: cannot reject from %s", ErrInvalidTransition, inc.Status)
	}

	s.recordDecision(inc, models.StatusRejected, by, note)
	if err := s.store.UpdateWebIncident(ctx, inc); err != nil {
		return nil, s.mapStoreErr(err)
	}

	s.auditor.Log(ctx, audit.Entry{
		EventType: models.AuditIncidentDecision,
		Action:    "rejected",
		Status:    models.AuditStatusSuccess,
		JiraKey:   inc.ID,
		Severity:  string(inc.Triage.Severity),
		Details:   map[string]any{"by": by, "note": note},
	})
	return inc, nil
}

// OverrideRequest carries a human correction of the triage verdict. Reason
// is mandatory; at least one of Severity or Category must be set.
type OverrideRequest struct {
	By       string
	Reason   string
	Severity string
	Category string
}

// Override replaces parts of a triaged verdict and recomputes the derived
// risk score and runbook ranking.
func (s *IncidentService) Override(ctx context.Context, id string, req OverrideRequest) (*models.WebIncident, error) {
	if strings.TrimSpace(req.Reason) == "" {
		return nil, validationErr("reason", "must not be empty")
	}
	if req.Severity == "" && req.Category == "" {
		return nil, validationErr("override", "requires a new severity or category")
	}
	if req.Severity != "" && !models.IsValidSeverity(req.Severity) {
		return nil, validationErr("severity", fmt.Sprintf("%q is not a severity", req.Severity))
	}
	if req.Category != "" && !models.IsValidCategory(req.Category) {
		return nil, validationErr("category", fmt.Sprintf("%q is not an incident type", req.Category))
	}

	inc, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inc.Status != models.StatusTriaged {
		return nil, fmt.Errorf("%w: cannot override from %s", ErrInvalidTransition, inc.Status)
	}

	// First override preserves what the model originally said.
	if inc.OriginalSeverity == "" {
		inc.OriginalSeverity = inc.Triage.Severity
	}
	if req.Severity != "" {
		inc.Triage.Severity = models.Severity(req.Severity)
	}
	if req.Category != "" {
		inc.Triage.Category = models.IncidentCategory(req.Category)
	}

	// Recompute everything derived from severity and category.
	inc.Triage.RiskScore = risk.Score(inc.Triage.Severity, inc.Triage.Confidence, inc.Environment)
	inc.Triage.RiskLevel = risk.Level(inc.Triage.RiskScore)
	primary, alternatives := s.matcher.Match(s.asPipelineIncident(inc), inc.Triage.Category)
	inc.Triage.PrimaryRunbook = primary
	inc.Triage.AlternativeRunbooks = alternatives

	s.recordDecision(inc, models.StatusOverridden, req.By, req.Reason)
	if err := s.store.UpdateWebIncident(ctx, inc); err != nil {
		return nil, s.mapStoreErr(err)
	}

	s.auditor.Log(ctx, audit.Entry{
		EventType: models.AuditIncidentOverridden,
		Action:    "overridden",
		Status:    models.AuditStatusApplied,
		JiraKey:   inc.ID,
		Severity:  string(inc.Triage.Severity),
		Details: map[string]any{
			"by":                req.By,
			"reason":            req.Reason,
			"original_severity": string(inc.OriginalSeverity),
			"new_severity":      string(inc.Triage.Severity),
			"new_category":      string(inc.Triage.Category),
		},
	})
	return inc, nil
}

// Resolve closes an incident. The incident must carry a triage result;
// resolved is terminal.
func (s *IncidentService) Resolve(ctx context.Context, id, by, note string) (*models.WebIncident, error) {
	inc, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inc.Status == models.StatusResolved {
		return nil, fmt.Errorf("%w: already resolved", ErrInvalidTransition)
	}
	if inc.Triage == nil {
		return nil, ErrNotTriaged
	}

	s.recordDecision(inc, models.StatusResolved, by, note)
	if err := s.store.UpdateWebIncident(ctx, inc); err != nil {
		return nil, s.mapStoreErr(err)
	}

	s.auditor.Log(ctx, audit.Entry{
		EventType: models.AuditIncidentResolved,
		Action:    "resolved",
		Status:    models.AuditStatusSuccess,
		JiraKey:   inc.ID,
		Severity:  string(inc.Triage.Severity),
		Details:   map[string]any{"by": by, "note": note},
	})
	return inc, nil
}

// Get returns one incident.
func (s *IncidentService) Get(ctx context.Context, id string) (*models.WebIncident, error) {
	return s.get(ctx, id)
}

// List returns incident summaries newest first, optionally filtered by
// status, along with the total count.
func (s *IncidentService) List(ctx context.Context, status string, limit, offset int) ([]models.WebIncidentListItem, int, error) {
	if status != "" && !models.IsValidStatus(status) {
		return nil, 0, validationErr("status", fmt.Sprintf("%q is not a status", status))
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	incidents, total, err := s.store.ListWebIncidents(ctx, models.IncidentStatus(status), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list incidents: %w", err)
	}
	items := make([]models.WebIncidentListItem, 0, len(incidents))
	for i := range incidents {
		items = append(items, incidents[i].ListItem())
	}
	return items, total, nil
}

// AuditTrail returns the audit events recorded for an incident, oldest
// first.
func (s *IncidentService) AuditTrail(ctx context.Context, id string) ([]models.AuditEvent, error) {
	if _, err := s.get(ctx, id); err != nil {
		return nil, err
	}
	events, err := s.store.GetAuditEventsByKey(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load audit trail: %w", err)
	}
	return events, nil
}

func (s *IncidentService) get(ctx context.Context, id string) (*models.WebIncident, error) {
	inc, err := s.store.GetWebIncident(ctx, id)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	return inc, nil
}

func (s *IncidentService) mapStoreErr(err error) error {
	if errors.Is(err, database.ErrWebIncidentNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *IncidentService) recordDecision(inc *models.WebIncident, status models.IncidentStatus, by, note string) {
	now := s.now()
	inc.Status = status
	inc.UpdatedAt = now
	inc.DecisionBy = strings.TrimSpace(by)
	inc.DecisionAt = &now
	inc.DecisionNote = strings.TrimSpace(note)
}

// asPipelineIncident adapts a web incident to the shape the policy engine
// and runbook matcher work on.
func (s *IncidentService) asPipelineIncident(inc *models.WebIncident) *models.Incident {
	return &models.Incident{
		JiraKey:     inc.ID,
		Summary:     inc.Title,
		Description: inc.Description,
		Component:   inc.Component,
		Environment: inc.Environment,
		Reporter:    inc.Reporter,
		CreatedAt:   inc.CreatedAt,
	}
}

func (s *IncidentService) buildTriageResult(pseudo *models.Incident, verdict *models.Verdict, decision *models.PolicyResult) *models.TriageResult {
	score := risk.Score(decision.FinalSeverity, verdict.Confidence, pseudo.Environment)
	primary, alternatives := s.matcher.Match(pseudo, verdict.Category)
	return &models.TriageResult{
		Category:             verdict.Category,
		Severity:             decision.FinalSeverity,
		Confidence:           verdict.Confidence,
		RiskScore:            score,
		RiskLevel:            risk.Level(score),
		OwnerTeam:            verdict.OwnerTeam,
		ShortSummary:         verdict.ShortSummary,
		FirstActions:         verdict.FirstActions,
		PrimaryRunbook:       primary,
		AlternativeRunbooks:  alternatives,
		NeedsHumanReview:     decision.NeedsHumanReview,
		PolicyOverrideReason: decision.OverrideReason,
	}
}
