package audit

import (
	"context"

	"github.com/codeready-toolchain/autopilot/pkg/models"
)

// Typed helpers for the pipeline's audit points. Each maps to one event
// type from the closed set in pkg/models.

// WebhookReceived records receipt of an incident webhook.
func (l *Logger) WebhookReceived(ctx context.Context, jiraKey string, details map[string]any) {
	l.Log(ctx, Entry{
		EventType: models.AuditWebhook,
		Action:    "received",
		Status:    models.AuditStatusSuccess,
		JiraKey:   jiraKey,
		Details:   details,
	})
}

// Normalization records a successful payload normalization.
func (l *Logger) Normalization(ctx context.Context, jiraKey, component string, env models.Environment) {
	l.Log(ctx, Entry{
		EventType: models.AuditNormalization,
		Action:    "normalized",
		Status:    models.AuditStatusSuccess,
		JiraKey:   jiraKey,
		Component: component,
		Details:   map[string]any{"environment": string(env)},
	})
}

// Correlation records a correlation lookup result. correlatedWith is empty
// when no match was found.
func (l *Logger) Correlation(ctx context.Context, jiraKey, correlatedWith, component string) {
	status := models.AuditStatusNoMatch
	if correlatedWith != "" {
		status = models.AuditStatusSuccess
	}
	l.Log(ctx, Entry{
		EventType: models.AuditCorrelation,
		Action:    "checked",
		Status:    status,
		JiraKey:   jiraKey,
		Component: component,
		Details:   map[string]any{"correlated_with": correlatedWith},
	})
}

// LLMTriage records a triage call outcome.
func (l *Logger) LLMTriage(ctx context.Context, jiraKey string, verdict *models.Verdict, errMsg string) {
	details := map[string]any{}
	status := models.AuditStatusSuccess
	severity := ""
	if verdict != nil {
		details["incident_type"] = string(verdict.Category)
		details["severity"] = string(verdict.Severity)
		details["confidence"] = verdict.Confidence
		severity = string(verdict.Severity)
	}
	if errMsg != "" {
		status = models.AuditStatusFailure
		details["error"] = errMsg
	}
	l.Log(ctx, Entry{
		EventType: models.AuditLLMTriage,
		Action:    "triaged",
		Status:    status,
		JiraKey:   jiraKey,
		Severity:  severity,
		Details:   details,
	})
}

// PolicyOverride records a guardrail severity override.
func (l *Logger) PolicyOverride(ctx context.Context, jiraKey string, original, final models.Severity, reason string) {
	l.Log(ctx, Entry{
		EventType: models.AuditPolicy,
		Action:    "override",
		Status:    models.AuditStatusApplied,
		JiraKey:   jiraKey,
		Severity:  string(final),
		Details: map[string]any{
			"original_severity": string(original),
			"final_severity":    string(final),
			"reason":            reason,
		},
	})
}

// HumanReviewRequired records the low-confidence gate firing.
func (l *Logger) HumanReviewRequired(ctx context.Context, jiraKey string, confidence float64) {
	l.Log(ctx, Entry{
		EventType: models.AuditPolicy,
		Action:    "human_review_required",
		Status:    models.AuditStatusFlagged,
		JiraKey:   jiraKey,
		Details:   map[string]any{"confidence": confidence},
	})
}

// JiraUpdate records a ticketing side-effect outcome.
func (l *Logger) JiraUpdate(ctx context.Context, jiraKey, action string, errMsg string) {
	details := map[string]any{}
	status := models.AuditStatusSuccess
	if errMsg != "" {
		status = models.AuditStatusFailure
		details["error"] = errMsg
	}
	l.Log(ctx, Entry{
		EventType: models.AuditJira,
		Action:    action,
		Status:    status,
		JiraKey:   jiraKey,
		Details:   details,
	})
}

// SlackPost records a chat side-effect outcome.
func (l *Logger) SlackPost(ctx context.Context, jiraKey, channel string, errMsg string) {
	details := map[string]any{"channel": channel}
	status := models.AuditStatusSuccess
	if errMsg != "" {
		status = models.AuditStatusFailure
		details["error"] = errMsg
	}
	l.Log(ctx, Entry{
		EventType: models.AuditSlack,
		Action:    "posted",
		Status:    status,
		JiraKey:   jiraKey,
		Details:   details,
	})
}

// DryRunAction records an external action that was skipped in dry-run mode.
func (l *Logger) DryRunAction(ctx context.Context, jiraKey, action, target string, details map[string]any) {
	merged := map[string]any{"target": target}
	for k, v := range details {
		merged[k] = v
	}
	l.Log(ctx, Entry{
		EventType: models.AuditDryRun,
		Action:    "would_have_" + action,
		Status:    models.AuditStatusSkipped,
		JiraKey:   jiraKey,
		Details:   merged,
	})
}
