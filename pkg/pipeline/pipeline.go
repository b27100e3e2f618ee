// Package pipeline orchestrates webhook processing: normalize, correlate,
// triage, apply policy, then write back to Jira and Slack.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/codeready-toolchain/autopilot/pkg/audit"
	"github.com/codeready-toolchain/autopilot/pkg/correlate"
	"github.com/codeready-toolchain/autopilot/pkg/llm"
	"github.com/codeready-toolchain/autopilot/pkg/metrics"
	"github.com/codeready-toolchain/autopilot/pkg/models"
	"github.com/codeready-toolchain/autopilot/pkg/normalize"
	"github.com/codeready-toolchain/autopilot/pkg/policy"
	"github.com/codeready-toolchain/autopilot/pkg/slack"
)

// RecordStore persists incidents for future correlation lookups.
type RecordStore interface {
	UpsertIncident(ctx context.Context, rec *models.CorrelationRecord) error
}

// JiraUpdater writes the triage outcome back to the ticket.
type JiraUpdater interface {
	UpdateIssue(ctx context.Context, out *models.TriageOutput) error
}

// SlackPoster sends the incident notification.
type SlackPoster interface {
	Post(ctx context.Context, msg *slack.Message) error
	Channel() string
}

// Pipeline wires the triage stages together. External side effects (Jira,
// Slack) are best-effort: their failures are audited and counted but never
// fail the webhook. An LLM failure is fatal.
type Pipeline struct {
	store       RecordStore
	auditor     *audit.Logger
	correlator  *correlate.Correlator
	provider    llm.Provider
	policies    *policy.Engine
	jira        JiraUpdater
	slack       SlackPoster
	counters    *metrics.Counters
	jiraBaseURL string
	dryRun      bool
	log         *slog.Logger
}

// Config collects the pipeline's collaborators.
type Config struct {
	Store       RecordStore
	Auditor     *audit.Logger
	Correlator  *correlate.Correlator
	Provider    llm.Provider
	Policies    *policy.Engine
	Jira        JiraUpdater
	Slack       SlackPoster
	Counters    *metrics.Counters
	JiraBaseURL string
	DryRun      bool
}

// New creates a Pipeline.
func New(cfg Config) *Pipeline {
	return &Pipeline{
		store:       cfg.Store,
		auditor:     cfg.Auditor,
		correlator:  cfg.Correlator,
		provider:    cfg.Provider,
		policies:    cfg.Policies,
		jira:        cfg.Jira,
		slack:       cfg.Slack,
		counters:    cfg.Counters,
		jiraBaseURL: cfg.JiraBaseURL,
		dryRun:      cfg.DryRun,
		log:         slog.Default().With("component", "pipeline"),
	}
}

// Result summarizes a processed webhook for the HTTP response.
type Result struct {
	Skipped bool
	Message string
	Output  *models.TriageOutput
}

// ProcessWebhook runs the full triage flow for one webhook payload. A
// non-incident payload yields a skipped Result, not an error.
func (p *Pipeline) ProcessWebhook(ctx context.Context, payload map[string]any) (*Result, error) {
	p.counters.WebhooksReceived.Add(1)

	inc, err := normalize.Normalize(payload)
	if err != nil {
		return nil, fmt.Errorf("normalize payload: %w", err)
	}
	if inc == nil {
		return &Result{Skipped: true, Message: "Skipped: not an incident"}, nil
	}

	p.auditor.WebhookReceived(ctx, inc.JiraKey, map[string]any{
		"summary":   inc.Summary,
		"component": inc.Component,
	})
	p.auditor.Normalization(ctx, inc.JiraKey, inc.Component, inc.Environment)

	correlated, correlatedWith := p.correlateIncident(ctx, inc)
	p.recordIncident(ctx, inc)

	p.counters.LLMCalls.Add(1)
	verdict, err := p.provider.Triage(ctx, inc)
	if err != nil {
		p.counters.LLMErrors.Add(1)
		p.auditor.LLMTriage(ctx, inc.JiraKey, nil, err.Error())
		return nil, fmt.Errorf("triage incident %s: %w", inc.JiraKey, err)
	}
	p.counters.IncidentsTriaged.Add(1)
	p.auditor.LLMTriage(ctx, inc.JiraKey, verdict, "")

	decision := p.policies.Apply(inc, verdict)
	if decision.SeverityOverridden {
		p.counters.PolicyOverrides.Add(1)
		p.auditor.PolicyOverride(ctx, inc.JiraKey, decision.OriginalSeverity, decision.FinalSeverity, decision.OverrideReason)
	}
	if decision.NeedsHumanReview {
		p.counters.HumanReviewRequired.Add(1)
		p.auditor.HumanReviewRequired(ctx, inc.JiraKey, decision.Confidence)
	}

	out := &models.TriageOutput{
		Incident:       inc,
		Verdict:        verdict,
		Policy:         decision,
		Correlated:     correlated,
		CorrelatedWith: correlatedWith,
	}

	p.updateJira(ctx, out)
	p.postSlack(ctx, out)

	p.counters.WebhooksProcessed.Add(1)
	return &Result{
		Message: fmt.Sprintf("Incident triaged as %s (%s)", decision.FinalSeverity, verdict.Category),
		Output:  out,
	}, nil
}

// correlateIncident looks up recent related incidents. Lookup failures are
// logged and treated as no correlation.
func (p *Pipeline) correlateIncident(ctx context.Context, inc *models.Incident) (bool, string) {
	correlated, with, err := p.correlator.Check(ctx, inc)
	if err != nil {
		p.log.Warn("Correlation lookup failed", "jira_key", inc.JiraKey, "error", err)
		return false, ""
	}
	if correlated {
		p.counters.IncidentsCorrelated.Add(1)
	}
	p.auditor.Correlation(ctx, inc.JiraKey, with, inc.Component)
	return correlated, with
}

// recordIncident stores the incident for future correlation. Recorded after
// the lookup so an incident never correlates with itself.
func (p *Pipeline) recordIncident(ctx context.Context, inc *models.Incident) {
	err := p.store.UpsertIncident(ctx, &models.CorrelationRecord{
		JiraKey:     inc.JiraKey,
		Summary:     inc.Summary,
		Component:   inc.Component,
		Environment: inc.Environment,
		CreatedAt:   inc.CreatedAt,
	})
	if err != nil {
		p.log.Warn("Failed to record incident", "jira_key", inc.JiraKey, "error", err)
	}
}

func (p *Pipeline) updateJira(ctx context.Context, out *models.TriageOutput) {
	if p.dryRun {
		p.auditor.DryRunAction(ctx, out.Incident.JiraKey, "update_jira", out.Incident.JiraKey, map[string]any{
			"priority": string(out.Policy.FinalSeverity),
			"labels":   out.Policy.LabelsToAdd,
		})
		return
	}
	if err := p.jira.UpdateIssue(ctx, out); err != nil {
		p.counters.JiraErrors.Add(1)
		p.auditor.JiraUpdate(ctx, out.Incident.JiraKey, "update", err.Error())
		p.log.Error("Jira update failed", "jira_key", out.Incident.JiraKey, "error", err)
		return
	}
	p.counters.JiraUpdates.Add(1)
	p.auditor.JiraUpdate(ctx, out.Incident.JiraKey, "update", "")
}

func (p *Pipeline) postSlack(ctx context.Context, out *models.TriageOutput) {
	msg := slack.BuildIncidentMessage(out, p.jiraBaseURL)
	if p.dryRun {
		p.auditor.DryRunAction(ctx, out.Incident.JiraKey, "post_slack", p.slack.Channel(), map[string]any{
			"fallback": msg.Fallback,
		})
		return
	}
	if err := p.slack.Post(ctx, msg); err != nil {
		p.counters.SlackErrors.Add(1)
		p.auditor.SlackPost(ctx, out.Incident.JiraKey, p.slack.Channel(), err.Error())
		p.log.Error("Slack post failed", "jira_key", out.Incident.JiraKey, "error", err)
		return
	}
	p.counters.SlackPosts.Add(1)
	p.auditor.SlackPost(ctx, out.Incident.JiraKey, p.slack.Channel(), "")
}
