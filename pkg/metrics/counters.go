// Package metrics holds the process-lifetime pipeline counters exposed on
// the metrics endpoint.
package metrics

import "sync/atomic"

// Counters is the full set of pipeline counters. All fields are safe for
// concurrent use; counts reset on process restart.
type Counters struct {
	WebhooksReceived  atomic.Int64
	WebhooksProcessed atomic.Int64
	WebhooksRejected  atomic.Int64

	IncidentsTriaged    atomic.Int64
	IncidentsCorrelated atomic.Int64

	LLMCalls  atomic.Int64
	LLMErrors atomic.Int64

	JiraUpdates atomic.Int64
	JiraErrors  atomic.Int64

	SlackPosts  atomic.Int64
	SlackErrors atomic.Int64

	PolicyOverrides     atomic.Int64
	HumanReviewRequired atomic.Int64
}

// New creates a zeroed counter set.
func New() *Counters {
	return &Counters{}
}

// Snapshot returns the current counter values keyed for the JSON metrics
// response.
func (c *Counters) Snapshot() map[string]int64 {
	return map[string]int64{
		"webhooks_received":     c.WebhooksReceived.Load(),
		"webhooks_processed":    c.WebhooksProcessed.Load(),
		"webhooks_rejected":     c.WebhooksRejected.Load(),
		"incidents_triaged":     c.IncidentsTriaged.Load(),
		"incidents_correlated":  c.IncidentsCorrelated.Load(),
		"llm_calls":             c.LLMCalls.Load(),
		"llm_errors":            c.LLMErrors.Load(),
		"jira_updates":          c.JiraUpdates.Load(),
		"jira_errors":           c.JiraErrors.Load(),
		"slack_posts":           c.SlackPosts.Load(),
		"slack_errors":          c.SlackErrors.Load(),
		"policy_overrides":      c.PolicyOverrides.Load(),
		"human_review_required": c.HumanReviewRequired.Load(),
	}
}
