// Package policy applies deterministic guardrails on top of the model
// verdict. Rules run in a fixed order; the model proposes, policy disposes.
package policy

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/codeready-toolchain/autopilot/pkg/models"
)

// confidenceFloor is the threshold below which a verdict is flagged for
// human review.
const confidenceFloor = 0.70

var outageKeywords = compileKeywords(
	`\boutage\b`,
	`\bdown\b`,
	`\bservice unavailable\b`,
	`\b500\b`,
	`\berror rate spike\b`,
	`\bcannot\b`,
	`\bfailing\b`,
	`\btimeouts?\b`,
)

var securityKeywords = compileKeywords(
	`\bsecurity\b`,
	`\bbreach\b`,
	`\bunauthorized\b`,
	`\bleak\b`,
	`\bexfiltration\b`,
	`\bexploit\b`,
	`\bvulnerability\b`,
	`\bcve\b`,
)

func compileKeywords(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// Engine evaluates the guardrail rules.
type Engine struct {
	log *slog.Logger
}

// NewEngine creates the policy engine.
func NewEngine() *Engine {
	return &Engine{log: slog.Default().With("component", "policy")}
}

// Apply runs the guardrails over a verdict and returns the final decision.
// Rule order:
//  1. non-production incidents are capped at P3
//  2. otherwise, production incidents with outage language are raised to at
//     least P2
//  3. production incidents with security language are always P1
//  4. low model confidence flags the verdict for human review
//
// The security rule runs after the outage rule and can override its result.
// The confidence gate never changes severity.
func (e *Engine) Apply(inc *models.Incident, verdict *models.Verdict) *models.PolicyResult {
	original := verdict.Severity
	final := original
	reason := ""

	text := inc.Summary + " " + inc.Description
	isProd := inc.Environment == models.EnvProd

	if !isProd && final.MoreSevereThan(models.SeverityP3) {
		final = models.SeverityP3
		reason = fmt.Sprintf("Non-production environment (%s) capped to P3", inc.Environment)
	} else if isProd && matchesAny(text, outageKeywords) && final.LessSevereThan(models.SeverityP2) {
		final = models.SeverityP2
		reason = "Production outage keywords detected, raised to P2"
	}

	if isProd && matchesAny(text, securityKeywords) && final != models.SeverityP1 {
		final = models.SeverityP1
		reason = "Production security keywords detected, set to P1"
	}

	needsReview := verdict.Confidence < confidenceFloor

	overridden := final != original
	if overridden {
		e.log.Info("Policy override",
			"jira_key", inc.JiraKey,
			"original_severity", original,
			"final_severity", final,
			"reason", reason)
	}
	if needsReview {
		e.log.Info("Human review required",
			"jira_key", inc.JiraKey, "confidence", verdict.Confidence)
	}

	labels := []string{
		"autopilot",
		"type:" + string(verdict.Category),
		"sev:" + string(final),
	}
	if needsReview {
		labels = append(labels, "needs-review")
	}

	return &models.PolicyResult{
		OriginalSeverity:   original,
		FinalSeverity:      final,
		SeverityOverridden: overridden,
		OverrideReason:     reason,
		NeedsHumanReview:   needsReview,
		Confidence:         verdict.Confidence,
		LabelsToAdd:        labels,
	}
}

func matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
