package llm

import (
	"fmt"
	"strings"

	"github.com/codeready-toolchain/autopilot/pkg/models"
)

// maxDescriptionChars bounds the description included in the prompt so one
// pathological ticket cannot blow the context window.
const maxDescriptionChars = 2000

const systemPrompt = `You are an incident triage assistant for an engineering organization.
Given an incident report, respond with ONLY a JSON object, no prose and no markdown fences, with exactly these keys:
  "incident_type": one of "deployment", "database", "network", "application", "security", "infrastructure"
  "severity": one of "P1", "P2", "P3", "P4" (P1 is most severe)
  "confidence": a number between 0.0 and 1.0
  "owner_team": the team that should own this incident
  "short_summary": a one-sentence summary of the incident
  "first_actions": an array of 3 to 7 concrete first steps for the responder
  "runbook_suggestion": a runbook identifier likely to apply

Severity guidance: P1 is a critical outage or security breach, P2 a major production impact, P3 a degraded experience, P4 minor.
If environment is NOT prod, never assign P1 or P2.`

func buildUserPrompt(inc *models.Incident) string {
	desc := inc.Description
	if len(desc) > maxDescriptionChars {
		desc = desc[:maxDescriptionChars]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Incident %s\n", inc.JiraKey)
	fmt.Fprintf(&b, "Summary: %s\n", inc.Summary)
	fmt.Fprintf(&b, "Component: %s\n", inc.Component)
	fmt.Fprintf(&b, "Environment: %s\n", inc.Environment)
	fmt.Fprintf(&b, "Reporter: %s\n", inc.Reporter)
	if len(inc.Labels) > 0 {
		fmt.Fprintf(&b, "Labels: %s\n", strings.Join(inc.Labels, ", "))
	}
	fmt.Fprintf(&b, "Description:\n%s\n", desc)
	return b.String()
}
