package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/codeready-toolchain/autopilot/pkg/models"
)

// maxFirstActions caps the action list regardless of what the model returns.
const maxFirstActions = 7

// parseVerdict decodes a model response into a sanitized Verdict. Markdown
// code fences are stripped, unknown enum values are coerced, confidence is
// clamped to [0,1] and the action list is truncated.
func parseVerdict(raw string) (*models.Verdict, error) {
	cleaned := stripCodeFences(raw)

	var payload struct {
		IncidentType      string   `json:"incident_type"`
		Severity          string   `json:"severity"`
		Confidence        *float64 `json:"confidence"`
		OwnerTeam         string   `json:"owner_team"`
		ShortSummary      string   `json:"short_summary"`
		FirstActions      []any    `json:"first_actions"`
		RunbookSuggestion string   `json:"runbook_suggestion"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}

	// The default applies only when the key is absent; an explicit 0 is a
	// legitimate (if blunt) confidence.
	confidence := 0.5
	if payload.Confidence != nil {
		confidence = *payload.Confidence
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	actions := make([]string, 0, len(payload.FirstActions))
	for _, a := range payload.FirstActions {
		if len(actions) == maxFirstActions {
			break
		}
		switch v := a.(type) {
		case string:
			actions = append(actions, v)
		default:
			actions = append(actions, fmt.Sprintf("%v", v))
		}
	}

	ownerTeam := payload.OwnerTeam
	if ownerTeam == "" {
		ownerTeam = "platform"
	}

	return &models.Verdict{
		Category:          models.ParseCategory(strings.ToLower(payload.IncidentType)),
		Severity:          models.ParseSeverity(strings.ToUpper(payload.Severity)),
		Confidence:        confidence,
		OwnerTeam:         ownerTeam,
		ShortSummary:      payload.ShortSummary,
		FirstActions:      actions,
		RunbookSuggestion: payload.RunbookSuggestion,
	}, nil
}

// stripCodeFences removes a surrounding markdown fence pair, tolerating a
// language tag on the opening fence.
func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return trimmed
	}
	lines = lines[1:]
	if strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
