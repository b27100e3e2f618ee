package slack

import (
	"testing"

	goslack "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/autopilot/pkg/models"
)

func triageOutput(sev models.Severity) *models.TriageOutput {
	return &models.TriageOutput{
		Incident: &models.Incident{
			JiraKey:     "OPS-42",
			Summary:     "Checkout returning 500s",
			Component:   "checkout",
			Environment: models.EnvProd,
		},
		Verdict: &models.Verdict{
			Category:     models.CategoryApplication,
			Severity:     sev,
			Confidence:   0.9,
			OwnerTeam:    "payments",
			ShortSummary: "Checkout erroring since deploy",
		},
		Policy: &models.PolicyResult{
			OriginalSeverity: sev,
			FinalSeverity:    sev,
			Confidence:       0.9,
		},
	}
}

func TestBuildIncidentMessage_Basics(t *testing.T) {
	msg := BuildIncidentMessage(triageOutput(models.SeverityP2), "https://example.atlassian.net")

	assert.Equal(t, ":warning: [P2] OPS-42: Checkout returning 500s", msg.Fallback)
	assert.Equal(t, "#FFA500", msg.Color)
	require.NotEmpty(t, msg.Blocks)

	header, ok := msg.Blocks[0].(*goslack.HeaderBlock)
	require.True(t, ok)
	assert.Equal(t, ":warning: Incident: OPS-42", header.Text.Text)

	link, ok := msg.Blocks[1].(*goslack.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, link.Text.Text, "https://example.atlassian.net/browse/OPS-42")

	fieldsBlock, ok := msg.Blocks[2].(*goslack.SectionBlock)
	require.True(t, ok)
	require.NotNil(t, fieldsBlock.Fields)
	require.Len(t, fieldsBlock.Fields, 4)
	assert.Contains(t, fieldsBlock.Fields[0].Text, "P2")
	assert.Contains(t, fieldsBlock.Fields[1].Text, "application")
	assert.Contains(t, fieldsBlock.Fields[2].Text, "checkout")
	assert.Contains(t, fieldsBlock.Fields[3].Text, "prod")
}

func TestBuildIncidentMessage_SeverityStyles(t *testing.T) {
	tests := []struct {
		sev   models.Severity
		emoji string
		color string
	}{
		{models.SeverityP1, ":rotating_light:", "#FF0000"},
		{models.SeverityP2, ":warning:", "#FFA500"},
		{models.SeverityP3, ":large_yellow_circle:", "#FFFF00"},
		{models.SeverityP4, ":large_green_circle:", "#00FF00"},
	}
	for _, tt := range tests {
		msg := BuildIncidentMessage(triageOutput(tt.sev), "https://example.atlassian.net")
		assert.Contains(t, msg.Fallback, tt.emoji)
		assert.Equal(t, tt.color, msg.Color)
	}
}

func TestBuildIncidentMessage_OptionalContext(t *testing.T) {
	out := triageOutput(models.SeverityP3)
	out.Correlated = true
	out.CorrelatedWith = "OPS-40"
	out.Policy.NeedsHumanReview = true
	out.Policy.Confidence = 0.55

	msg := BuildIncidentMessage(out, "https://example.atlassian.net")

	var contexts []string
	for _, b := range msg.Blocks {
		if cb, ok := b.(*goslack.ContextBlock); ok {
			for _, el := range cb.ContextElements.Elements {
				if txt, ok := el.(*goslack.TextBlockObject); ok {
					contexts = append(contexts, txt.Text)
				}
			}
		}
	}
	require.NotEmpty(t, contexts)
	assert.Contains(t, contexts, ":link: Possibly related to OPS-40")

	foundReview := false
	for _, c := range contexts {
		if c == ":eyes: Low confidence (0.55), human review requested" {
			foundReview = true
		}
	}
	assert.True(t, foundReview)
}

func TestBuildIncidentMessage_ButtonLinksToJira(t *testing.T) {
	msg := BuildIncidentMessage(triageOutput(models.SeverityP4), "https://example.atlassian.net/")

	last := msg.Blocks[len(msg.Blocks)-1]
	action, ok := last.(*goslack.ActionBlock)
	require.True(t, ok)
	require.NotEmpty(t, action.Elements.ElementSet)

	btn, ok := action.Elements.ElementSet[0].(*goslack.ButtonBlockElement)
	require.True(t, ok)
	assert.Equal(t, "View in Jira", btn.Text.Text)
	assert.Equal(t, "https://example.atlassian.net/browse/OPS-42", btn.URL)
}
