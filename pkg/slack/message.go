package slack

import (
	"fmt"
	"strings"

	goslack "github.com/slack-go/slack"

	"github.com/codeready-toolchain/autopilot/pkg/models"
)

var severityColors = map[models.Severity]string{
	models.SeverityP1: "#FF0000",
	models.SeverityP2: "#FFA500",
	models.SeverityP3: "#FFFF00",
	models.SeverityP4: "#00FF00",
}

var severityEmoji = map[models.Severity]string{
	models.SeverityP1: ":rotating_light:",
	models.SeverityP2: ":warning:",
	models.SeverityP3: ":large_yellow_circle:",
	models.SeverityP4: ":large_green_circle:",
}

// Message is a built notification ready to post.
type Message struct {
	Fallback string
	Color    string
	Blocks   []goslack.Block
}

// BuildIncidentMessage renders a triage outcome as Block Kit blocks plus a
// plain-text fallback and a severity color for the attachment bar.
func BuildIncidentMessage(out *models.TriageOutput, jiraBaseURL string) *Message {
	sev := out.Policy.FinalSeverity
	emoji := severityEmoji[sev]
	if emoji == "" {
		emoji = ":question:"
	}

	issueURL := fmt.Sprintf("%s/browse/%s", strings.TrimRight(jiraBaseURL, "/"), out.Incident.JiraKey)

	var blocks []goslack.Block

	blocks = append(blocks, goslack.NewHeaderBlock(
		goslack.NewTextBlockObject(goslack.PlainTextType,
			fmt.Sprintf("%s Incident: %s", emoji, out.Incident.JiraKey), false, false),
	))

	blocks = append(blocks, goslack.NewSectionBlock(
		goslack.NewTextBlockObject(goslack.MarkdownType,
			fmt.Sprintf("*<%s|%s>*", issueURL, out.Incident.Summary), false, false),
		nil, nil,
	))

	fields := []*goslack.TextBlockObject{
		goslack.NewTextBlockObject(goslack.MarkdownType, "*Severity:*\n"+string(sev), false, false),
		goslack.NewTextBlockObject(goslack.MarkdownType, "*Type:*\n"+string(out.Verdict.Category), false, false),
		goslack.NewTextBlockObject(goslack.MarkdownType, "*Component:*\n"+out.Incident.Component, false, false),
		goslack.NewTextBlockObject(goslack.MarkdownType, "*Environment:*\n"+string(out.Incident.Environment), false, false),
	}
	blocks = append(blocks, goslack.NewSectionBlock(nil, fields, nil))

	if out.Verdict.ShortSummary != "" {
		blocks = append(blocks, goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, out.Verdict.ShortSummary, false, false),
			nil, nil,
		))
	}

	if out.Correlated {
		blocks = append(blocks, goslack.NewContextBlock("",
			goslack.NewTextBlockObject(goslack.MarkdownType,
				":link: Possibly related to "+out.CorrelatedWith, false, false),
		))
	}

	if out.Policy.NeedsHumanReview {
		blocks = append(blocks, goslack.NewContextBlock("",
			goslack.NewTextBlockObject(goslack.MarkdownType,
				fmt.Sprintf(":eyes: Low confidence (%.2f), human review requested", out.Policy.Confidence), false, false),
		))
	}

	if out.Verdict.OwnerTeam != "" {
		blocks = append(blocks, goslack.NewContextBlock("",
			goslack.NewTextBlockObject(goslack.MarkdownType,
				"Suggested owner: *"+out.Verdict.OwnerTeam+"*", false, false),
		))
	}

	btn := goslack.NewButtonBlockElement("", "",
		goslack.NewTextBlockObject(goslack.PlainTextType, "View in Jira", false, false))
	btn.URL = issueURL
	blocks = append(blocks, goslack.NewActionBlock("", btn))

	return &Message{
		Fallback: fmt.Sprintf("%s [%s] %s: %s", emoji, sev, out.Incident.JiraKey, out.Incident.Summary),
		Color:    severityColors[sev],
		Blocks:   blocks,
	}
}
