package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codeready-toolchain/autopilot/pkg/audit"
	"github.com/codeready-toolchain/autopilot/pkg/models"
)

// GeneratePIR renders a post-incident report in markdown from the incident
// record and its audit trail. The incident must have been triaged.
func (s *IncidentService) GeneratePIR(ctx context.Context, id string) (string, error) {
	inc, err := s.get(ctx, id)
	if err != nil {
		return "", err
	}
	if inc.Triage == nil {
		return "", ErrNotTriaged
	}
	events, err := s.store.GetAuditEventsByKey(ctx, id)
	if err != nil {
		return "", fmt.Errorf("load audit trail: %w", err)
	}

	report := renderPIR(inc, events, s.now())

	s.auditor.Log(ctx, audit.Entry{
		EventType: models.AuditPIRGenerated,
		Action:    "generated",
		Status:    models.AuditStatusSuccess,
		JiraKey:   inc.ID,
		Details:   map[string]any{"length": len(report)},
	})
	return report, nil
}

func renderPIR(inc *models.WebIncident, events []models.AuditEvent, generatedAt time.Time) string {
	t := inc.Triage
	var b strings.Builder

	fmt.Fprintf(&b, "# Post-Incident Report: %s\n\n", inc.Title)
	fmt.Fprintf(&b, "Generated %s for incident `%s`.\n\n", generatedAt.Format(time.RFC3339), inc.ID)

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Status | %s |\n", inc.Status)
	fmt.Fprintf(&b, "| Severity | %s |\n", t.Severity)
	fmt.Fprintf(&b, "| Type | %s |\n", t.Category)
	fmt.Fprintf(&b, "| Component | %s |\n", inc.Component)
	fmt.Fprintf(&b, "| Environment | %s |\n", inc.Environment)
	fmt.Fprintf(&b, "| Reporter | %s |\n", inc.Reporter)
	fmt.Fprintf(&b, "| Risk | %.2f (%s) |\n", t.RiskScore, t.RiskLevel)
	fmt.Fprintf(&b, "| Confidence | %.2f |\n", t.Confidence)
	if inc.OriginalSeverity != "" && inc.OriginalSeverity != t.Severity {
		fmt.Fprintf(&b, "| Original severity | %s |\n", inc.OriginalSeverity)
	}
	b.WriteString("\n")

	if inc.Description != "" {
		b.WriteString("## Description\n\n")
		b.WriteString(inc.Description)
		b.WriteString("\n\n")
	}

	if t.ShortSummary != "" {
		b.WriteString("## Triage Assessment\n\n")
		fmt.Fprintf(&b, "%s\n\n", t.ShortSummary)
		if t.PolicyOverrideReason != "" {
			fmt.Fprintf(&b, "Policy adjustment: %s\n\n", t.PolicyOverrideReason)
		}
		if t.NeedsHumanReview {
			b.WriteString("This triage was flagged for human review due to low model confidence.\n\n")
		}
	}

	if len(t.FirstActions) > 0 {
		b.WriteString("## First Actions Taken\n\n")
		for i, action := range t.FirstActions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, action)
		}
		b.WriteString("\n")
	}

	if t.PrimaryRunbook != nil {
		b.WriteString("## Runbook\n\n")
		fmt.Fprintf(&b, "Primary: [%s](%s) (fit %.2f)\n", t.PrimaryRunbook.RunbookName, t.PrimaryRunbook.RunbookURL, t.PrimaryRunbook.FitScore)
		for _, alt := range t.AlternativeRunbooks {
			fmt.Fprintf(&b, "- Alternative: [%s](%s) (fit %.2f)\n", alt.RunbookName, alt.RunbookURL, alt.FitScore)
		}
		b.WriteString("\n")
	}

	if inc.DecisionBy != "" || inc.DecisionNote != "" {
		b.WriteString("## Decision\n\n")
		if inc.DecisionBy != "" {
			fmt.Fprintf(&b, "Decided by %s", inc.DecisionBy)
			if inc.DecisionAt != nil {
				fmt.Fprintf(&b, " at %s", inc.DecisionAt.Format(time.RFC3339))
			}
			b.WriteString(".\n")
		}
		if inc.DecisionNote != "" {
			fmt.Fprintf(&b, "Note: %s\n", inc.DecisionNote)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Timeline\n\n")
	if len(events) == 0 {
		b.WriteString("No audit events recorded.\n")
	} else {
		for _, e := range events {
			fmt.Fprintf(&b, "- %s: %s %s (%s)\n",
				e.Timestamp.Format(time.RFC3339), e.EventType, e.Action, e.Status)
		}
	}
	b.WriteString("\n")

	return b.String()
}
