package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/codeready-toolchain/autopilot/pkg/models"
)

// MockProvider classifies incidents by keyword lookup. Deterministic, no
// network, used for demos and as the default on the web triage path.
type MockProvider struct{}

// NewMockProvider returns the keyword-based provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) Name() string { return "mock" }

// category rules, checked in order; first hit wins.
var mockCategoryRules = []struct {
	keywords []string
	category models.IncidentCategory
	team     string
}{
	{[]string{"deploy", "release", "rollout", "ci/cd"}, models.CategoryDeployment, "platform"},
	{[]string{"database", "db", "sql", "query", "postgres", "mysql"}, models.CategoryDatabase, "data-platform"},
	{[]string{"network", "dns", "load balancer", "connectivity", "timeout"}, models.CategoryNetwork, "infrastructure"},
	{[]string{"security", "breach", "unauthorized", "vulnerability"}, models.CategorySecurity, "security"},
	{[]string{"infrastructure", "server", "vm", "cloud", "aws", "gcp"}, models.CategoryInfrastructure, "infrastructure"},
}

var mockSeverityRules = []struct {
	keywords []string
	severity models.Severity
}{
	{[]string{"security", "breach", "critical", "p1"}, models.SeverityP1},
	{[]string{"outage", "down", "500", "cannot", "failing"}, models.SeverityP2},
	{[]string{"degraded", "slow", "intermittent"}, models.SeverityP3},
}

// Triage never fails.
func (p *MockProvider) Triage(_ context.Context, inc *models.Incident) (*models.Verdict, error) {
	text := strings.ToLower(inc.Summary + " " + inc.Description)

	category := models.CategoryApplication
	team := "engineering"
	for _, rule := range mockCategoryRules {
		if containsAny(text, rule.keywords) {
			category = rule.category
			team = rule.team
			break
		}
	}

	severity := models.SeverityP4
	for _, rule := range mockSeverityRules {
		if containsAny(text, rule.keywords) {
			severity = rule.severity
			break
		}
	}

	summary := inc.Summary
	if len(summary) > 100 {
		summary = summary[:100]
	}

	return &models.Verdict{
		Category:     category,
		Severity:     severity,
		Confidence:   0.85,
		OwnerTeam:    team,
		ShortSummary: "[MOCK] " + summary,
		FirstActions: []string{
			fmt.Sprintf("Check %s service logs", inc.Component),
			"Review monitoring dashboards for anomalies",
			"Check recent deployments or changes",
			fmt.Sprintf("Verify %s environment health", inc.Environment),
			"Escalate to on-call if severity warrants",
		},
		RunbookSuggestion: fmt.Sprintf("runbook-%s-general", category),
	}, nil
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
