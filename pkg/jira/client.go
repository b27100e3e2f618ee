// Package jira writes triage results back to the ticket: priority, labels
// and an explanatory comment.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/codeready-toolchain/autopilot/pkg/models"
)

var priorityNames = map[models.Severity]string{
	models.SeverityP1: "Highest",
	models.SeverityP2: "High",
	models.SeverityP3: "Medium",
	models.SeverityP4: "Low",
}

// Client is a minimal Jira Cloud REST v3 client covering the two calls the
// pipeline needs.
type Client struct {
	httpClient *http.Client
	baseURL    string
	email      string
	apiToken   string
	logger     *slog.Logger
}

// NewClient creates a Jira client authenticated with email and API token.
func NewClient(baseURL, email, apiToken string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		email:      email,
		apiToken:   apiToken,
		logger:     slog.Default().With("component", "jira"),
	}
}

// UpdateIssue applies the triage outcome to the ticket: sets the priority
// matching the final severity, adds the policy labels, then posts a comment
// summarizing the verdict.
func (c *Client) UpdateIssue(ctx context.Context, out *models.TriageOutput) error {
	if err := c.updateFields(ctx, out); err != nil {
		return err
	}
	return c.addComment(ctx, out)
}

func (c *Client) updateFields(ctx context.Context, out *models.TriageOutput) error {
	labels := append([]string{}, out.Incident.Labels...)
	labels = mergeLabels(labels, out.Policy.LabelsToAdd)

	body := map[string]any{
		"fields": map[string]any{
			"priority": map[string]string{"name": priorityNames[out.Policy.FinalSeverity]},
			"labels":   labels,
		},
	}

	path := fmt.Sprintf("/rest/api/3/issue/%s", out.Incident.JiraKey)
	if err := c.do(ctx, http.MethodPut, path, body, http.StatusNoContent, http.StatusOK); err != nil {
		return fmt.Errorf("update issue %s: %w", out.Incident.JiraKey, err)
	}
	c.logger.Info("Updated Jira issue",
		"jira_key", out.Incident.JiraKey,
		"priority", priorityNames[out.Policy.FinalSeverity],
		"labels", labels)
	return nil
}

func (c *Client) addComment(ctx context.Context, out *models.TriageOutput) error {
	body := map[string]any{"body": buildCommentADF(out)}

	path := fmt.Sprintf("/rest/api/3/issue/%s/comment", out.Incident.JiraKey)
	if err := c.do(ctx, http.MethodPost, path, body, http.StatusCreated, http.StatusOK); err != nil {
		return fmt.Errorf("comment on issue %s: %w", out.Incident.JiraKey, err)
	}
	return nil
}

// buildCommentADF renders the triage summary as an Atlassian Document
// Format body.
func buildCommentADF(out *models.TriageOutput) map[string]any {
	lines := []string{
		fmt.Sprintf("Autopilot triage: %s (%s), confidence %.2f.",
			out.Policy.FinalSeverity, out.Verdict.Category, out.Verdict.Confidence),
		"Summary: " + out.Verdict.ShortSummary,
		"Owner team: " + out.Verdict.OwnerTeam,
	}
	if out.Policy.SeverityOverridden {
		lines = append(lines, fmt.Sprintf("Severity adjusted from %s: %s",
			out.Policy.OriginalSeverity, out.Policy.OverrideReason))
	}
	if out.Policy.NeedsHumanReview {
		lines = append(lines, "Low confidence: human review requested.")
	}
	if out.Correlated {
		lines = append(lines, "Possibly related to "+out.CorrelatedWith+".")
	}
	if len(out.Verdict.FirstActions) > 0 {
		lines = append(lines, "First actions:")
		for i, action := range out.Verdict.FirstActions {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, action))
		}
	}
	if out.Verdict.RunbookSuggestion != "" {
		lines = append(lines, "Suggested runbook: "+out.Verdict.RunbookSuggestion)
	}

	content := make([]any, 0, len(lines))
	for _, line := range lines {
		content = append(content, map[string]any{
			"type": "paragraph",
			"content": []any{
				map[string]any{"type": "text", "text": line},
			},
		})
	}
	return map[string]any{
		"type":    "doc",
		"version": 1,
		"content": content,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, okStatuses ...int) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.email, c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call Jira: %w", err)
	}
	defer resp.Body.Close()

	for _, status := range okStatuses {
		if resp.StatusCode == status {
			return nil
		}
	}
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("Jira returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
}

// mergeLabels appends additions not already present, preserving order.
func mergeLabels(existing, additions []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, l := range existing {
		seen[l] = true
	}
	for _, l := range additions {
		if !seen[l] {
			existing = append(existing, l)
			seen[l] = true
		}
	}
	return existing
}
