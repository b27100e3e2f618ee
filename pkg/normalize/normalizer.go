// Package normalize converts heterogeneous Jira webhook payloads into the
// internal incident record, inferring the environment from free text and
// flattening ADF descriptions to plain text.
package normalize

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/codeready-toolchain/autopilot/pkg/models"
)

// environment inference: ordered regex families; first match wins.
// prod is checked before staging before dev so that "preprod staging of
// prod data" resolves to the most critical environment mentioned.
var envPatterns = []struct {
	env      models.Environment
	patterns []*regexp.Regexp
}{
	{models.EnvProd, compileAll(
		`\bprod\b`,
		`\bproduction\b`,
		`\bprd\b`,
		`\blive\b`,
	)},
	{models.EnvStaging, compileAll(
		`\bstaging\b`,
		`\bstage\b`,
		`\bstg\b`,
		`\buat\b`,
		`\bpre-?prod\b`,
	)},
	{models.EnvDev, compileAll(
		`\bdev\b`,
		`\bdevelopment\b`,
		`\btest\b`,
		`\bqa\b`,
		`\blocal\b`,
		`\bsandbox\b`,
	)},
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// jiraCreatedFormat matches Jira's REST timestamp, e.g.
// "2024-06-01T12:30:45.000+0200".
const jiraCreatedFormat = "2006-01-02T15:04:05.000-0700"

// Normalize converts a webhook payload into an Incident. A payload whose
// issue type is not "incident" (case-insensitive) returns (nil, nil): not
// an error, the pipeline reports a skip. A payload without an issue key is
// treated the same way.
func Normalize(payload map[string]any) (*models.Incident, error) {
	issue, _ := payload["issue"].(map[string]any)
	fields, _ := issue["fields"].(map[string]any)

	typeName := issueTypeName(fields)
	if typeName != "incident" {
		slog.Debug("Skipping non-incident issue type", "issue_type", typeName)
		return nil, nil
	}

	jiraKey, _ := issue["key"].(string)
	if jiraKey == "" {
		slog.Warn("No issue key in webhook payload")
		return nil, nil
	}

	summary, _ := fields["summary"].(string)

	description := ""
	switch d := fields["description"].(type) {
	case string:
		description = d
	case map[string]any:
		description = ExtractADFText(d)
	}

	labels := extractLabels(fields)
	componentNames := extractComponentNames(fields)
	component := "unknown"
	if len(componentNames) > 0 && componentNames[0] != "" {
		component = componentNames[0]
	}

	return &models.Incident{
		JiraKey:     jiraKey,
		Summary:     summary,
		Description: description,
		Labels:      labels,
		Component:   component,
		Environment: DetectEnvironment(labels, summary, description, componentNames),
		Reporter:    extractReporter(fields),
		CreatedAt:   parseCreated(fields),
		RawPayload:  payload,
	}, nil
}

// DetectEnvironment infers the environment from the concatenation of
// summary, description, labels and component names. Family order is
// prod, staging, dev; no match yields unknown.
func DetectEnvironment(labels []string, summary, description string, components []string) models.Environment {
	parts := append([]string{summary, description}, labels...)
	parts = append(parts, components...)
	searchable := strings.ToLower(strings.Join(parts, " "))

	for _, family := range envPatterns {
		for _, re := range family.patterns {
			if re.MatchString(searchable) {
				return family.env
			}
		}
	}
	return models.EnvUnknown
}

// ExtractADFText flattens an Atlassian Document Format tree to plain text.
// Nodes typed "text" contribute their text; other nodes are descended via
// their content list. Joins are single spaces in document order. The walk
// uses an explicit stack so adversarially deep documents cannot blow the
// goroutine stack.
func ExtractADFText(doc map[string]any) string {
	var texts []string

	stack := []any{doc}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n := node.(type) {
		case map[string]any:
			if t, _ := n["type"].(string); t == "text" {
				if s, _ := n["text"].(string); s != "" {
					texts = append(texts, s)
				}
				continue
			}
			if content, ok := n["content"].([]any); ok {
				// Push in reverse so children pop in document order.
				for i := len(content) - 1; i >= 0; i-- {
					stack = append(stack, content[i])
				}
			}
		case []any:
			for i := len(n) - 1; i >= 0; i-- {
				stack = append(stack, n[i])
			}
		}
	}

	return strings.Join(texts, " ")
}

func issueTypeName(fields map[string]any) string {
	switch it := fields["issuetype"].(type) {
	case map[string]any:
		name, _ := it["name"].(string)
		return strings.ToLower(name)
	case string:
		return strings.ToLower(it)
	default:
		return ""
	}
}

func extractLabels(fields map[string]any) []string {
	raw, ok := fields["labels"].([]any)
	if !ok {
		return nil
	}
	labels := make([]string, 0, len(raw))
	for _, l := range raw {
		if s, ok := l.(string); ok {
			labels = append(labels, s)
		}
	}
	return labels
}

func extractComponentNames(fields map[string]any) []string {
	raw, ok := fields["components"].([]any)
	if !ok {
		return nil
	}
	var names []string
	for _, c := range raw {
		switch v := c.(type) {
		case map[string]any:
			if name, _ := v["name"].(string); name != "" {
				names = append(names, name)
			}
		case string:
			names = append(names, v)
		}
	}
	return names
}

func extractReporter(fields map[string]any) string {
	switch r := fields["reporter"].(type) {
	case map[string]any:
		if name, _ := r["displayName"].(string); name != "" {
			return name
		}
		if name, _ := r["name"].(string); name != "" {
			return name
		}
	case string:
		if r != "" {
			return r
		}
	}
	return "unknown"
}

func parseCreated(fields map[string]any) time.Time {
	created, _ := fields["created"].(string)
	if created == "" {
		return time.Now().UTC()
	}
	for _, layout := range []string{jiraCreatedFormat, time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, created); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}
