package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/codeready-toolchain/autopilot/pkg/models"
)

// AnthropicProvider calls the Messages API through the official SDK.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
	logger *slog.Logger
}

// NewAnthropicProvider creates the provider.
func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	return &AnthropicProvider{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		logger: slog.Default().With("component", "llm", "provider", "anthropic"),
	}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

// Triage sends the incident to the model and parses the JSON verdict.
func (p *AnthropicProvider) Triage(ctx context.Context, inc *models.Incident) (*models.Verdict, error) {
	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildUserPrompt(inc))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API error: %w", err)
	}
	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("anthropic returned no content blocks")
	}

	verdict, err := parseVerdict(resp.Content[0].Text)
	if err != nil {
		return nil, err
	}
	p.logger.Info("Model verdict",
		"jira_key", inc.JiraKey,
		"incident_type", verdict.Category,
		"severity", verdict.Severity,
		"confidence", verdict.Confidence)
	return verdict, nil
}
