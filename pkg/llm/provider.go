// Package llm produces structured triage verdicts for incidents, either from
// a hosted model (OpenAI or Anthropic) or from a deterministic keyword mock.
package llm

import (
	"context"
	"fmt"

	"github.com/codeready-toolchain/autopilot/pkg/config"
	"github.com/codeready-toolchain/autopilot/pkg/models"
)

// Provider turns an incident into a triage verdict.
type Provider interface {
	// Name identifies the provider in logs and audit events.
	Name() string
	// Triage analyzes the incident and returns a verdict. The verdict is
	// always sanitized: valid category and severity, confidence in [0,1].
	Triage(ctx context.Context, inc *models.Incident) (*models.Verdict, error)
}

// NewProvider builds the provider selected by cfg.LLMProvider.
func NewProvider(cfg *config.Settings) (Provider, error) {
	switch cfg.LLMProvider {
	case "mock":
		return NewMockProvider(), nil
	case "openai":
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.HTTPTimeout), nil
	case "anthropic":
		return NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.AnthropicModel), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}
