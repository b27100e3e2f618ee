// Package config loads application settings from environment variables.
// A .env file, when present, is loaded by the composition root before
// Load is called.
package config

import (
	"os"
	"strconv"
	"time"
)

// Settings holds all process-wide configuration. Loaded once at startup
// and passed to the components that need it; never mutated afterwards.
type Settings struct {
	// Server
	HTTPPort string

	// Webhook security
	WebhookSecret string

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// LLM provider: "openai", "anthropic" or "mock"
	LLMProvider     string
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	AnthropicModel  string

	// Jira
	JiraBaseURL  string
	JiraEmail    string
	JiraAPIToken string

	// Slack
	SlackBotToken string
	SlackChannel  string

	// Storage
	DBPath       string
	AuditLogPath string

	// Feature flags
	DryRun bool

	// Demo token unlocking the configured (non-mock) provider on the
	// web-UI triage path.
	DemoToken string

	// Correlation
	CorrelationWindow time.Duration

	// Outbound HTTP timeout
	HTTPTimeout time.Duration
}

// Load builds Settings from the environment, applying defaults for every
// unset variable.
func Load() *Settings {
	return &Settings{
		HTTPPort:          getEnv("HTTP_PORT", "8000"),
		WebhookSecret:     getEnv("AUTOPILOT_WEBHOOK_SECRET", "change-me-in-production"),
		RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:    getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		JiraBaseURL:       getEnv("JIRA_BASE_URL", "https://your-domain.atlassian.net"),
		JiraEmail:         getEnv("JIRA_EMAIL", ""),
		JiraAPIToken:      getEnv("JIRA_API_TOKEN", ""),
		SlackBotToken:     getEnv("SLACK_BOT_TOKEN", ""),
		SlackChannel:      getEnv("SLACK_CHANNEL", "#incidents"),
		DBPath:            getEnv("DATABASE_PATH", "./data/audit.db"),
		AuditLogPath:      getEnv("AUDIT_JSONL_PATH", "./data/audit.jsonl"),
		DryRun:            getEnvBool("DRY_RUN", false),
		DemoToken:         getEnv("DEMO_TOKEN", "incident-autopilot-demo-2024"),
		CorrelationWindow: time.Duration(getEnvInt("CORRELATION_WINDOW_MINUTES", 30)) * time.Minute,
		HTTPTimeout:       time.Duration(getEnvInt("HTTP_TIMEOUT", 30)) * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
