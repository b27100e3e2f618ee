// Package models defines the value types shared across the triage pipeline.
package models

import "time"

// Environment classifies where an incident happened.
type Environment string

const (
	EnvProd    Environment = "prod"
	EnvStaging Environment = "staging"
	EnvDev     Environment = "dev"
	EnvUnknown Environment = "unknown"
)

// ParseEnvironment coerces a string to a known environment, defaulting to unknown.
func ParseEnvironment(s string) Environment {
	switch Environment(s) {
	case EnvProd, EnvStaging, EnvDev:
		return Environment(s)
	default:
		return EnvUnknown
	}
}

// Incident is the normalized, immutable incident record produced by the
// normalizer from a webhook payload or a web-form submission.
type Incident struct {
	JiraKey     string         `json:"jira_key"`
	Summary     string         `json:"summary"`
	Description string         `json:"description"`
	Labels      []string       `json:"labels"`
	Component   string         `json:"component"`
	Environment Environment    `json:"environment"`
	Reporter    string         `json:"reporter"`
	CreatedAt   time.Time      `json:"created_at"`
	RawPayload  map[string]any `json:"raw_payload,omitempty"`
}

// CorrelationRecord is the slice of an incident kept for time-windowed
// correlation lookups. JiraKey is unique; insertion is an upsert.
type CorrelationRecord struct {
	JiraKey     string      `json:"jira_key"`
	Summary     string      `json:"summary"`
	Component   string      `json:"component"`
	Environment Environment `json:"environment"`
	CreatedAt   time.Time   `json:"created_at"`
}
