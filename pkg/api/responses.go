package api

import "github.com/codeready-toolchain/autopilot/pkg/models"

// RootResponse is the body of GET /.
type RootResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	DryRun  bool   `json:"dry_run"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	DryRun  bool   `json:"dry_run"`
}

// MetricsResponse is the body of GET /metrics.
type MetricsResponse struct {
	Counters    map[string]int64 `json:"counters"`
	RateLimiter map[string]any   `json:"rate_limiter"`
}

// WebhookResponse is the body of POST /webhook/jira.
type WebhookResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// IncidentListResponse is the body of GET /api/incidents.
type IncidentListResponse struct {
	Incidents []models.WebIncidentListItem `json:"incidents"`
	Total     int                          `json:"total"`
	Limit     int                          `json:"limit"`
	Offset    int                          `json:"offset"`
}

// AuditTrailResponse is the body of GET /api/incidents/:id/audit.
type AuditTrailResponse struct {
	IncidentID string              `json:"incident_id"`
	Events     []models.AuditEvent `json:"events"`
}

// PIRResponse is the body of POST /api/incidents/:id/pir.
type PIRResponse struct {
	IncidentID string `json:"incident_id"`
	Markdown   string `json:"markdown"`
}

// RunbookListResponse is the body of GET /api/runbooks.
type RunbookListResponse struct {
	Runbooks []RunbookSummary `json:"runbooks"`
}

// RunbookSummary is one catalog entry in the listing.
type RunbookSummary struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	RunbookURL  string   `json:"runbook_url"`
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
}
