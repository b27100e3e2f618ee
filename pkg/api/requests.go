package api

// CreateIncidentRequest is the body of POST /api/incidents.
type CreateIncidentRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Component   string `json:"component"`
	Environment string `json:"environment"`
	Reporter    string `json:"reporter"`
}

// TriageIncidentRequest is the body of POST /api/incidents/:id/triage.
// Provider is advisory; anything but the configured provider name falls
// back to the mock.
type TriageIncidentRequest struct {
	Provider string `json:"provider"`
}

// DecisionRequest is the body of the approve, reject and resolve endpoints.
type DecisionRequest struct {
	By   string `json:"by"`
	Note string `json:"note"`
}

// OverrideIncidentRequest is the body of POST /api/incidents/:id/override.
type OverrideIncidentRequest struct {
	By       string `json:"by"`
	Reason   string `json:"reason"`
	Severity string `json:"severity"`
	Category string `json:"category"`
}
