package models

// Verdict is the validated classification returned by an LLM provider.
// Confidence is clamped to [0,1] on parse and FirstActions is truncated to 7.
type Verdict struct {
	Category          IncidentCategory `json:"incident_type"`
	Severity          Severity         `json:"severity"`
	Confidence        float64          `json:"confidence"`
	OwnerTeam         string           `json:"owner_team"`
	ShortSummary      string           `json:"short_summary"`
	FirstActions      []string         `json:"first_actions"`
	RunbookSuggestion string           `json:"runbook_suggestion"`
}

// PolicyResult is the outcome of running the deterministic guardrails over
// a verdict. FinalSeverity is the committed severity.
type PolicyResult struct {
	OriginalSeverity   Severity `json:"original_severity"`
	FinalSeverity      Severity `json:"final_severity"`
	SeverityOverridden bool     `json:"severity_overridden"`
	OverrideReason     string   `json:"override_reason,omitempty"`
	NeedsHumanReview   bool     `json:"needs_human_review"`
	Confidence         float64  `json:"confidence"`
	LabelsToAdd        []string `json:"labels_to_add"`
}

// TriageOutput bundles everything the fan-out clients need.
type TriageOutput struct {
	Incident       *Incident     `json:"incident"`
	Verdict        *Verdict      `json:"llm_result"`
	Policy         *PolicyResult `json:"policy_result"`
	Correlated     bool          `json:"correlated"`
	CorrelatedWith string        `json:"correlated_with,omitempty"`
}

// RunbookFit scores how well a catalog runbook matches an incident.
type RunbookFit struct {
	RunbookKey  string   `json:"runbook_key"`
	RunbookName string   `json:"runbook_name"`
	FitScore    float64  `json:"fit_score"`
	RunbookURL  string   `json:"runbook_url"`
	Steps       []string `json:"steps"`
}
