package models

// Severity is the ordinal incident severity, P1 (most severe) to P4 (least).
type Severity string

const (
	SeverityP1 Severity = "P1"
	SeverityP2 Severity = "P2"
	SeverityP3 Severity = "P3"
	SeverityP4 Severity = "P4"
)

// severityRank maps severities to a total order; lower rank = more severe.
var severityRank = map[Severity]int{
	SeverityP1: 1,
	SeverityP2: 2,
	SeverityP3: 3,
	SeverityP4: 4,
}

// ParseSeverity coerces a string to a known severity, defaulting to P4.
func ParseSeverity(s string) Severity {
	switch Severity(s) {
	case SeverityP1, SeverityP2, SeverityP3:
		return Severity(s)
	default:
		return SeverityP4
	}
}

// IsValidSeverity reports whether s names one of the four severities.
func IsValidSeverity(s string) bool {
	_, ok := severityRank[Severity(s)]
	return ok
}

// MoreSevereThan reports whether s outranks other (P1 > P2 > P3 > P4).
func (s Severity) MoreSevereThan(other Severity) bool {
	return severityRank[s] < severityRank[other]
}

// LessSevereThan reports whether other outranks s.
func (s Severity) LessSevereThan(other Severity) bool {
	return severityRank[s] > severityRank[other]
}

// IncidentCategory is the closed classification set used by the LLM verdict.
type IncidentCategory string

const (
	CategoryDeployment     IncidentCategory = "deployment"
	CategoryDatabase       IncidentCategory = "database"
	CategoryNetwork        IncidentCategory = "network"
	CategoryApplication    IncidentCategory = "application"
	CategorySecurity       IncidentCategory = "security"
	CategoryInfrastructure IncidentCategory = "infrastructure"
	CategoryUnknown        IncidentCategory = "unknown"
)

// ParseCategory coerces a string to a known category, defaulting to unknown.
func ParseCategory(s string) IncidentCategory {
	switch IncidentCategory(s) {
	case CategoryDeployment, CategoryDatabase, CategoryNetwork,
		CategoryApplication, CategorySecurity, CategoryInfrastructure:
		return IncidentCategory(s)
	default:
		return CategoryUnknown
	}
}

// IsValidCategory reports whether s names one of the non-unknown categories.
func IsValidCategory(s string) bool {
	return ParseCategory(s) != CategoryUnknown || s == string(CategoryUnknown)
}
