// Package risk computes a composite risk score for a triaged incident from
// severity, model confidence and environment.
package risk

import (
	"github.com/codeready-toolchain/autopilot/pkg/models"
)

var severityWeights = map[models.Severity]float64{
	models.SeverityP1: 1.0,
	models.SeverityP2: 0.75,
	models.SeverityP3: 0.5,
	models.SeverityP4: 0.25,
}

var environmentWeights = map[models.Environment]float64{
	models.EnvProd:    1.0,
	models.EnvStaging: 0.5,
	models.EnvDev:     0.25,
	models.EnvUnknown: 0.5,
}

// Score blends severity (40%), model uncertainty (30%) and environment
// (30%) into a value in [0,1].
func Score(severity models.Severity, confidence float64, env models.Environment) float64 {
	sevWeight, ok := severityWeights[severity]
	if !ok {
		sevWeight = 0.25
	}
	envWeight, ok := environmentWeights[env]
	if !ok {
		envWeight = 0.5
	}

	score := 0.4*sevWeight + 0.3*(1.0-confidence) + 0.3*envWeight
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

// Level maps a score onto the reporting bands.
func Level(score float64) string {
	switch {
	case score >= 0.8:
		return "critical"
	case score >= 0.6:
		return "high"
	case score >= 0.4:
		return "medium"
	default:
		return "low"
	}
}
