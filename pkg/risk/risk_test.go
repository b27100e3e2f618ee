package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codeready-toolchain/autopilot/pkg/models"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name       string
		severity   models.Severity
		confidence float64
		env        models.Environment
		want       float64
	}{
		{"p1 prod certain", models.SeverityP1, 1.0, models.EnvProd, 0.7},
		{"p1 prod uncertain", models.SeverityP1, 0.0, models.EnvProd, 1.0},
		{"p4 dev certain", models.SeverityP4, 1.0, models.EnvDev, 0.175},
		{"p2 staging", models.SeverityP2, 0.8, models.EnvStaging, 0.51},
		{"unknown env weighted 0.5", models.SeverityP3, 0.5, models.EnvUnknown, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.severity, tt.confidence, tt.env), 1e-9)
		})
	}
}

func TestScore_Clamped(t *testing.T) {
	// Confidence outside [0,1] cannot push the score out of range.
	assert.LessOrEqual(t, Score(models.SeverityP1, -2.0, models.EnvProd), 1.0)
	assert.GreaterOrEqual(t, Score(models.SeverityP4, 3.0, models.EnvDev), 0.0)
}

func TestLevel(t *testing.T) {
	assert.Equal(t, "critical", Level(0.8))
	assert.Equal(t, "critical", Level(0.95))
	assert.Equal(t, "high", Level(0.6))
	assert.Equal(t, "high", Level(0.79))
	assert.Equal(t, "medium", Level(0.4))
	assert.Equal(t, "low", Level(0.39))
	assert.Equal(t, "low", Level(0.0))
}
