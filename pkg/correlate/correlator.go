// Package correlate links a fresh incident to recent incidents on the same
// component by fuzzy title similarity.
package correlate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/codeready-toolchain/autopilot/pkg/models"
)

// similarityThreshold is the minimum title similarity for a correlation hit.
const similarityThreshold = 0.60

// Finder is the read side of the incident history. Satisfied by
// *database.Client.
type Finder interface {
	FindCorrelated(ctx context.Context, component string, window time.Duration, excludeKey string) ([]models.CorrelationRecord, error)
}

// Correlator looks up recent same-component incidents and scores their
// summaries against the incoming one. It only reads; recording the incoming
// incident is the pipeline's job.
type Correlator struct {
	store  Finder
	window time.Duration
	log    *slog.Logger
}

// New creates a Correlator with the given lookback window.
func New(store Finder, window time.Duration) *Correlator {
	if window <= 0 {
		window = 30 * time.Minute
	}
	return &Correlator{
		store:  store,
		window: window,
		log:    slog.Default().With("component", "correlator"),
	}
}

// Check returns whether inc correlates with a recent incident and, if so,
// the key of the best match. Incidents with an unknown component are never
// correlated.
func (c *Correlator) Check(ctx context.Context, inc *models.Incident) (bool, string, error) {
	if inc.Component == "unknown" {
		return false, "", nil
	}

	candidates, err := c.store.FindCorrelated(ctx, inc.Component, c.window, inc.JiraKey)
	if err != nil {
		return false, "", fmt.Errorf("find correlated incidents: %w", err)
	}

	title := normalizeTitle(inc.Summary)
	bestKey := ""
	bestScore := 0.0
	for _, cand := range candidates {
		score := Ratio(title, normalizeTitle(cand.Summary))
		if score >= similarityThreshold && score > bestScore {
			bestScore = score
			bestKey = cand.JiraKey
		}
	}

	if bestKey == "" {
		return false, "", nil
	}
	c.log.Info("Correlated incident",
		"jira_key", inc.JiraKey, "correlated_with", bestKey, "score", bestScore)
	return true, bestKey, nil
}

func normalizeTitle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
