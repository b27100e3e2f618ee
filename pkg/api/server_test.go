package api

import (
	"context"
	"path/filepath"
	"sort"
	"testing"
	"time"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/autopilot/pkg/audit"
	"github.com/codeready-toolchain/autopilot/pkg/config"
	"github.com/codeready-toolchain/autopilot/pkg/correlate"
	"github.com/codeready-toolchain/autopilot/pkg/database"
	"github.com/codeready-toolchain/autopilot/pkg/llm"
	"github.com/codeready-toolchain/autopilot/pkg/metrics"
	"github.com/codeready-toolchain/autopilot/pkg/models"
	"github.com/codeready-toolchain/autopilot/pkg/pipeline"
	"github.com/codeready-toolchain/autopilot/pkg/policy"
	"github.com/codeready-toolchain/autopilot/pkg/ratelimit"
	"github.com/codeready-toolchain/autopilot/pkg/runbook"
	"github.com/codeready-toolchain/autopilot/pkg/services"
	"github.com/codeready-toolchain/autopilot/pkg/slack"
)

// memStore backs the handler tests entirely in memory.
type memStore struct {
	records   map[string]models.CorrelationRecord
	incidents map[string]models.WebIncident
	events    []models.AuditEvent
}

func newMemStore() *memStore {
	return &memStore{
		records:   make(map[string]models.CorrelationRecord),
		incidents: make(map[string]models.WebIncident),
	}
}

func (m *memStore) UpsertIncident(_ context.Context, rec *models.CorrelationRecord) error {
	m.records[rec.JiraKey] = *rec
	return nil
}

func (m *memStore) FindCorrelated(_ context.Context, component string, window time.Duration, excludeKey string) ([]models.CorrelationRecord, error) {
	cutoff := time.Now().UTC().Add(-window)
	var out []models.CorrelationRecord
	for _, rec := range m.records {
		if rec.Component == component && rec.JiraKey != excludeKey && rec.CreatedAt.After(cutoff) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memStore) InsertWebIncident(_ context.Context, inc *models.WebIncident) error {
	m.incidents[inc.ID] = *inc
	return nil
}

func (m *memStore) UpdateWebIncident(_ context.Context, inc *models.WebIncident) error {
	if _, ok := m.incidents[inc.ID]; !ok {
		return database.ErrWebIncidentNotFound
	}
	m.incidents[inc.ID] = *inc
	return nil
}

func (m *memStore) GetWebIncident(_ context.Context, id string) (*models.WebIncident, error) {
	inc, ok := m.incidents[id]
	if !ok {
		return nil, database.ErrWebIncidentNotFound
	}
	return &inc, nil
}

func (m *memStore) ListWebIncidents(_ context.Context, status models.IncidentStatus, limit, offset int) ([]models.WebIncident, int, error) {
	var all []models.WebIncident
	for _, inc := range m.incidents {
		if status == "" || inc.Status == status {
			all = append(all, inc)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	if offset > len(all) {
		offset = len(all)
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (m *memStore) InsertAuditEvent(_ context.Context, event *models.AuditEvent) (int64, error) {
	event.ID = int64(len(m.events) + 1)
	m.events = append(m.events, *event)
	return event.ID, nil
}

func (m *memStore) GetAuditEventsByKey(_ context.Context, key string) ([]models.AuditEvent, error) {
	var out []models.AuditEvent
	for _, e := range m.events {
		if e.JiraKey == key {
			out = append(out, e)
		}
	}
	return out, nil
}

type nullJira struct{}

func (nullJira) UpdateIssue(context.Context, *models.TriageOutput) error { return nil }

type nullSlack struct{}

func (nullSlack) Post(context.Context, *slack.Message) error { return nil }
func (nullSlack) Channel() string                            { return "#incidents" }

// newTestServer builds a fully wired server on in-memory storage.
func newTestServer(t *testing.T, cfg *config.Settings) (*echo.Echo, *Server, *memStore) {
	t.Helper()
	store := newMemStore()
	auditor, err := audit.NewLogger(store, filepath.Join(t.TempDir(), "audit.jsonl"), cfg.DryRun)
	require.NoError(t, err)
	catalog, err := runbook.LoadCatalog()
	require.NoError(t, err)

	counters := metrics.New()
	limiter := ratelimit.New(cfg.RateLimitRequests, cfg.RateLimitWindow)
	engine := policy.NewEngine()
	mock := llm.NewMockProvider()

	p := pipeline.New(pipeline.Config{
		Store:       store,
		Auditor:     auditor,
		Correlator:  correlate.New(store, cfg.CorrelationWindow),
		Provider:    mock,
		Policies:    engine,
		Jira:        nullJira{},
		Slack:       nullSlack{},
		Counters:    counters,
		JiraBaseURL: cfg.JiraBaseURL,
		DryRun:      cfg.DryRun,
	})
	incidents := services.NewIncidentService(store, auditor, mock, mock, engine, runbook.NewMatcher(catalog))

	srv := NewServer(cfg, p, incidents, catalog, limiter, counters)
	e := echo.New()
	srv.Routes(e)
	return e, srv, store
}

func testSettings() *config.Settings {
	return &config.Settings{
		WebhookSecret:     "test-secret",
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		LLMProvider:       "mock",
		JiraBaseURL:       "https://example.atlassian.net",
		CorrelationWindow: 30 * time.Minute,
		DemoToken:         "demo-token",
	}
}
