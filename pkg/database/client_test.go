package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/autopilot/pkg/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(filepath.Join(t.TempDir(), "autopilot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestWebIncidentRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	now := time.Now().UTC()
	inc := &models.WebIncident{
		ID:          "abc12345",
		Title:       "Orders API degraded",
		Description: "Intermittent timeouts",
		Component:   "orders-api",
		Environment: models.EnvProd,
		Reporter:    "dana",
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, c.InsertWebIncident(ctx, inc))

	got, err := c.GetWebIncident(ctx, "abc12345")
	require.NoError(t, err)
	assert.Equal(t, inc.Title, got.Title)
	assert.Equal(t, models.EnvProd, got.Environment)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.True(t, got.CreatedAt.Equal(now))
	assert.Nil(t, got.Triage)
}

func TestUpdateWebIncident_PersistsTriageAndDecision(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	now := time.Now().UTC()
	inc := &models.WebIncident{
		ID:          "def45678",
		Title:       "DB connection errors",
		Description: "Pool exhausted",
		Component:   "orders-db",
		Environment: models.EnvProd,
		Reporter:    "sam",
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, c.InsertWebIncident(ctx, inc))

	decisionAt := now.Add(time.Minute)
	inc.Status = models.StatusOverridden
	inc.UpdatedAt = decisionAt
	inc.Triage = &models.TriageResult{
		Category:   models.CategoryDatabase,
		Severity:   models.SeverityP1,
		Confidence: 0.85,
		RiskScore:  0.7,
		RiskLevel:  "high",
		OwnerTeam:  "platform",
	}
	inc.DecisionBy = "sam"
	inc.DecisionAt = &decisionAt
	inc.DecisionNote = "wider impact"
	inc.OriginalSeverity = models.SeverityP2
	require.NoError(t, c.UpdateWebIncident(ctx, inc))

	got, err := c.GetWebIncident(ctx, "def45678")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOverridden, got.Status)
	require.NotNil(t, got.Triage)
	assert.Equal(t, models.SeverityP1, got.Triage.Severity)
	assert.Equal(t, models.CategoryDatabase, got.Triage.Category)
	assert.Equal(t, "sam", got.DecisionBy)
	require.NotNil(t, got.DecisionAt)
	assert.True(t, got.DecisionAt.Equal(decisionAt))
	assert.Equal(t, models.SeverityP2, got.OriginalSeverity)
}

func TestWebIncident_NotFound(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.GetWebIncident(ctx, "missing1")
	assert.ErrorIs(t, err, ErrWebIncidentNotFound)

	err = c.UpdateWebIncident(ctx, &models.WebIncident{ID: "missing1", Status: models.StatusTriaged,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()})
	assert.ErrorIs(t, err, ErrWebIncidentNotFound)
}

func TestListWebIncidents_FilterAndPaging(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i, status := range []models.IncidentStatus{models.StatusPending, models.StatusTriaged, models.StatusPending} {
		inc := &models.WebIncident{
			ID:          string(rune('a'+i)) + "1234567",
			Title:       "incident",
			Description: "d",
			Component:   "svc",
			Environment: models.EnvStaging,
			Reporter:    "r",
			Status:      status,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			UpdatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, c.InsertWebIncident(ctx, inc))
	}

	all, total, err := c.ListWebIncidents(ctx, "", 50, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, all, 3)
	// Newest first.
	assert.Equal(t, "c1234567", all[0].ID)

	pending, total, err := c.ListWebIncidents(ctx, models.StatusPending, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, pending, 2)

	page, total, err := c.ListWebIncidents(ctx, "", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, "b1234567", page[0].ID)
}

func TestUpsertIncident_LastWriterWins(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	now := time.Now().UTC()
	rec := &models.CorrelationRecord{
		JiraKey:     "OPS-1",
		Summary:     "Payments API 500 errors",
		Component:   "payments",
		Environment: models.EnvProd,
		CreatedAt:   now,
	}
	require.NoError(t, c.UpsertIncident(ctx, rec))

	rec.Summary = "Payments API returning 500s"
	require.NoError(t, c.UpsertIncident(ctx, rec))

	found, err := c.FindCorrelated(ctx, "payments", 30*time.Minute, "OPS-2")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Payments API returning 500s", found[0].Summary)
}

func TestFindCorrelated_ExcludesKeyAndWindow(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	now := time.Now().UTC()
	recent := &models.CorrelationRecord{JiraKey: "OPS-1", Summary: "s", Component: "payments",
		Environment: models.EnvProd, CreatedAt: now.Add(-5 * time.Minute)}
	stale := &models.CorrelationRecord{JiraKey: "OPS-2", Summary: "s", Component: "payments",
		Environment: models.EnvProd, CreatedAt: now.Add(-2 * time.Hour)}
	other := &models.CorrelationRecord{JiraKey: "OPS-3", Summary: "s", Component: "auth",
		Environment: models.EnvProd, CreatedAt: now.Add(-5 * time.Minute)}
	for _, r := range []*models.CorrelationRecord{recent, stale, other} {
		require.NoError(t, c.UpsertIncident(ctx, r))
	}

	found, err := c.FindCorrelated(ctx, "payments", 30*time.Minute, "OPS-9")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "OPS-1", found[0].JiraKey)

	// The queried key never correlates with itself.
	found, err = c.FindCorrelated(ctx, "payments", 30*time.Minute, "OPS-1")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestTimeLayout_LexicalOrderAcrossSubseconds(t *testing.T) {
	// The correlation window query compares stored timestamps as text, so
	// the layout must sort lexically. A trimmed-fraction form would put
	// "…:45Z" after "…:45.123Z".
	whole := time.Date(2024, 6, 1, 12, 0, 45, 0, time.UTC)
	fraction := whole.Add(123 * time.Millisecond)
	assert.Less(t, whole.Format(timeLayout), fraction.Format(timeLayout))

	parsed, err := time.Parse(timeLayout, whole.Format(timeLayout))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(whole))
}

func TestAuditEvents_RoundTripAndOrder(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Minute)
	for i, eventType := range []string{models.AuditWebhook, models.AuditNormalization, models.AuditLLMTriage} {
		id, err := c.InsertAuditEvent(ctx, &models.AuditEvent{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			EventType: eventType,
			JiraKey:   "OPS-1",
			Component: "payments",
			Severity:  "P2",
			Action:    "step",
			Status:    models.AuditStatusSuccess,
			Details:   map[string]any{"step": eventType},
			DryRun:    i == 2,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), id)
	}

	events, err := c.GetAuditEventsByKey(ctx, "OPS-1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, models.AuditWebhook, events[0].EventType)
	assert.Equal(t, models.AuditLLMTriage, events[2].EventType)
	assert.True(t, events[2].DryRun)
	assert.Equal(t, models.AuditNormalization, events[1].Details["step"])

	recent, err := c.GetRecentAuditEvents(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, models.AuditLLMTriage, recent[0].EventType)
}
