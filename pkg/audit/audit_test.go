package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/autopilot/pkg/models"
)

type recordingStore struct {
	events []models.AuditEvent
	err    error
}

func (r *recordingStore) InsertAuditEvent(_ context.Context, event *models.AuditEvent) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.events = append(r.events, *event)
	return int64(len(r.events)), nil
}

func newTestLogger(t *testing.T, store Store, dryRun bool) (*Logger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	l, err := NewLogger(store, path, dryRun)
	require.NoError(t, err)
	return l, path
}

func readJSONL(t *testing.T, path string) []models.AuditEvent {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var events []models.AuditEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var event models.AuditEvent
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &event))
		events = append(events, event)
	}
	require.NoError(t, scanner.Err())
	return events
}

func TestLog_WritesBothSinks(t *testing.T) {
	store := &recordingStore{}
	l, path := newTestLogger(t, store, false)

	event := l.Log(context.Background(), Entry{
		EventType: models.AuditWebhook,
		Action:    "received",
		Status:    models.AuditStatusSuccess,
		JiraKey:   "OPS-1",
		Component: "auth-service",
		Details:   map[string]any{"summary": "prod outage"},
	})

	require.Len(t, store.events, 1)
	assert.Equal(t, models.AuditWebhook, store.events[0].EventType)
	assert.Equal(t, "OPS-1", store.events[0].JiraKey)

	lines := readJSONL(t, path)
	require.Len(t, lines, 1)
	assert.Equal(t, models.AuditWebhook, lines[0].EventType)
	assert.Equal(t, "auth-service", lines[0].Component)
	assert.False(t, event.Timestamp.IsZero())
}

func TestLog_StoreFailureStillWritesJSONL(t *testing.T) {
	store := &recordingStore{err: errors.New("disk full")}
	l, path := newTestLogger(t, store, false)

	l.Log(context.Background(), Entry{
		EventType: models.AuditLLMTriage,
		Action:    "triaged",
		Status:    models.AuditStatusSuccess,
		JiraKey:   "OPS-2",
	})

	lines := readJSONL(t, path)
	require.Len(t, lines, 1)
	assert.Equal(t, "OPS-2", lines[0].JiraKey)
}

func TestLog_JSONLFailureStillWritesStore(t *testing.T) {
	store := &recordingStore{}
	l, err := NewLogger(store, filepath.Join(t.TempDir(), "audit.jsonl"), false)
	require.NoError(t, err)
	// Point the JSONL sink at a directory so every append fails.
	l.jsonlPath = t.TempDir()

	l.Log(context.Background(), Entry{
		EventType: models.AuditSlack,
		Action:    "posted",
		Status:    models.AuditStatusFailure,
		JiraKey:   "OPS-3",
	})

	require.Len(t, store.events, 1)
	assert.Equal(t, models.AuditSlack, store.events[0].EventType)
}

func TestLog_StampsDryRun(t *testing.T) {
	store := &recordingStore{}
	l, _ := newTestLogger(t, store, true)

	event := l.Log(context.Background(), Entry{
		EventType: models.AuditDryRun,
		Action:    "would_have_update_jira",
		Status:    models.AuditStatusSkipped,
	})

	assert.True(t, event.DryRun)
	require.Len(t, store.events, 1)
	assert.True(t, store.events[0].DryRun)
}

func TestLog_NilDetailsBecomesEmptyMap(t *testing.T) {
	store := &recordingStore{}
	l, _ := newTestLogger(t, store, false)

	event := l.Log(context.Background(), Entry{
		EventType: models.AuditNormalization,
		Action:    "normalized",
		Status:    models.AuditStatusSuccess,
	})

	assert.NotNil(t, event.Details)
}

func TestLog_AppendsInOrder(t *testing.T) {
	store := &recordingStore{}
	l, path := newTestLogger(t, store, false)

	for _, key := range []string{"OPS-1", "OPS-2", "OPS-3"} {
		l.Log(context.Background(), Entry{
			EventType: models.AuditWebhook,
			Action:    "received",
			Status:    models.AuditStatusSuccess,
			JiraKey:   key,
		})
	}

	lines := readJSONL(t, path)
	require.Len(t, lines, 3)
	assert.Equal(t, "OPS-1", lines[0].JiraKey)
	assert.Equal(t, "OPS-3", lines[2].JiraKey)
}
