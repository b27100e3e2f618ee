// Package audit writes the append-only audit trail. Every event goes to
// both the durable store and a JSONL log file; a failure in one sink is
// logged and never aborts the other or the calling pipeline.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/codeready-toolchain/autopilot/pkg/models"
)

// Store is the durable sink. Satisfied by *database.Client.
type Store interface {
	InsertAuditEvent(ctx context.Context, event *models.AuditEvent) (int64, error)
}

// Logger is the dual-sink audit writer.
type Logger struct {
	store     Store
	jsonlPath string
	dryRun    bool
	mu        sync.Mutex // serializes JSONL appends
	log       *slog.Logger
}

// NewLogger creates the audit logger. The JSONL directory is created if
// missing.
func NewLogger(store Store, jsonlPath string, dryRun bool) (*Logger, error) {
	dir := filepath.Dir(jsonlPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit log directory: %w", err)
		}
	}
	return &Logger{
		store:     store,
		jsonlPath: jsonlPath,
		dryRun:    dryRun,
		log:       slog.Default().With("component", "audit"),
	}, nil
}

// Entry carries the caller-supplied fields of one audit event.
type Entry struct {
	EventType string
	Action    string
	Status    string
	JiraKey   string
	Component string
	Severity  string
	Details   map[string]any
}

// Log records one event in both sinks and returns it. The dry-run flag is
// stamped from the configuration at write time.
func (l *Logger) Log(ctx context.Context, e Entry) *models.AuditEvent {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	event := &models.AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: e.EventType,
		JiraKey:   e.JiraKey,
		Component: e.Component,
		Severity:  e.Severity,
		Action:    e.Action,
		Status:    e.Status,
		Details:   e.Details,
		DryRun:    l.dryRun,
	}

	if _, err := l.store.InsertAuditEvent(ctx, event); err != nil {
		l.log.Error("Failed to write audit event to store",
			"event_type", event.EventType, "error", err)
	}

	if err := l.writeJSONL(event); err != nil {
		l.log.Error("Failed to write audit event to JSONL",
			"event_type", event.EventType, "error", err)
	}

	attrs := []any{"event_type", event.EventType, "action", event.Action, "status", event.Status}
	if event.JiraKey != "" {
		attrs = append(attrs, "jira_key", event.JiraKey)
	}
	if event.Status == models.AuditStatusFailure {
		l.log.Warn("Audit event", attrs...)
	} else {
		l.log.Info("Audit event", attrs...)
	}

	return event
}

func (l *Logger) writeJSONL(event *models.AuditEvent) error {
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.jsonlPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}
	return nil
}
