package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/codeready-toolchain/autopilot/pkg/models"
)

// InsertAuditEvent durably persists one audit event and returns its row id.
func (c *Client) InsertAuditEvent(ctx context.Context, event *models.AuditEvent) (int64, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	details, err := json.Marshal(event.Details)
	if err != nil {
		return 0, fmt.Errorf("marshal details: %w", err)
	}

	dryRun := 0
	if event.DryRun {
		dryRun = 1
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO audit_events
			(timestamp, event_type, jira_key, component, severity, action, status, details, dry_run)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.Timestamp.UTC().Format(timeLayout),
		event.EventType,
		nullable(event.JiraKey),
		nullable(event.Component),
		nullable(event.Severity),
		event.Action,
		event.Status,
		string(details),
		dryRun,
	)
	if err != nil {
		return 0, fmt.Errorf("insert audit event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// GetRecentAuditEvents returns up to limit events, newest first.
func (c *Client) GetRecentAuditEvents(ctx context.Context, limit int) ([]models.AuditEvent, error) {
	return c.queryAuditEvents(ctx, `
		SELECT id, timestamp, event_type, jira_key, component, severity, action, status, details, dry_run
		FROM audit_events
		ORDER BY timestamp DESC
		LIMIT ?`, limit)
}

// GetAuditEventsByKey returns the full audit trail for one external key,
// oldest first.
func (c *Client) GetAuditEventsByKey(ctx context.Context, jiraKey string) ([]models.AuditEvent, error) {
	return c.queryAuditEvents(ctx, `
		SELECT id, timestamp, event_type, jira_key, component, severity, action, status, details, dry_run
		FROM audit_events
		WHERE jira_key = ?
		ORDER BY timestamp ASC`, jiraKey)
}

func (c *Client) queryAuditEvents(ctx context.Context, query string, args ...any) ([]models.AuditEvent, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []models.AuditEvent
	for rows.Next() {
		var (
			ev                         models.AuditEvent
			ts, details                string
			jiraKey, component, sevCol sql.NullString
			dryRun                     int
		)
		if err := rows.Scan(&ev.ID, &ts, &ev.EventType, &jiraKey, &component, &sevCol,
			&ev.Action, &ev.Status, &details, &dryRun); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		ev.Timestamp, _ = time.Parse(timeLayout, ts)
		ev.JiraKey = jiraKey.String
		ev.Component = component.String
		ev.Severity = sevCol.String
		ev.DryRun = dryRun != 0
		if details != "" {
			if err := json.Unmarshal([]byte(details), &ev.Details); err != nil {
				ev.Details = map[string]any{"raw": details}
			}
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return events, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
