package database

import (
	"context"
	"fmt"
	"time"

	"github.com/codeready-toolchain/autopilot/pkg/models"
)

// UpsertIncident records an incident for future correlation. Re-delivery of
// the same external key replaces the prior record (last writer wins).
func (c *Client) UpsertIncident(ctx context.Context, rec *models.CorrelationRecord) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO incidents (jira_key, summary, component, environment, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.JiraKey,
		rec.Summary,
		rec.Component,
		string(rec.Environment),
		rec.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("upsert incident: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// FindCorrelated returns correlation records on the same component created
// within window of now, excluding excludeKey. Result order is unspecified.
func (c *Client) FindCorrelated(ctx context.Context, component string, window time.Duration, excludeKey string) ([]models.CorrelationRecord, error) {
	cutoff := time.Now().UTC().Add(-window)

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT jira_key, summary, component, environment, created_at
		FROM incidents
		WHERE component = ? AND created_at > ? AND jira_key != ?`,
		component,
		cutoff.Format(timeLayout),
		excludeKey,
	)
	if err != nil {
		return nil, fmt.Errorf("query correlated incidents: %w", err)
	}
	defer rows.Close()

	var records []models.CorrelationRecord
	for rows.Next() {
		var (
			rec          models.CorrelationRecord
			env, created string
		)
		if err := rows.Scan(&rec.JiraKey, &rec.Summary, &rec.Component, &env, &created); err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		rec.Environment = models.ParseEnvironment(env)
		rec.CreatedAt, _ = time.Parse(timeLayout, created)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incidents: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return records, nil
}
