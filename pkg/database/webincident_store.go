package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/codeready-toolchain/autopilot/pkg/models"
)

// ErrWebIncidentNotFound is returned when a web incident id has no row.
var ErrWebIncidentNotFound = errors.New("web incident not found")

// InsertWebIncident stores a newly created web incident.
func (c *Client) InsertWebIncident(ctx context.Context, inc *models.WebIncident) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	triageJSON, err := marshalTriage(inc.Triage)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO web_incidents
			(id, title, description, component, environment, reporter, status, created_at, updated_at, triage_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inc.ID,
		inc.Title,
		inc.Description,
		inc.Component,
		string(inc.Environment),
		inc.Reporter,
		string(inc.Status),
		inc.CreatedAt.UTC().Format(timeLayout),
		inc.UpdatedAt.UTC().Format(timeLayout),
		triageJSON,
	)
	if err != nil {
		return fmt.Errorf("insert web incident: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// UpdateWebIncident rewrites the mutable lifecycle fields of an incident.
func (c *Client) UpdateWebIncident(ctx context.Context, inc *models.WebIncident) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	triageJSON, err := marshalTriage(inc.Triage)
	if err != nil {
		return err
	}

	var decisionAt any
	if inc.DecisionAt != nil {
		decisionAt = inc.DecisionAt.UTC().Format(timeLayout)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE web_incidents
		SET status = ?, updated_at = ?, triage_json = ?,
		    decision_by = ?, decision_at = ?, decision_note = ?, original_severity = ?
		WHERE id = ?`,
		string(inc.Status),
		inc.UpdatedAt.UTC().Format(timeLayout),
		triageJSON,
		nullable(inc.DecisionBy),
		decisionAt,
		nullable(inc.DecisionNote),
		nullable(string(inc.OriginalSeverity)),
		inc.ID,
	)
	if err != nil {
		return fmt.Errorf("update web incident: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrWebIncidentNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetWebIncident returns one stored incident by id.
func (c *Client) GetWebIncident(ctx context.Context, id string) (*models.WebIncident, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT id, title, description, component, environment, reporter, status,
		       created_at, updated_at, triage_json, decision_by, decision_at,
		       decision_note, original_severity
		FROM web_incidents
		WHERE id = ?`, id)

	inc, err := scanWebIncident(row)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return inc, nil
}

// ListWebIncidents returns stored incidents newest first, optionally
// filtered by status, along with the total matching count.
func (c *Client) ListWebIncidents(ctx context.Context, status models.IncidentStatus, limit, offset int) ([]models.WebIncident, int, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		SELECT id, title, description, component, environment, reporter, status,
		       created_at, updated_at, triage_json, decision_by, decision_at,
		       decision_note, original_severity
		FROM web_incidents`
	countQuery := `SELECT COUNT(*) FROM web_incidents`
	args := []any{}
	countArgs := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		countQuery += ` WHERE status = ?`
		args = append(args, string(status))
		countArgs = append(countArgs, string(status))
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query web incidents: %w", err)
	}
	defer rows.Close()

	var incidents []models.WebIncident
	for rows.Next() {
		inc, err := scanWebIncident(rows)
		if err != nil {
			return nil, 0, err
		}
		incidents = append(incidents, *inc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate web incidents: %w", err)
	}

	var total int
	if err := tx.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count web incidents: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit: %w", err)
	}
	return incidents, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWebIncident(row rowScanner) (*models.WebIncident, error) {
	var (
		inc                       models.WebIncident
		env, created, updated     string
		statusCol                 string
		component, reporter       sql.NullString
		triageJSON                sql.NullString
		decisionBy, decisionAt    sql.NullString
		decisionNote, originalSev sql.NullString
	)
	err := row.Scan(&inc.ID, &inc.Title, &inc.Description, &component, &env, &reporter,
		&statusCol, &created, &updated, &triageJSON, &decisionBy, &decisionAt,
		&decisionNote, &originalSev)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWebIncidentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan web incident: %w", err)
	}

	inc.Component = component.String
	if inc.Component == "" {
		inc.Component = "unknown"
	}
	inc.Reporter = reporter.String
	if inc.Reporter == "" {
		inc.Reporter = "unknown"
	}
	inc.Environment = models.ParseEnvironment(env)
	inc.Status = models.IncidentStatus(statusCol)
	inc.CreatedAt, _ = time.Parse(timeLayout, created)
	inc.UpdatedAt, _ = time.Parse(timeLayout, updated)
	inc.DecisionBy = decisionBy.String
	inc.DecisionNote = decisionNote.String
	if originalSev.Valid && originalSev.String != "" {
		inc.OriginalSeverity = models.Severity(originalSev.String)
	}
	if decisionAt.Valid && decisionAt.String != "" {
		if t, err := time.Parse(timeLayout, decisionAt.String); err == nil {
			inc.DecisionAt = &t
		}
	}
	if triageJSON.Valid && triageJSON.String != "" {
		var triage models.TriageResult
		if err := json.Unmarshal([]byte(triageJSON.String), &triage); err == nil {
			inc.Triage = &triage
		}
	}
	return &inc, nil
}

func marshalTriage(t *models.TriageResult) (any, error) {
	if t == nil {
		return nil, nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal triage result: %w", err)
	}
	return string(b), nil
}
