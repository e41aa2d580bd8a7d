package sqlite

import (
	"context"
	"fmt"

	"github.com/mharmon/engpulse/internal/types"
)

// ReplaceAlerts deletes every existing alert and inserts the given set
// in one transaction. This delete-then-rewrite is the de-duplication
// strategy: running the engine twice on unchanged data yields the same
// rows, never doubles.
func (s *Store) ReplaceAlerts(ctx context.Context, alerts []types.Alert) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM alerts`); err != nil {
		return 0, fmt.Errorf("failed to clear alerts: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO alerts (
			dashboard, project_name, metric_name, metric_date,
			alert_type, severity, value, expected, message, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare alert insert: %w", err)
	}
	defer stmt.Close()

	for i := range alerts {
		a := &alerts[i]
		if _, err := stmt.ExecContext(ctx,
			a.Dashboard, a.ProjectName, a.MetricName, a.MetricDate,
			a.AlertType, a.Severity, a.Value, a.Expected, a.Message, a.CreatedAt,
		); err != nil {
			return 0, fmt.Errorf("failed to insert alert (%s/%s/%s): %w",
				a.Dashboard, a.ProjectName, a.MetricName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit alerts: %w", err)
	}
	return len(alerts), nil
}

// ListAlerts returns alerts ordered by severity (critical, high, warn,
// medium, anything else) then metric date descending, capped at limit.
// A limit of 0 or less means no cap.
func (s *Store) ListAlerts(ctx context.Context, limit int) ([]types.Alert, error) {
	query := `
		SELECT dashboard, project_name, metric_name, metric_date,
		       alert_type, severity, value, expected, message, created_at
		FROM alerts
		ORDER BY CASE severity
			WHEN 'critical' THEN 0
			WHEN 'high' THEN 1
			WHEN 'warn' THEN 2
			WHEN 'medium' THEN 3
			ELSE 4
		END, metric_date DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []types.Alert
	for rows.Next() {
		var a types.Alert
		if err := rows.Scan(
			&a.Dashboard, &a.ProjectName, &a.MetricName, &a.MetricDate,
			&a.AlertType, &a.Severity, &a.Value, &a.Expected, &a.Message, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// CountAlerts returns the number of alert rows.
func (s *Store) CountAlerts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM alerts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return n, nil
}
