package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mharmon/engpulse/internal/types"
)

// TruncateMetrics deletes every metric point. Called once at the start
// of an import run: the table is always rebuilt in full from the JSON
// history, never appended to.
func (s *Store) TruncateMetrics(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM metrics`); err != nil {
		return fmt.Errorf("failed to truncate metrics: %w", err)
	}
	return nil
}

// InsertMetricPoints inserts a batch of points in one transaction and
// returns how many rows were written.
func (s *Store) InsertMetricPoints(ctx context.Context, points []types.MetricPoint) (int, error) {
	if len(points) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO metrics (metric_date, dashboard, project_name, metric_name, metric_value, metric_unit)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	written := 0
	for i := range points {
		p := &points[i]
		if err := p.Validate(); err != nil {
			return 0, fmt.Errorf("invalid metric point %s/%s/%s: %w",
				p.Dashboard, p.ProjectName, p.MetricName, err)
		}

		var value sql.NullFloat64
		if p.Value != nil {
			value = sql.NullFloat64{Float64: *p.Value, Valid: true}
		}

		if _, err := stmt.ExecContext(ctx,
			p.MetricDate, p.Dashboard, p.ProjectName, p.MetricName, value, p.Unit,
		); err != nil {
			return 0, fmt.Errorf("failed to insert metric point: %w", err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit metric points: %w", err)
	}
	return written, nil
}

// SeriesKeys returns every distinct (dashboard, project, metric) triple
// present in the metrics table.
func (s *Store) SeriesKeys(ctx context.Context) ([]types.SeriesKey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT dashboard, project_name, metric_name
		FROM metrics
		ORDER BY dashboard, project_name, metric_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query series keys: %w", err)
	}
	defer rows.Close()

	var keys []types.SeriesKey
	for rows.Next() {
		var k types.SeriesKey
		if err := rows.Scan(&k.Dashboard, &k.ProjectName, &k.MetricName); err != nil {
			return nil, fmt.Errorf("failed to scan series key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// SeriesValues returns the non-null values of one series ordered by
// date ascending.
func (s *Store) SeriesValues(ctx context.Context, key types.SeriesKey) ([]float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT metric_value
		FROM metrics
		WHERE dashboard = ? AND project_name = ? AND metric_name = ?
		  AND metric_value IS NOT NULL
		ORDER BY metric_date ASC
	`, key.Dashboard, key.ProjectName, key.MetricName)
	if err != nil {
		return nil, fmt.Errorf("failed to query series %s: %w", key, err)
	}
	defer rows.Close()

	var values []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan series value: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// LatestPoint returns the most recent non-null point of one series, or
// nil when the series has no points.
func (s *Store) LatestPoint(ctx context.Context, key types.SeriesKey) (*types.MetricPoint, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT metric_date, dashboard, project_name, metric_name, metric_value, metric_unit
		FROM metrics
		WHERE dashboard = ? AND project_name = ? AND metric_name = ?
		  AND metric_value IS NOT NULL
		ORDER BY metric_date DESC
		LIMIT 1
	`, key.Dashboard, key.ProjectName, key.MetricName)

	p, err := scanPoint(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest point for %s: %w", key, err)
	}
	return p, nil
}

// PointsByMetric returns all points for (dashboard, metric) across every
// project, ordered by date descending. Used by the threshold rule
// evaluator, which only acts on the first row it sees per project.
func (s *Store) PointsByMetric(ctx context.Context, dashboard types.Dashboard, metric string) ([]types.MetricPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT metric_date, dashboard, project_name, metric_name, metric_value, metric_unit
		FROM metrics
		WHERE dashboard = ? AND metric_name = ? AND metric_value IS NOT NULL
		ORDER BY metric_date DESC
	`, dashboard, metric)
	if err != nil {
		return nil, fmt.Errorf("failed to query points for %s/%s: %w", dashboard, metric, err)
	}
	defer rows.Close()

	var points []types.MetricPoint
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan metric point: %w", err)
		}
		points = append(points, *p)
	}
	return points, rows.Err()
}

// CountMetrics returns the total number of metric rows.
func (s *Store) CountMetrics(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM metrics`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count metrics: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPoint(r rowScanner) (*types.MetricPoint, error) {
	var p types.MetricPoint
	var value sql.NullFloat64

	if err := r.Scan(&p.MetricDate, &p.Dashboard, &p.ProjectName, &p.MetricName, &value, &p.Unit); err != nil {
		return nil, err
	}
	if value.Valid {
		v := value.Float64
		p.Value = &v
	}
	return &p, nil
}
