package sqlite

import (
	"context"
	"fmt"

	"github.com/mharmon/engpulse/internal/types"
)

// TruncateRollingStats clears the baseline table. Called at the start
// of a stats refresh so series that vanished from the history do not
// leave stale baselines behind.
func (s *Store) TruncateRollingStats(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM rolling_stats`); err != nil {
		return fmt.Errorf("failed to truncate rolling_stats: %w", err)
	}
	return nil
}

// UpsertRollingStats writes one per-series baseline row, replacing any
// existing row for the same (dashboard, project, metric).
func (s *Store) UpsertRollingStats(ctx context.Context, rs *types.RollingStats) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rolling_stats (
			dashboard, project_name, metric_name,
			rolling_mean, rolling_std, trend_slope, last_8w_avg, last_updated
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (dashboard, project_name, metric_name) DO UPDATE SET
			rolling_mean = excluded.rolling_mean,
			rolling_std  = excluded.rolling_std,
			trend_slope  = excluded.trend_slope,
			last_8w_avg  = excluded.last_8w_avg,
			last_updated = excluded.last_updated
	`,
		rs.Dashboard, rs.ProjectName, rs.MetricName,
		rs.Mean, rs.Std, rs.TrendSlope, rs.Last8WAvg, rs.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert rolling stats for %s: %w", rs.Key(), err)
	}
	return nil
}

// ListRollingStats returns baseline rows. With onlySignal set, rows with
// zero std are excluded; the stats engine never writes such rows, so the
// filter is belt-and-braces for anomaly scanning.
func (s *Store) ListRollingStats(ctx context.Context, onlySignal bool) ([]types.RollingStats, error) {
	query := `
		SELECT dashboard, project_name, metric_name,
		       rolling_mean, rolling_std, trend_slope, last_8w_avg, last_updated
		FROM rolling_stats
	`
	if onlySignal {
		query += ` WHERE rolling_std > 0`
	}
	query += ` ORDER BY dashboard, project_name, metric_name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rolling stats: %w", err)
	}
	defer rows.Close()

	var stats []types.RollingStats
	for rows.Next() {
		var rs types.RollingStats
		if err := rows.Scan(
			&rs.Dashboard, &rs.ProjectName, &rs.MetricName,
			&rs.Mean, &rs.Std, &rs.TrendSlope, &rs.Last8WAvg, &rs.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rolling stats: %w", err)
		}
		stats = append(stats, rs)
	}
	return stats, rows.Err()
}

// ListRollingStatsForDashboard returns signal-bearing baseline rows for
// one dashboard.
func (s *Store) ListRollingStatsForDashboard(ctx context.Context, dashboard types.Dashboard) ([]types.RollingStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT dashboard, project_name, metric_name,
		       rolling_mean, rolling_std, trend_slope, last_8w_avg, last_updated
		FROM rolling_stats
		WHERE dashboard = ? AND rolling_std > 0
		ORDER BY project_name, metric_name
	`, dashboard)
	if err != nil {
		return nil, fmt.Errorf("failed to query rolling stats for %s: %w", dashboard, err)
	}
	defer rows.Close()

	var stats []types.RollingStats
	for rows.Next() {
		var rs types.RollingStats
		if err := rows.Scan(
			&rs.Dashboard, &rs.ProjectName, &rs.MetricName,
			&rs.Mean, &rs.Std, &rs.TrendSlope, &rs.Last8WAvg, &rs.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rolling stats: %w", err)
		}
		stats = append(stats, rs)
	}
	return stats, rows.Err()
}
