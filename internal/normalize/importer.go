package normalize

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mharmon/engpulse/internal/snapshot"
	"github.com/mharmon/engpulse/internal/stats"
	"github.com/mharmon/engpulse/internal/storage/sqlite"
	"github.com/mharmon/engpulse/internal/types"
)

// dashboardSource binds one dashboard to its history file and flattener.
type dashboardSource struct {
	dashboard types.Dashboard
	file      string
	flatten   func(*snapshot.History) []types.MetricPoint
}

// Sources lists every dashboard importer in run order.
var Sources = []dashboardSource{
	{types.DashboardQuality, "quality_history.json", FlattenQuality},
	{types.DashboardSecurity, "security_history.json", FlattenSecurity},
	{types.DashboardDeployment, "deployment_history.json", FlattenDeployment},
	{types.DashboardFlow, "flow_history.json", FlattenFlow},
	{types.DashboardOwnership, "ownership_history.json", FlattenOwnership},
	{types.DashboardRisk, "risk_history.json", FlattenRisk},
	{types.DashboardCollaboration, "collaboration_history.json", FlattenCollaboration},
}

// Summary reports one full import run.
type Summary struct {
	RunID             string                  `json:"run_id"`
	RowsByDashboard   map[types.Dashboard]int `json:"rows_by_dashboard"`
	TotalRows         int                     `json:"total_rows"`
	SkippedDashboards []types.Dashboard       `json:"skipped_dashboards,omitempty"`
	SeriesWithStats   int                     `json:"series_with_stats"`
}

// Importer rebuilds the metric store from the JSON history directory.
type Importer struct {
	store      *sqlite.Store
	historyDir string
}

// NewImporter creates an importer reading history files from dir.
func NewImporter(store *sqlite.Store, historyDir string) *Importer {
	return &Importer{store: store, historyDir: historyDir}
}

// Run performs a full-rebuild ingestion: truncate the metrics table,
// run every dashboard importer sequentially, then refresh rolling
// stats. A missing or malformed history file skips that dashboard and
// never aborts the others. Storage failures do abort: a half-written
// rebuild is worse than none.
func (imp *Importer) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{
		RunID:           uuid.New().String(),
		RowsByDashboard: make(map[types.Dashboard]int),
	}

	if err := imp.store.TruncateMetrics(ctx); err != nil {
		return nil, fmt.Errorf("failed to start import run: %w", err)
	}

	for _, src := range Sources {
		n, err := imp.importOne(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("failed to import %s: %w", src.dashboard, err)
		}

		summary.RowsByDashboard[src.dashboard] = n
		summary.TotalRows += n
		if n == 0 {
			summary.SkippedDashboards = append(summary.SkippedDashboards, src.dashboard)
			slog.Warn("dashboard skipped", "dashboard", src.dashboard, "file", src.file, "run_id", summary.RunID)
		}
	}

	seriesCount, err := stats.Refresh(ctx, imp.store)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh rolling stats: %w", err)
	}
	summary.SeriesWithStats = seriesCount

	slog.Info("import run complete",
		"run_id", summary.RunID,
		"rows", summary.TotalRows,
		"series", seriesCount,
		"skipped", len(summary.SkippedDashboards))
	return summary, nil
}

func (imp *Importer) importOne(ctx context.Context, src dashboardSource) (int, error) {
	history, absence := snapshot.Load(imp.historyDir, src.file)
	if absence != nil {
		// Already logged by the reader with file and reason
		return 0, nil
	}

	points := src.flatten(history)
	return imp.store.InsertMetricPoints(ctx, points)
}
