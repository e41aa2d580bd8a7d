package types

import (
	"fmt"
	"time"
)

// Dashboard identifies which engineering-health dashboard a metric belongs to.
type Dashboard string

const (
	DashboardQuality       Dashboard = "quality"
	DashboardSecurity      Dashboard = "security"
	DashboardDeployment    Dashboard = "deployment"
	DashboardFlow          Dashboard = "flow"
	DashboardOwnership     Dashboard = "ownership"
	DashboardRisk          Dashboard = "risk"
	DashboardCollaboration Dashboard = "collaboration"
)

// IsValid checks if the dashboard value is valid
func (d Dashboard) IsValid() bool {
	switch d {
	case DashboardQuality, DashboardSecurity, DashboardDeployment,
		DashboardFlow, DashboardOwnership, DashboardRisk, DashboardCollaboration:
		return true
	}
	return false
}

// AllDashboards lists every known dashboard in ingestion order.
func AllDashboards() []Dashboard {
	return []Dashboard{
		DashboardQuality,
		DashboardSecurity,
		DashboardDeployment,
		DashboardFlow,
		DashboardOwnership,
		DashboardRisk,
		DashboardCollaboration,
	}
}

// MetricPoint is one scalar observation in a metric series.
// There is no uniqueness key: points for the same (dashboard, project, metric)
// over different dates form a series, and "latest" means max date.
// The whole table is truncated and rebuilt on every import run.
type MetricPoint struct {
	MetricDate  time.Time `json:"metric_date"`
	Dashboard   Dashboard `json:"dashboard"`
	ProjectName string    `json:"project_name"`
	MetricName  string    `json:"metric_name"`
	Value       *float64  `json:"value"` // nil means the source had no reading; never substituted with zero
	Unit        string    `json:"unit,omitempty"`
}

// Validate checks if the point has valid field values
func (p *MetricPoint) Validate() error {
	if !p.Dashboard.IsValid() {
		return fmt.Errorf("invalid dashboard: %s", p.Dashboard)
	}
	if p.ProjectName == "" {
		return fmt.Errorf("project_name is required")
	}
	if p.MetricName == "" {
		return fmt.Errorf("metric_name is required")
	}
	if p.MetricDate.IsZero() {
		return fmt.Errorf("metric_date is required")
	}
	return nil
}

// SeriesKey identifies one metric series.
type SeriesKey struct {
	Dashboard   Dashboard `json:"dashboard"`
	ProjectName string    `json:"project_name"`
	MetricName  string    `json:"metric_name"`
}

func (k SeriesKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Dashboard, k.ProjectName, k.MetricName)
}

// RollingStats is the per-series statistical baseline, keyed by
// (dashboard, project_name, metric_name) and recomputed in full on
// every import run. Series with fewer than 2 points or zero variance
// are never persisted: they carry no anomaly signal.
type RollingStats struct {
	Dashboard   Dashboard `json:"dashboard"`
	ProjectName string    `json:"project_name"`
	MetricName  string    `json:"metric_name"`
	Mean        float64   `json:"rolling_mean"`
	Std         float64   `json:"rolling_std"`
	TrendSlope  float64   `json:"trend_slope"`
	Last8WAvg   float64   `json:"last_8w_avg"`
	UpdatedAt   time.Time `json:"last_updated"`
}

// Key returns the series key for this baseline row.
func (r *RollingStats) Key() SeriesKey {
	return SeriesKey{Dashboard: r.Dashboard, ProjectName: r.ProjectName, MetricName: r.MetricName}
}
