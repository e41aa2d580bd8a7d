package types

import "time"

// Trajectory classifies forecast progress toward the reduction target.
type Trajectory string

const (
	TrajectoryOnTrack Trajectory = "On Track"
	TrajectoryBehind  Trajectory = "Behind"
)

// TrendPoint is one week of an aggregated dashboard trend series.
type TrendPoint struct {
	WeekDate time.Time `json:"week_date"`
	Value    float64   `json:"value"`
}

// TrendSeries is a named weekly series for one dashboard-level metric,
// aggregated across projects with metric-specific rules.
type TrendSeries struct {
	Dashboard Dashboard    `json:"dashboard"`
	Metric    string       `json:"metric"`
	Unit      string       `json:"unit,omitempty"`
	Points    []TrendPoint `json:"points"`
}

// Latest returns the most recent point, or nil for an empty series.
func (s *TrendSeries) Latest() *TrendPoint {
	if len(s.Points) == 0 {
		return nil
	}
	return &s.Points[len(s.Points)-1]
}

// BurnRates holds the actual and required weekly reduction rates for
// one tracked count.
type BurnRates struct {
	Actual   float64 `json:"actual"`
	Required float64 `json:"required"`
}

// MetricProgress is the per-metric half of a target-progress forecast.
type MetricProgress struct {
	Baseline    int       `json:"baseline"`
	Target      int       `json:"target"`
	Current     int       `json:"current"`
	ProgressPct float64   `json:"progress_pct"`
	Burn        BurnRates `json:"burn"`
}

// TargetProgress is the full forecast toward the fixed reduction target.
// Computed fresh on each request; never persisted.
type TargetProgress struct {
	Bugs            MetricProgress `json:"bugs"`
	Vulnerabilities MetricProgress `json:"vulnerabilities"`
	OverallPct      float64        `json:"overall_pct"`
	PreviousPct     float64        `json:"previous_pct"`
	Trajectory      Trajectory     `json:"trajectory"`
	WeeksRemaining  int            `json:"weeks_remaining"`
	WeeksToTarget   float64        `json:"weeks_to_target"`
	Message         string         `json:"message"`
}
