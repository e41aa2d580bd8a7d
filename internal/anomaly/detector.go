// Package anomaly flags metric series whose latest value sits an
// unusual number of standard deviations from its rolling mean.
package anomaly

import (
	"context"
	"math"
	"sort"

	"github.com/mharmon/engpulse/internal/storage/sqlite"
	"github.com/mharmon/engpulse/internal/types"
)

// DefaultThreshold is the minimum |z| that counts as anomalous.
const DefaultThreshold = 2.0

// highThreshold promotes an anomaly to high severity.
const highThreshold = 3.0

// Detector scans rolling-stats baselines against the latest points.
type Detector struct {
	store     *sqlite.Store
	threshold float64
}

// New creates a detector. A threshold of 0 or less selects the default.
func New(store *sqlite.Store, threshold float64) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Detector{store: store, threshold: threshold}
}

// Score evaluates one observation against a baseline. The second return
// is false when the value is within threshold (or the baseline carries
// no signal).
func Score(value, mean, std, threshold float64) (z float64, anomalous bool) {
	if std <= 0 {
		return 0, false
	}
	z = (value - mean) / std
	return z, math.Abs(z) >= threshold
}

// DetectAll scans every signal-bearing baseline and returns anomalies
// ordered high severity first, then by descending |z|.
func (d *Detector) DetectAll(ctx context.Context) ([]types.AnomalyResult, error) {
	stats, err := d.store.ListRollingStats(ctx, true)
	if err != nil {
		return nil, err
	}
	return d.scan(ctx, stats)
}

// DetectForDashboard scans only one dashboard's baselines.
func (d *Detector) DetectForDashboard(ctx context.Context, dashboard types.Dashboard) ([]types.AnomalyResult, error) {
	stats, err := d.store.ListRollingStatsForDashboard(ctx, dashboard)
	if err != nil {
		return nil, err
	}
	return d.scan(ctx, stats)
}

func (d *Detector) scan(ctx context.Context, stats []types.RollingStats) ([]types.AnomalyResult, error) {
	var results []types.AnomalyResult

	for i := range stats {
		rs := &stats[i]

		point, err := d.store.LatestPoint(ctx, rs.Key())
		if err != nil {
			return nil, err
		}
		if point == nil || point.Value == nil {
			continue
		}

		z, anomalous := Score(*point.Value, rs.Mean, rs.Std, d.threshold)
		if !anomalous {
			continue
		}

		direction := types.DirectionAbove
		if z < 0 {
			direction = types.DirectionBelow
		}
		severity := types.SeverityMedium
		if math.Abs(z) > highThreshold {
			severity = types.SeverityHigh
		}

		results = append(results, types.AnomalyResult{
			Dashboard:   rs.Dashboard,
			ProjectName: rs.ProjectName,
			MetricName:  rs.MetricName,
			MetricDate:  point.MetricDate,
			Value:       *point.Value,
			Expected:    rs.Mean,
			ZScore:      z,
			Direction:   direction,
			Severity:    severity,
		})
	}

	// Most significant first: high severity, then |z| descending
	sort.SliceStable(results, func(i, j int) bool {
		si, sj := results[i].Severity, results[j].Severity
		if si != sj {
			return si == types.SeverityHigh
		}
		return math.Abs(results[i].ZScore) > math.Abs(results[j].ZScore)
	})

	return results, nil
}
