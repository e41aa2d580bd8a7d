// Package stats computes the per-series rolling baselines: mean, sample
// standard deviation, least-squares trend slope over week index, and
// the trailing 8-week average.
package stats

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/mharmon/engpulse/internal/storage/sqlite"
	"github.com/mharmon/engpulse/internal/types"
)

// minSeriesPoints is the smallest series that carries any baseline
// signal: a single observation has no variance.
const minSeriesPoints = 2

// lastWindow is the trailing window for the short-term average.
const lastWindow = 8

// Mean returns the arithmetic mean of values. Zero for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SampleStd returns the sample standard deviation (n-1 denominator).
// Zero when fewer than 2 values.
func SampleStd(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	mean := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// TrendSlope returns the ordinary least-squares slope of value against
// week index 0,1,2,... Zero when fewer than 2 values.
func TrendSlope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	// x is the week index, so its mean and variance have closed forms.
	meanX := float64(n-1) / 2
	meanY := Mean(values)

	num := 0.0
	den := 0.0
	for i, v := range values {
		dx := float64(i) - meanX
		num += dx * (v - meanY)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// LastNAvg returns the mean of the final n values, or of the whole
// series when it is shorter than n.
func LastNAvg(values []float64, n int) float64 {
	if len(values) > n {
		values = values[len(values)-n:]
	}
	return Mean(values)
}

// Compute builds the baseline row for one series, or nil when the
// series carries no signal: fewer than 2 points, or zero variance
// (a constant series would never produce an anomaly and is excluded
// from scanning by the std>0 filter anyway).
func Compute(key types.SeriesKey, values []float64, now time.Time) *types.RollingStats {
	if len(values) < minSeriesPoints {
		return nil
	}
	std := SampleStd(values)
	if std == 0 {
		return nil
	}
	return &types.RollingStats{
		Dashboard:   key.Dashboard,
		ProjectName: key.ProjectName,
		MetricName:  key.MetricName,
		Mean:        Mean(values),
		Std:         std,
		TrendSlope:  TrendSlope(values),
		Last8WAvg:   LastNAvg(values, lastWindow),
		UpdatedAt:   now,
	}
}

// Refresh recomputes rolling stats for every series in the store. The
// table is cleared first so series that dropped out of the history do
// not leave stale baselines. Returns the number of series written.
func Refresh(ctx context.Context, store *sqlite.Store) (int, error) {
	keys, err := store.SeriesKeys(ctx)
	if err != nil {
		return 0, err
	}

	if err := store.TruncateRollingStats(ctx); err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	written := 0
	skipped := 0
	for _, key := range keys {
		values, err := store.SeriesValues(ctx, key)
		if err != nil {
			return written, err
		}

		rs := Compute(key, values, now)
		if rs == nil {
			skipped++
			continue
		}

		if err := store.UpsertRollingStats(ctx, rs); err != nil {
			return written, err
		}
		written++
	}

	slog.Info("rolling stats refreshed", "series", written, "skipped", skipped)
	return written, nil
}
