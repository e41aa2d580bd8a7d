package stats

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mharmon/engpulse/internal/storage/sqlite"
	"github.com/mharmon/engpulse/internal/types"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 5.0, Mean([]float64{5}))
	assert.Equal(t, 100.0, Mean([]float64{100, 102, 98, 101, 99, 103, 97, 100}))
}

func TestSampleStd(t *testing.T) {
	assert.Equal(t, 0.0, SampleStd(nil))
	assert.Equal(t, 0.0, SampleStd([]float64{7}))
	assert.Equal(t, 0.0, SampleStd([]float64{4, 4, 4, 4}))

	// Sample (n-1) std of 2,4,4,4,5,5,7,9 is sqrt(32/7)
	got := SampleStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, math.Sqrt(32.0/7.0), got, 1e-9)
}

func TestTrendSlope(t *testing.T) {
	assert.Equal(t, 0.0, TrendSlope([]float64{3}))
	assert.InDelta(t, 2.0, TrendSlope([]float64{1, 3, 5, 7}), 1e-9)
	assert.InDelta(t, -1.0, TrendSlope([]float64{10, 9, 8, 7, 6}), 1e-9)
	assert.InDelta(t, 0.0, TrendSlope([]float64{5, 5, 5}), 1e-9)
}

func TestLastNAvg(t *testing.T) {
	assert.Equal(t, 2.0, LastNAvg([]float64{1, 2, 3}, 8), "short series averages everything")
	vals := []float64{100, 100, 100, 1, 1, 1, 1, 1, 1, 1, 1}
	assert.Equal(t, 1.0, LastNAvg(vals, 8), "only the trailing 8 points count")
}

func TestComputeSkipsNoSignalSeries(t *testing.T) {
	key := types.SeriesKey{Dashboard: types.DashboardQuality, ProjectName: "P", MetricName: "m"}
	now := time.Now()

	assert.Nil(t, Compute(key, nil, now))
	assert.Nil(t, Compute(key, []float64{42}, now), "single point has no variance")
	assert.Nil(t, Compute(key, []float64{5, 5, 5, 5}, now), "constant series has no signal")

	rs := Compute(key, []float64{100, 102, 98, 101, 99, 103, 97, 100}, now)
	require.NotNil(t, rs)
	assert.InDelta(t, 100.0, rs.Mean, 1e-9)
	assert.Greater(t, rs.Std, 0.0)
	assert.InDelta(t, 100.0, rs.Last8WAvg, 1e-9)
}

func TestRefresh(t *testing.T) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()

	f := func(v float64) *float64 { return &v }
	var points []types.MetricPoint
	varying := []float64{100, 102, 98, 101}
	for i, v := range varying {
		points = append(points, types.MetricPoint{
			MetricDate:  time.Date(2026, 1, 5+7*i, 0, 0, 0, 0, time.UTC),
			Dashboard:   types.DashboardQuality,
			ProjectName: "Payments",
			MetricName:  "open_bug_count",
			Value:       f(v),
		})
		// Constant companion series: must not get a baseline row
		points = append(points, types.MetricPoint{
			MetricDate:  time.Date(2026, 1, 5+7*i, 0, 0, 0, 0, time.UTC),
			Dashboard:   types.DashboardQuality,
			ProjectName: "Payments",
			MetricName:  "p1_open_count",
			Value:       f(3),
		})
	}
	_, err = store.InsertMetricPoints(ctx, points)
	require.NoError(t, err)

	n, err := Refresh(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stats, err := store.ListRollingStats(ctx, false)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "open_bug_count", stats[0].MetricName)
	assert.Greater(t, stats[0].Std, 0.0)

	// Refresh is idempotent: run again, still one row
	n, err = Refresh(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stats, err = store.ListRollingStats(ctx, false)
	require.NoError(t, err)
	assert.Len(t, stats, 1)
}
