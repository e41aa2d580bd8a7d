package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mharmon/engpulse/internal/snapshot"
	"github.com/mharmon/engpulse/internal/types"
)

func week(n int, value float64) types.TrendPoint {
	return types.TrendPoint{
		WeekDate: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 7*n),
		Value:    value,
	}
}

func TestTarget(t *testing.T) {
	assert.Equal(t, 90, Target(300), "70%% reduction leaves 30%%")
	assert.Equal(t, 120, Target(400))
	assert.Equal(t, 0, Target(0))
}

func TestProgressPct(t *testing.T) {
	// baseline 300, target 90, current 200 → (300-200)/(300-90)*100
	assert.InDelta(t, 47.619, ProgressPct(300, 90, 200), 0.001)
	assert.Equal(t, 100.0, ProgressPct(300, 90, 90))
	assert.Equal(t, 0.0, ProgressPct(0, 0, 0), "no reduction room, no progress")
}

func TestBurnRate(t *testing.T) {
	assert.Equal(t, 0.0, BurnRate(nil))
	assert.Equal(t, 0.0, BurnRate([]float64{100}))

	// (value 4 weeks ago - value now) / 4
	assert.InDelta(t, 5.0, BurnRate([]float64{240, 220, 215, 210, 205, 200}), 1e-9)

	// Shorter series uses the window it has: (220-200)/2
	assert.InDelta(t, 10.0, BurnRate([]float64{220, 210, 200}), 1e-9)

	// Rising count burns negative
	assert.InDelta(t, -2.5, BurnRate([]float64{100, 102, 105, 108, 110}), 1e-9)
}

func TestRequiredBurn(t *testing.T) {
	// current 200, target 90, 20 weeks → 110/20
	assert.InDelta(t, 5.5, RequiredBurn(200, 90, 20), 1e-9)
	assert.Equal(t, 0.0, RequiredBurn(80, 90, 20), "already at target")
	assert.Equal(t, 110.0, RequiredBurn(200, 90, 0), "no weeks left, whole remainder due")
}

func TestWeeksRemaining(t *testing.T) {
	now := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 20, WeeksRemaining(now, now.AddDate(0, 0, 140)))
	assert.Equal(t, 1, WeeksRemaining(now, now.AddDate(0, 0, 3)), "partial weeks round up")
	assert.Equal(t, 0, WeeksRemaining(now, now.AddDate(0, 0, -7)))
}

func TestComputeSpecFixture(t *testing.T) {
	baselines := snapshot.Baselines{Bugs: 300, Vulnerabilities: 400}
	now := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	targetDate := now.AddDate(0, 0, 140) // 20 weeks out

	bugSeries := []types.TrendPoint{week(0, 220), week(1, 215), week(2, 210), week(3, 205), week(4, 200)}
	vulnSeries := []types.TrendPoint{week(0, 260), week(1, 250), week(2, 245), week(3, 242), week(4, 240)}

	tp := Compute(baselines, bugSeries, vulnSeries, now, targetDate)
	require.NotNil(t, tp)

	assert.Equal(t, 90, tp.Bugs.Target)
	assert.Equal(t, 200, tp.Bugs.Current)
	assert.Equal(t, 20, tp.WeeksRemaining)
	assert.InDelta(t, 5.5, tp.Bugs.Burn.Required, 1e-9, "remaining 110 over 20 weeks")
	assert.InDelta(t, 5.0, tp.Bugs.Burn.Actual, 1e-9)

	assert.Equal(t, 120, tp.Vulnerabilities.Target)
	assert.InDelta(t, 6.0, tp.Vulnerabilities.Burn.Required, 1e-9)

	// Bugs 47.6%, vulns (400-240)/280 = 57.1% → overall ≈ 52.4, Behind
	assert.InDelta(t, 52.4, tp.OverallPct, 0.1)
	assert.Equal(t, types.TrajectoryBehind, tp.Trajectory)
	assert.Greater(t, tp.WeeksToTarget, 20.0, "slower than the deadline allows")
	assert.Contains(t, tp.Message, "Behind")
}

func TestComputeOnTrack(t *testing.T) {
	baselines := snapshot.Baselines{Bugs: 300, Vulnerabilities: 400}
	now := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	targetDate := now.AddDate(0, 0, 140)

	// Both counts near target: progress well above 70%
	bugSeries := []types.TrendPoint{week(0, 160), week(1, 140), week(2, 130), week(3, 120), week(4, 110)}
	vulnSeries := []types.TrendPoint{week(0, 200), week(1, 180), week(2, 170), week(3, 160), week(4, 150)}

	tp := Compute(baselines, bugSeries, vulnSeries, now, targetDate)
	assert.Equal(t, types.TrajectoryOnTrack, tp.Trajectory)
	assert.GreaterOrEqual(t, tp.OverallPct, 70.0)
	assert.Contains(t, tp.Message, "On track")
}

func TestComputeBothWorsening(t *testing.T) {
	baselines := snapshot.Baselines{Bugs: 300, Vulnerabilities: 400}
	now := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	targetDate := now.AddDate(0, 0, 140)

	bugSeries := []types.TrendPoint{week(0, 200), week(1, 205), week(2, 210)}
	vulnSeries := []types.TrendPoint{week(0, 240), week(1, 245), week(2, 250)}

	tp := Compute(baselines, bugSeries, vulnSeries, now, targetDate)
	assert.Contains(t, tp.Message, "both bug and vulnerability counts")
	assert.Equal(t, 0.0, tp.WeeksToTarget, "no finite projection while counts rise")
}

func TestComputeOneWorsening(t *testing.T) {
	baselines := snapshot.Baselines{Bugs: 300, Vulnerabilities: 400}
	now := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	targetDate := now.AddDate(0, 0, 140)

	bugSeries := []types.TrendPoint{week(0, 200), week(1, 205), week(2, 210)}
	vulnSeries := []types.TrendPoint{week(0, 260), week(1, 250), week(2, 240)}

	tp := Compute(baselines, bugSeries, vulnSeries, now, targetDate)
	assert.Contains(t, tp.Message, "Bug count is flat or increasing")
}

func TestComputePreviousProgress(t *testing.T) {
	baselines := snapshot.Baselines{Bugs: 300, Vulnerabilities: 300}
	now := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	series := []types.TrendPoint{week(0, 220), week(1, 200)}
	tp := Compute(baselines, series, series, now, now.AddDate(0, 0, 140))

	// previous week 220: (300-220)/210 ≈ 38.1; current 200: ≈ 47.6
	assert.InDelta(t, 38.1, tp.PreviousPct, 0.1)
	assert.InDelta(t, 47.6, tp.OverallPct, 0.1)
}
