// Package forecast computes progress toward the fixed reduction target
// for bug and vulnerability counts: progress percentages, trailing
// burn rates, required burn rates, and a trajectory message.
package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/mharmon/engpulse/internal/snapshot"
	"github.com/mharmon/engpulse/internal/types"
)

// ReductionFraction is the fixed target: reduce each baseline count by
// 70%, leaving 30% of the baseline.
const ReductionFraction = 0.7

// burnWindowWeeks is the trailing window for the actual burn rate.
const burnWindowWeeks = 4

// onTrackPct is the progress percentage at or above which the
// trajectory reads On Track.
const onTrackPct = 70.0

// Target returns the absolute target count for a baseline.
func Target(baseline int) int {
	return int(math.Round(float64(baseline) * (1 - ReductionFraction)))
}

// ProgressPct measures how far current has moved from baseline toward
// target, as a percentage of the required reduction. Zero when the
// baseline carries no reduction room.
func ProgressPct(baseline, target, current int) float64 {
	span := baseline - target
	if span <= 0 {
		return 0
	}
	return float64(baseline-current) / float64(span) * 100
}

// BurnRate computes the weekly reduction over the trailing 4-week
// window of a series: (value 4 weeks ago - value now) / 4. A shorter
// series uses the window it has. Positive means the count is falling.
func BurnRate(series []float64) float64 {
	n := len(series)
	if n < 2 {
		return 0
	}
	window := burnWindowWeeks
	if n-1 < window {
		window = n - 1
	}
	return (series[n-1-window] - series[n-1]) / float64(window)
}

// RequiredBurn is the weekly reduction needed to reach target by the
// deadline. With no weeks left, the whole remainder is due now.
func RequiredBurn(current, target, weeksRemaining int) float64 {
	remaining := float64(current - target)
	if remaining <= 0 {
		return 0
	}
	if weeksRemaining <= 0 {
		return remaining
	}
	return remaining / float64(weeksRemaining)
}

// WeeksRemaining counts whole weeks from now until the target date,
// rounding partial weeks up; never negative.
func WeeksRemaining(now, targetDate time.Time) int {
	if !targetDate.After(now) {
		return 0
	}
	days := targetDate.Sub(now).Hours() / 24
	return int(math.Ceil(days / 7))
}

// Compute builds the full target-progress forecast. bugSeries and
// vulnSeries are the weekly total counts from trend extraction, oldest
// first; their last values are the current counts. A zero baseline
// disables that half of the forecast.
func Compute(baselines snapshot.Baselines, bugSeries, vulnSeries []types.TrendPoint, now, targetDate time.Time) *types.TargetProgress {
	weeksRemaining := WeeksRemaining(now, targetDate)

	bugs := metricProgress(baselines.Bugs, values(bugSeries), weeksRemaining)
	vulns := metricProgress(baselines.Vulnerabilities, values(vulnSeries), weeksRemaining)

	overall := (bugs.ProgressPct + vulns.ProgressPct) / 2
	previous := (previousProgress(baselines.Bugs, values(bugSeries)) +
		previousProgress(baselines.Vulnerabilities, values(vulnSeries))) / 2

	trajectory := types.TrajectoryBehind
	if overall >= onTrackPct {
		trajectory = types.TrajectoryOnTrack
	}

	return &types.TargetProgress{
		Bugs:            bugs,
		Vulnerabilities: vulns,
		OverallPct:      round1(overall),
		PreviousPct:     round1(previous),
		Trajectory:      trajectory,
		WeeksRemaining:  weeksRemaining,
		WeeksToTarget:   weeksToTarget(bugs, vulns),
		Message:         message(bugs, vulns, weeksRemaining),
	}
}

func values(points []types.TrendPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}

func metricProgress(baseline int, series []float64, weeksRemaining int) types.MetricProgress {
	target := Target(baseline)
	current := baseline
	if len(series) > 0 {
		current = int(math.Round(series[len(series)-1]))
	}

	return types.MetricProgress{
		Baseline:    baseline,
		Target:      target,
		Current:     current,
		ProgressPct: round1(ProgressPct(baseline, target, current)),
		Burn: types.BurnRates{
			Actual:   BurnRate(series),
			Required: RequiredBurn(current, target, weeksRemaining),
		},
	}
}

func previousProgress(baseline int, series []float64) float64 {
	if len(series) < 2 {
		return 0
	}
	prev := int(math.Round(series[len(series)-2]))
	return ProgressPct(baseline, Target(baseline), prev)
}

// weeksToTarget is how long the slower of the two metrics needs at its
// actual burn rate. Zero when either burn rate is non-positive: no
// finite projection exists while a count is flat or rising.
func weeksToTarget(bugs, vulns types.MetricProgress) float64 {
	worst := 0.0
	for _, m := range []types.MetricProgress{bugs, vulns} {
		remaining := float64(m.Current - m.Target)
		if remaining <= 0 {
			continue
		}
		if m.Burn.Actual <= 0 {
			return 0
		}
		if w := remaining / m.Burn.Actual; w > worst {
			worst = w
		}
	}
	return round1(worst)
}

func message(bugs, vulns types.MetricProgress, weeksRemaining int) string {
	bugsStalled := bugs.Burn.Actual <= 0 && bugs.Current > bugs.Target
	vulnsStalled := vulns.Burn.Actual <= 0 && vulns.Current > vulns.Target

	switch {
	case bugsStalled && vulnsStalled:
		return "Warning: both bug and vulnerability counts are flat or increasing; no progress toward target"
	case bugsStalled:
		return "Bug count is flat or increasing; vulnerability burn-down alone cannot reach the combined target"
	case vulnsStalled:
		return "Vulnerability count is flat or increasing; bug burn-down alone cannot reach the combined target"
	}

	requiredTotal := bugs.Burn.Required + vulns.Burn.Required
	actualTotal := bugs.Burn.Actual + vulns.Burn.Actual
	if requiredTotal <= 0 {
		return "Target already reached for both bugs and vulnerabilities"
	}

	pctOfRequired := actualTotal / requiredTotal * 100
	if pctOfRequired >= 100 {
		return fmt.Sprintf("On track: current burn rate is %.0f%% of the required rate", pctOfRequired)
	}

	// At the current pace, what share of the remaining reduction lands
	// by the deadline
	achievable := actualTotal * float64(weeksRemaining)
	remainingTotal := float64(bugs.Current-bugs.Target) + float64(vulns.Current-vulns.Target)
	pctReachable := 100.0
	if remainingTotal > 0 {
		pctReachable = achievable / remainingTotal * 100
	}
	return fmt.Sprintf("Behind: current burn rate reaches about %.0f%% of the target by the deadline", pctReachable)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
