package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mharmon/engpulse/internal/forecast"
	"github.com/mharmon/engpulse/internal/snapshot"
	"github.com/mharmon/engpulse/internal/trends"
	"github.com/mharmon/engpulse/internal/types"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Show progress toward the reduction target",
	Long: `Compute the target-progress forecast: per-metric progress
percentages, trailing 4-week burn rates, required burn rates, and a
trajectory classification against the fixed 70% reduction target.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		targetDate, err := cfg.ParseTargetDate()
		if err != nil {
			return err
		}

		baselines := snapshot.LoadBaselines(cfg.SecurityBaselinePath, cfg.BugBaselinePath)
		extractor := trends.NewExtractor(cfg.HistoryDir)

		tp := forecast.Compute(baselines,
			seriesPoints(extractor.Dashboard(types.DashboardQuality), "open_bug_count"),
			seriesPoints(extractor.Dashboard(types.DashboardSecurity), "total_vulns"),
			time.Now().UTC(), targetDate)

		fmt.Printf("Target date %s (%d weeks remaining)\n\n", targetDate.Format("2006-01-02"), tp.WeeksRemaining)
		printProgress("Bugs", tp.Bugs)
		printProgress("Vulnerabilities", tp.Vulnerabilities)

		fmt.Printf("\nOverall progress: %.1f%% (was %.1f%%)\n", tp.OverallPct, tp.PreviousPct)
		if tp.Trajectory == types.TrajectoryOnTrack {
			color.Green("Trajectory: %s", tp.Trajectory)
		} else {
			color.Red("Trajectory: %s", tp.Trajectory)
		}
		if tp.WeeksToTarget > 0 {
			fmt.Printf("Weeks to target at current burn: %.1f\n", tp.WeeksToTarget)
		}
		fmt.Println(tp.Message)
		return nil
	},
}

func printProgress(label string, m types.MetricProgress) {
	fmt.Printf("%s: %d → %d (target %d), %.1f%% of required reduction\n",
		label, m.Baseline, m.Current, m.Target, m.ProgressPct)
	fmt.Printf("  burn rate %.1f/week actual vs %.1f/week required\n", m.Burn.Actual, m.Burn.Required)
}

func seriesPoints(all []types.TrendSeries, metric string) []types.TrendPoint {
	for i := range all {
		if all[i].Metric == metric {
			return all[i].Points
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(forecastCmd)
}
