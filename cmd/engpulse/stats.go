package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mharmon/engpulse/internal/anomaly"
	"github.com/mharmon/engpulse/internal/storage/sqlite"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show rolling baselines and current anomalies",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := store.ListRollingStats(ctx, false)
		if err != nil {
			return err
		}

		fmt.Printf("%d series with baselines\n\n", len(stats))
		for _, rs := range stats {
			fmt.Printf("  %-50s mean=%-8.2f std=%-7.2f slope=%-+7.3f last8w=%.2f\n",
				rs.Key(), rs.Mean, rs.Std, rs.TrendSlope, rs.Last8WAvg)
		}

		results, err := anomaly.New(store, cfg.ZScoreThreshold).DetectAll(ctx)
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Println("\nNo anomalies")
			return nil
		}

		fmt.Printf("\n%d anomalies:\n", len(results))
		for _, r := range results {
			fmt.Printf("  [%s] %s/%s/%s value=%.2f expected=%.2f z=%.1f (%s)\n",
				r.Severity, r.Dashboard, r.ProjectName, r.MetricName,
				r.Value, r.Expected, r.ZScore, r.Direction)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
