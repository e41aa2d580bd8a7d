package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mharmon/engpulse/internal/normalize"
	"github.com/mharmon/engpulse/internal/storage/sqlite"
	"github.com/mharmon/engpulse/internal/types"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Rebuild the metric store from the JSON histories",
	Long: `Run a full-rebuild ingestion: truncate the metrics table, flatten
every dashboard's history file into metric points, and refresh the
rolling statistical baselines.

A missing or malformed history file skips that dashboard and never
aborts the run.

Examples:
  engpulse import
  engpulse import --history-dir /var/lib/engpulse/history --db /var/lib/engpulse/metrics.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		summary, err := normalize.NewImporter(store, cfg.HistoryDir).Run(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Import run %s\n\n", summary.RunID)

		dashboards := make([]string, 0, len(summary.RowsByDashboard))
		for d := range summary.RowsByDashboard {
			dashboards = append(dashboards, string(d))
		}
		sort.Strings(dashboards)

		for _, d := range dashboards {
			n := summary.RowsByDashboard[types.Dashboard(d)]
			if n == 0 {
				color.Yellow("  %-15s skipped (no data)", d)
			} else {
				fmt.Printf("  %-15s %d rows\n", d, n)
			}
		}

		fmt.Printf("\n%d metric rows, %d series with baselines\n", summary.TotalRows, summary.SeriesWithStats)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
