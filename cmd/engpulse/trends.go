package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mharmon/engpulse/internal/trends"
	"github.com/mharmon/engpulse/internal/types"
)

var trendsCmd = &cobra.Command{
	Use:   "trends [dashboard]",
	Short: "Show per-dashboard weekly trend series",
	Long: `Extract aggregate weekly trends straight from the JSON histories.

With no argument, every dashboard is shown. Aggregation rules are
metric-specific: bug counts sum, lead times take the median of project
P85s, build success rates are weighted by build counts.

Examples:
  engpulse trends
  engpulse trends deployment`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		extractor := trends.NewExtractor(cfg.HistoryDir)

		var series []types.TrendSeries
		if len(args) == 1 {
			dashboard := types.Dashboard(args[0])
			if !dashboard.IsValid() {
				return fmt.Errorf("unknown dashboard: %s", args[0])
			}
			series = extractor.Dashboard(dashboard)
		} else {
			series = extractor.All()
		}

		if len(series) == 0 {
			fmt.Println("No trend data")
			return nil
		}

		for _, s := range series {
			fmt.Printf("%s / %s (%s)\n", s.Dashboard, s.Metric, s.Unit)
			for _, p := range s.Points {
				fmt.Printf("  %s  %10.2f\n", p.WeekDate.Format("2006-01-02"), p.Value)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(trendsCmd)
}
