package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mharmon/engpulse/internal/alerts"
	"github.com/mharmon/engpulse/internal/storage/sqlite"
	"github.com/mharmon/engpulse/internal/types"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Evaluate and list alerts",
}

var alertsRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Re-evaluate all alerts from current data",
	Long: `Clear the alerts table and re-run the anomaly detector and the
threshold rule catalog against the latest metric points.

The alert set is a statement about the current evaluation: running
twice on unchanged data produces the identical set. Requires an
imported metrics database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := alerts.New(store, cfg.ZScoreThreshold).Run(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("%d alerts written\n", n)
		return nil
	},
}

var alertsListLimit int

var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show current alerts, most severe first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		list, err := alerts.New(store, cfg.ZScoreThreshold).Load(ctx, alertsListLimit)
		if err != nil {
			return err
		}

		if len(list) == 0 {
			fmt.Println("No alerts")
			return nil
		}

		for _, a := range list {
			fmt.Printf("%s  %-9s %-10s %s\n",
				a.MetricDate.Format("2006-01-02"), severityLabel(a.Severity), a.AlertType, a.Message)
		}
		return nil
	},
}

func severityLabel(s types.Severity) string {
	switch s {
	case types.SeverityCritical:
		return color.RedString(string(s))
	case types.SeverityHigh:
		return color.New(color.FgRed, color.Bold).Sprint(string(s))
	case types.SeverityWarn:
		return color.YellowString(string(s))
	default:
		return string(s)
	}
}

func init() {
	alertsListCmd.Flags().IntVar(&alertsListLimit, "limit", 50, "Maximum alerts to show")
	alertsCmd.AddCommand(alertsRunCmd)
	alertsCmd.AddCommand(alertsListCmd)
	rootCmd.AddCommand(alertsCmd)
}
