// engpulse ingests weekly engineering-health snapshots into a metric
// time-series store, maintains rolling statistical baselines, evaluates
// anomalies and threshold rules into alerts, and forecasts progress
// toward the reduction target.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mharmon/engpulse/internal/config"
)

var (
	cfgPath    string
	dbPath     string
	historyDir string
	verbose    bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "engpulse",
	Short: "Engineering-health metrics core",
	Long: `engpulse is the batch core behind the engineering-health dashboards.

It normalizes weekly JSON snapshots (bugs, vulnerabilities, deployment,
flow, ownership, risk, collaboration) into a uniform metric store,
computes rolling per-series baselines, raises anomaly and threshold
alerts, and forecasts progress toward the fixed reduction target.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
	SilenceUsage: true,
}

func loadConfig() error {
	// .env can supply ENGPULSE_DB / ENGPULSE_HISTORY_DIR for local runs
	_ = godotenv.Load()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	// Flag and env overrides win over the config file
	if env := os.Getenv("ENGPULSE_DB"); env != "" {
		cfg.DBPath = env
	}
	if env := os.Getenv("ENGPULSE_HISTORY_DIR"); env != "" {
		cfg.HistoryDir = env
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if historyDir != "" {
		cfg.HistoryDir = historyDir
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to metrics database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&historyDir, "history-dir", "", "Path to JSON history directory (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
