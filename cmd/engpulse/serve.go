package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/mharmon/engpulse/internal/api"
	"github.com/mharmon/engpulse/internal/storage/sqlite"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only query API",
	Long: `Serve the JSON query API dashboard consumers read: alerts,
anomalies, trend series, and the target forecast. All endpoints are
pure reads; ingestion stays a batch job.

Examples:
  engpulse serve
  engpulse serve --addr :9090`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		addr := cfg.API.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		fmt.Printf("Serving query API on %s\n", addr)
		return http.ListenAndServe(addr, api.NewRouter(store, cfg))
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
