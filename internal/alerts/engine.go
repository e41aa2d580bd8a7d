// Package alerts orchestrates anomaly detection and threshold rules
// into the alerts table.
package alerts

import (
	"context"
	"log/slog"
	"time"

	"github.com/mharmon/engpulse/internal/anomaly"
	"github.com/mharmon/engpulse/internal/rules"
	"github.com/mharmon/engpulse/internal/storage/sqlite"
	"github.com/mharmon/engpulse/internal/types"
)

// Engine re-evaluates all alerts from current data. Each Run replaces
// the entire alerts table: an alert is a statement about the current
// evaluation, not an accumulating log, so running twice on unchanged
// data yields an identical set.
type Engine struct {
	store    *sqlite.Store
	detector *anomaly.Detector
	catalog  []types.ThresholdRule
}

// New creates an engine over the given store. A zScoreThreshold of 0
// or less selects the anomaly default.
func New(store *sqlite.Store, zScoreThreshold float64) *Engine {
	return &Engine{
		store:    store,
		detector: anomaly.New(store, zScoreThreshold),
		catalog:  rules.Catalog,
	}
}

// NewWithCatalog creates an engine with a custom rule catalog (tests).
func NewWithCatalog(store *sqlite.Store, zScoreThreshold float64, catalog []types.ThresholdRule) *Engine {
	e := New(store, zScoreThreshold)
	e.catalog = catalog
	return e
}

// Run clears the alerts table, runs the anomaly detector and the
// threshold evaluator in sequence, and writes the combined set.
// Returns the number of alerts written.
func (e *Engine) Run(ctx context.Context) (int, error) {
	now := time.Now().UTC()

	anomalies, err := e.detector.DetectAll(ctx)
	if err != nil {
		return 0, err
	}

	staged := make([]types.Alert, 0, len(anomalies))
	for i := range anomalies {
		staged = append(staged, anomalies[i].ToAlert(now))
	}

	ruleAlerts, err := rules.Evaluate(ctx, e.store, e.catalog, now)
	if err != nil {
		return 0, err
	}
	staged = append(staged, ruleAlerts...)

	n, err := e.store.ReplaceAlerts(ctx, staged)
	if err != nil {
		return 0, err
	}

	slog.Info("alert evaluation complete",
		"anomalies", len(anomalies), "threshold_alerts", len(ruleAlerts), "total", n)
	return n, nil
}

// Load returns up to limit alerts, most severe first, then most recent.
func (e *Engine) Load(ctx context.Context, limit int) ([]types.Alert, error) {
	return e.store.ListAlerts(ctx, limit)
}
