package rules

import (
	"context"
	"time"

	"github.com/mharmon/engpulse/internal/storage/sqlite"
	"github.com/mharmon/engpulse/internal/types"
)

// Evaluate runs every rule in the catalog against the store and returns
// the staged alerts. For each rule only the most recent point per
// distinct project is considered: a rule describes current state, so
// older rows for the same project must not fire it.
func Evaluate(ctx context.Context, store *sqlite.Store, catalog []types.ThresholdRule, now time.Time) ([]types.Alert, error) {
	var alerts []types.Alert

	for _, rule := range catalog {
		points, err := store.PointsByMetric(ctx, rule.Dashboard, rule.MetricName)
		if err != nil {
			return nil, err
		}

		// Points arrive date-descending: the first row seen for a
		// project is its latest, everything after is history.
		seen := make(map[string]bool)
		for i := range points {
			p := &points[i]
			if seen[p.ProjectName] {
				continue
			}
			seen[p.ProjectName] = true

			if p.Value == nil || !rule.Triggered(*p.Value) {
				continue
			}

			alerts = append(alerts, types.Alert{
				Dashboard:   rule.Dashboard,
				ProjectName: p.ProjectName,
				MetricName:  rule.MetricName,
				MetricDate:  p.MetricDate,
				AlertType:   types.AlertThreshold,
				Severity:    rule.Severity,
				Value:       *p.Value,
				Expected:    rule.Threshold,
				Message:     rule.Message(p.ProjectName, *p.Value),
				CreatedAt:   now,
			})
		}
	}

	return alerts, nil
}
