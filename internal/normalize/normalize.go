// Package normalize flattens the per-dashboard JSON nesting into
// uniform MetricPoint rows. Every dashboard has its own flattening
// rules; the policies that matter are: null or missing leaves are
// skipped (absence must not read as zero), composite labels become
// lowercase underscore-joined metric names, and the security dashboard
// stays per-product.
package normalize

import (
	"log/slog"
	"strings"
	"time"

	"github.com/mharmon/engpulse/internal/snapshot"
	"github.com/mharmon/engpulse/internal/types"
)

// MetricKey normalizes a composite label ("User Story", "Tech Debt")
// into a metric-name fragment: lowercase, whitespace collapsed to
// single underscores. A series can then be looked up without knowing
// the source's original casing.
func MetricKey(label string) string {
	fields := strings.Fields(strings.ToLower(label))
	return strings.Join(fields, "_")
}

// numField extracts a numeric leaf from a raw JSON row. The second
// return is false when the key is missing, null, or not a number —
// callers skip the point entirely rather than writing a zero.
func numField(row map[string]interface{}, key string) (float64, bool) {
	raw, ok := row[key]
	if !ok || raw == nil {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// strField extracts a string leaf, empty when missing or not a string.
func strField(row map[string]interface{}, key string) string {
	if raw, ok := row[key]; ok {
		if s, ok := raw.(string); ok {
			return s
		}
	}
	return ""
}

// subMap extracts a nested object leaf.
func subMap(row map[string]interface{}, key string) map[string]interface{} {
	if raw, ok := row[key]; ok {
		if m, ok := raw.(map[string]interface{}); ok {
			return m
		}
	}
	return nil
}

// parseWeekDate parses a week_date field. Malformed dates invalidate
// the whole week: without a date the points cannot join any series.
func parseWeekDate(w *snapshot.Week) (time.Time, bool) {
	d, err := time.Parse("2006-01-02", w.WeekDate)
	if err != nil {
		slog.Warn("week has unparseable date", "week_date", w.WeekDate, "week_number", w.WeekNumber)
		return time.Time{}, false
	}
	return d, true
}

// point assembles one row; used by every flattener.
func point(date time.Time, dashboard types.Dashboard, project, metric string, value float64, unit string) types.MetricPoint {
	v := value
	return types.MetricPoint{
		MetricDate:  date,
		Dashboard:   dashboard,
		ProjectName: project,
		MetricName:  metric,
		Value:       &v,
		Unit:        unit,
	}
}
