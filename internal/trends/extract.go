package trends

import (
	"log/slog"
	"time"

	"github.com/mharmon/engpulse/internal/snapshot"
	"github.com/mharmon/engpulse/internal/types"
)

// Cleanup-effort constants. When at least CleanupShareThreshold of a
// segment's closures are items that had been open longer than
// CleanupAgeDays, the segment is treated as a bulk historical clean-up
// and its operational P85 is used instead of the raw P85, so the
// clean-up does not distort the lead-time trend. Both are carried-over
// business constants with no derivation.
const (
	CleanupShareThreshold = 0.30
	CleanupAgeDays        = 365
)

// Extractor reads dashboard histories from a directory and produces
// weekly aggregate trend series.
type Extractor struct {
	historyDir string
}

// NewExtractor creates an extractor over the history directory.
func NewExtractor(historyDir string) *Extractor {
	return &Extractor{historyDir: historyDir}
}

// Dashboard returns the trend series for one dashboard, or nil when its
// history file is absent.
func (e *Extractor) Dashboard(dashboard types.Dashboard) []types.TrendSeries {
	switch dashboard {
	case types.DashboardQuality:
		return e.quality()
	case types.DashboardSecurity:
		return e.security()
	case types.DashboardDeployment:
		return e.deployment()
	case types.DashboardFlow:
		return e.flow()
	case types.DashboardOwnership:
		return e.ownership()
	case types.DashboardCollaboration:
		return e.collaboration()
	}
	return nil
}

// All returns trend series for every dashboard that has history.
func (e *Extractor) All() []types.TrendSeries {
	var all []types.TrendSeries
	for _, d := range types.AllDashboards() {
		all = append(all, e.Dashboard(d)...)
	}
	return all
}

func (e *Extractor) load(file string) *snapshot.History {
	h, absence := snapshot.Load(e.historyDir, file)
	if absence != nil {
		return nil
	}
	return h
}

// weekValues collects one numeric field per project for a week.
func weekValues(w *snapshot.Week, field string) []float64 {
	var values []float64
	for _, row := range w.Projects {
		if v, ok := numField(row, field); ok {
			values = append(values, v)
		}
	}
	return values
}

func numField(row map[string]interface{}, key string) (float64, bool) {
	raw, ok := row[key]
	if !ok || raw == nil {
		return 0, false
	}
	v, ok := raw.(float64)
	return v, ok
}

// appendWeek adds one aggregated point unless the week's raw inputs are
// all zero across every project — that pattern signals a failed
// upstream collector and is excluded from trend history.
func appendWeek(series *types.TrendSeries, w *snapshot.Week, raw []float64, value float64) {
	if allZero(raw) {
		slog.Warn("all-zero week excluded from trend history",
			"dashboard", series.Dashboard, "metric", series.Metric, "week_date", w.WeekDate)
		return
	}
	date, err := time.Parse("2006-01-02", w.WeekDate)
	if err != nil {
		slog.Warn("week has unparseable date", "week_date", w.WeekDate)
		return
	}
	series.Points = append(series.Points, types.TrendPoint{WeekDate: date, Value: value})
}

// quality: bug count is a simple sum across projects, MTTR a simple
// average.
func (e *Extractor) quality() []types.TrendSeries {
	h := e.load("quality_history.json")
	if h == nil {
		return nil
	}

	bugs := types.TrendSeries{Dashboard: types.DashboardQuality, Metric: "open_bug_count", Unit: "count"}
	mttr := types.TrendSeries{Dashboard: types.DashboardQuality, Metric: "avg_mttr_days", Unit: "days"}

	for i := range h.Weeks {
		w := &h.Weeks[i]
		if counts := weekValues(w, "open_bug_count"); len(counts) > 0 {
			appendWeek(&bugs, w, counts, sum(counts))
		}
		if mttrs := weekValues(w, "avg_mttr_days"); len(mttrs) > 0 {
			appendWeek(&mttr, w, mttrs, mean(mttrs))
		}
	}
	return []types.TrendSeries{bugs, mttr}
}

// security: weekly total across products. The current_total aggregate is
// used when the collector provides it, otherwise the product breakdown
// is summed. Normalized storage stays per-product; only the trend view
// aggregates.
func (e *Extractor) security() []types.TrendSeries {
	h := e.load("security_history.json")
	if h == nil {
		return nil
	}

	total := types.TrendSeries{Dashboard: types.DashboardSecurity, Metric: "total_vulns", Unit: "count"}

	for i := range h.Weeks {
		w := &h.Weeks[i]
		if w.Metrics == nil {
			continue
		}
		if v, ok := numField(w.Metrics, "current_total"); ok {
			appendWeek(&total, w, []float64{v}, v)
			continue
		}

		var productTotals []float64
		if breakdown, ok := w.Metrics["product_breakdown"].(map[string]interface{}); ok {
			for _, raw := range breakdown {
				if counts, ok := raw.(map[string]interface{}); ok {
					if v, ok := numField(counts, "total"); ok {
						productTotals = append(productTotals, v)
					}
				}
			}
		}
		if len(productTotals) > 0 {
			appendWeek(&total, w, productTotals, sum(productTotals))
		}
	}
	return []types.TrendSeries{total}
}

// deployment: success rate is weighted by build counts, never an
// average of per-project percentages.
func (e *Extractor) deployment() []types.TrendSeries {
	h := e.load("deployment_history.json")
	if h == nil {
		return nil
	}

	rate := types.TrendSeries{Dashboard: types.DashboardDeployment, Metric: "build_success_rate_pct", Unit: "pct"}

	for i := range h.Weeks {
		w := &h.Weeks[i]
		successes := weekValues(w, "successful_builds")
		totals := weekValues(w, "total_builds")
		if v, ok := weightedRate(successes, totals); ok {
			appendWeek(&rate, w, totals, v)
		}
	}
	return []types.TrendSeries{rate}
}

// flow: lead time is the median of each project's effective P85, where
// cleanup-effort segments substitute their operational P85.
func (e *Extractor) flow() []types.TrendSeries {
	h := e.load("flow_history.json")
	if h == nil {
		return nil
	}

	lead := types.TrendSeries{Dashboard: types.DashboardFlow, Metric: "p85_lead_time_days", Unit: "days"}

	for i := range h.Weeks {
		w := &h.Weeks[i]
		var projectP85s []float64
		for _, row := range w.Projects {
			if v, ok := projectEffectiveP85(row); ok {
				projectP85s = append(projectP85s, v)
			}
		}
		if len(projectP85s) > 0 {
			appendWeek(&lead, w, projectP85s, median(projectP85s))
		}
	}
	return []types.TrendSeries{lead}
}

// projectEffectiveP85 reduces one project row to a single P85 value:
// each work-type segment contributes its effective P85 (operational
// when the segment looks like a cleanup effort) weighted by its closure
// count.
func projectEffectiveP85(row map[string]interface{}) (float64, bool) {
	workTypes, ok := row["work_types"].(map[string]interface{})
	if !ok {
		// Flat project rows carry the P85 directly
		if v, ok := numField(row, "p85_lead_time_days"); ok {
			return v, true
		}
		return 0, false
	}

	weightedSum := 0.0
	totalClosed := 0.0
	for _, raw := range workTypes {
		segment, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		p85, ok := segmentEffectiveP85(segment)
		if !ok {
			continue
		}
		closed, ok := numField(segment, "closed_count")
		if !ok || closed <= 0 {
			continue
		}
		weightedSum += p85 * closed
		totalClosed += closed
	}
	if totalClosed == 0 {
		return 0, false
	}
	return weightedSum / totalClosed, true
}

// segmentEffectiveP85 applies the cleanup-effort substitution for one
// work-type segment.
func segmentEffectiveP85(segment map[string]interface{}) (float64, bool) {
	raw, ok := numField(segment, "p85_lead_time_days")
	if !ok {
		return 0, false
	}

	closed, closedOK := numField(segment, "closed_count")
	old, oldOK := numField(segment, "old_closures_count")
	if closedOK && oldOK && closed > 0 && old/closed >= CleanupShareThreshold {
		if operational, ok := numField(segment, "operational_p85_days"); ok {
			return operational, true
		}
	}
	return raw, true
}

// ownership: unassigned percentage weighted by total item count.
func (e *Extractor) ownership() []types.TrendSeries {
	h := e.load("ownership_history.json")
	if h == nil {
		return nil
	}

	unassigned := types.TrendSeries{Dashboard: types.DashboardOwnership, Metric: "unassigned_pct", Unit: "pct"}

	for i := range h.Weeks {
		w := &h.Weeks[i]
		unassignedCounts := weekValues(w, "unassigned_items")
		totals := weekValues(w, "total_items")
		if v, ok := weightedRate(unassignedCounts, totals); ok {
			appendWeek(&unassigned, w, totals, v)
		}
	}
	return []types.TrendSeries{unassigned}
}

// collaboration: commit count is a plain sum (a neutral volume metric
// with no good direction); PR merge time is a median of per-project
// medians.
func (e *Extractor) collaboration() []types.TrendSeries {
	h := e.load("collaboration_history.json")
	if h == nil {
		return nil
	}

	commits := types.TrendSeries{Dashboard: types.DashboardCollaboration, Metric: "commit_count", Unit: "count"}
	merge := types.TrendSeries{Dashboard: types.DashboardCollaboration, Metric: "median_pr_merge_hours", Unit: "hours"}

	for i := range h.Weeks {
		w := &h.Weeks[i]
		if counts := weekValues(w, "commit_count"); len(counts) > 0 {
			appendWeek(&commits, w, counts, sum(counts))
		}
		if medians := weekValues(w, "median_pr_merge_hours"); len(medians) > 0 {
			appendWeek(&merge, w, medians, median(medians))
		}
	}
	return []types.TrendSeries{commits, merge}
}
