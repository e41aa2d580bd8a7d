package normalize

import (
	"github.com/mharmon/engpulse/internal/snapshot"
	"github.com/mharmon/engpulse/internal/types"
)

// fieldSpec maps one JSON leaf to a flat metric name and unit.
type fieldSpec struct {
	jsonKey string
	metric  string
	unit    string
}

// Per-dashboard leaf maps for the common week→projects shape.
// The flow and security dashboards nest differently and have their own
// flatteners below.
var (
	qualityFields = []fieldSpec{
		{"open_bug_count", "open_bug_count", "count"},
		{"bugs_opened", "bugs_opened", "count"},
		{"bugs_closed", "bugs_closed", "count"},
		{"p1_open_count", "p1_open_count", "count"},
		{"avg_mttr_days", "avg_mttr_days", "days"},
	}
	deploymentFields = []fieldSpec{
		{"total_builds", "total_builds", "count"},
		{"successful_builds", "successful_builds", "count"},
		{"build_success_rate_pct", "build_success_rate_pct", "pct"},
		{"deploys_count", "deploys_count", "count"},
		{"avg_build_duration_mins", "avg_build_duration_mins", "mins"},
	}
	ownershipFields = []fieldSpec{
		{"total_items", "total_items", "count"},
		{"unassigned_items", "unassigned_items", "count"},
		{"unassigned_pct", "unassigned_pct", "pct"},
	}
	riskFields = []fieldSpec{
		{"risk_score", "risk_score", "score"},
		{"high_risk_items", "high_risk_items", "count"},
		{"stale_branch_count", "stale_branch_count", "count"},
	}
	collaborationFields = []fieldSpec{
		{"commit_count", "commit_count", "count"},
		{"pr_count", "pr_count", "count"},
		{"median_pr_merge_hours", "median_pr_merge_hours", "hours"},
		{"active_contributors", "active_contributors", "count"},
	}
)

// flattenProjects handles the standard week→projects→fields shape.
func flattenProjects(h *snapshot.History, dashboard types.Dashboard, fields []fieldSpec) []types.MetricPoint {
	var points []types.MetricPoint

	for i := range h.Weeks {
		w := &h.Weeks[i]
		date, ok := parseWeekDate(w)
		if !ok {
			continue
		}

		for _, row := range w.Projects {
			project := strField(row, "project")
			if project == "" {
				continue
			}
			for _, f := range fields {
				v, ok := numField(row, f.jsonKey)
				if !ok {
					continue
				}
				points = append(points, point(date, dashboard, project, f.metric, v, f.unit))
			}
		}
	}
	return points
}

// FlattenQuality maps the bug dashboard history.
func FlattenQuality(h *snapshot.History) []types.MetricPoint {
	return flattenProjects(h, types.DashboardQuality, qualityFields)
}

// FlattenDeployment maps the deployment dashboard history.
func FlattenDeployment(h *snapshot.History) []types.MetricPoint {
	return flattenProjects(h, types.DashboardDeployment, deploymentFields)
}

// FlattenOwnership maps the ownership dashboard history.
func FlattenOwnership(h *snapshot.History) []types.MetricPoint {
	return flattenProjects(h, types.DashboardOwnership, ownershipFields)
}

// FlattenRisk maps the risk dashboard history.
func FlattenRisk(h *snapshot.History) []types.MetricPoint {
	return flattenProjects(h, types.DashboardRisk, riskFields)
}

// FlattenCollaboration maps the collaboration dashboard history.
func FlattenCollaboration(h *snapshot.History) []types.MetricPoint {
	return flattenProjects(h, types.DashboardCollaboration, collaborationFields)
}

// securityFields are the per-product vulnerability counts.
var securityFields = []fieldSpec{
	{"critical", "critical_vulns", "count"},
	{"high", "high_vulns", "count"},
	{"total", "total_vulns", "count"},
}

// FlattenSecurity maps the security history, which nests
// weeks→metrics→product_breakdown→{product: counts}. Each product
// becomes its own project row. No synthetic "All Products" aggregate is
// ever emitted: per-product alerting and trend resolution depend on the
// breakdown staying intact.
func FlattenSecurity(h *snapshot.History) []types.MetricPoint {
	var points []types.MetricPoint

	for i := range h.Weeks {
		w := &h.Weeks[i]
		date, ok := parseWeekDate(w)
		if !ok {
			continue
		}

		breakdown := subMap(w.Metrics, "product_breakdown")
		for product, raw := range breakdown {
			counts, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			for _, f := range securityFields {
				v, ok := numField(counts, f.jsonKey)
				if !ok {
					continue
				}
				points = append(points, point(date, types.DashboardSecurity, product, f.metric, v, f.unit))
			}
		}
	}
	return points
}

// flowWorkTypeFields are the per-work-type flow measurements. The
// work-type label is folded into the metric name.
var flowWorkTypeFields = []fieldSpec{
	{"closed_count", "closed_count", "count"},
	{"p85_lead_time_days", "p85_lead_time_days", "days"},
	{"operational_p85_days", "operational_p85_days", "days"},
	{"old_closures_count", "old_closures_count", "count"},
}

// FlattenFlow maps the flow history, which nests
// weeks→projects→work_types→{label: measurements}. Work-type labels
// ("User Story", "Tech Debt") are normalized into the metric name, so
// "p85_lead_time_days" for "User Story" becomes
// "p85_lead_time_days_user_story".
func FlattenFlow(h *snapshot.History) []types.MetricPoint {
	var points []types.MetricPoint

	for i := range h.Weeks {
		w := &h.Weeks[i]
		date, ok := parseWeekDate(w)
		if !ok {
			continue
		}

		for _, row := range w.Projects {
			project := strField(row, "project")
			if project == "" {
				continue
			}
			for label, raw := range subMap(row, "work_types") {
				segment, ok := raw.(map[string]interface{})
				if !ok {
					continue
				}
				suffix := MetricKey(label)
				if suffix == "" {
					continue
				}
				for _, f := range flowWorkTypeFields {
					v, ok := numField(segment, f.jsonKey)
					if !ok {
						continue
					}
					points = append(points, point(date, types.DashboardFlow, project, f.metric+"_"+suffix, v, f.unit))
				}
			}
		}
	}
	return points
}
