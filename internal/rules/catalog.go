// Package rules holds the static threshold-rule catalog and evaluates
// it against the latest metric point per project. Rules are business
// configuration expressed as data: single metric, single threshold,
// single severity, no chaining.
package rules

import "github.com/mharmon/engpulse/internal/types"

// Catalog is the fixed rule set, loaded once at process start and never
// mutated.
var Catalog = []types.ThresholdRule{
	{
		Dashboard:       types.DashboardDeployment,
		MetricName:      "build_success_rate_pct",
		Threshold:       80,
		Operator:        types.OperatorBelow,
		Severity:        types.SeverityCritical,
		MessageTemplate: "Build success rate for %s dropped to %.1f%%",
	},
	{
		Dashboard:       types.DashboardQuality,
		MetricName:      "open_bug_count",
		Threshold:       100,
		Operator:        types.OperatorAbove,
		Severity:        types.SeverityWarn,
		MessageTemplate: "%s has %.0f open bugs",
	},
	{
		Dashboard:       types.DashboardQuality,
		MetricName:      "avg_mttr_days",
		Threshold:       14,
		Operator:        types.OperatorAbove,
		Severity:        types.SeverityWarn,
		MessageTemplate: "Mean time to resolve for %s is %.1f days",
	},
	{
		Dashboard:       types.DashboardSecurity,
		MetricName:      "critical_vulns",
		Threshold:       0,
		Operator:        types.OperatorAbove,
		Severity:        types.SeverityCritical,
		MessageTemplate: "%s has %.0f open critical vulnerabilities",
	},
	{
		Dashboard:       types.DashboardOwnership,
		MetricName:      "unassigned_pct",
		Threshold:       25,
		Operator:        types.OperatorAbove,
		Severity:        types.SeverityWarn,
		MessageTemplate: "%s has %.1f%% of work unassigned",
	},
	{
		Dashboard:       types.DashboardCollaboration,
		MetricName:      "median_pr_merge_hours",
		Threshold:       48,
		Operator:        types.OperatorAbove,
		Severity:        types.SeverityWarn,
		MessageTemplate: "Median PR merge time for %s is %.1f hours",
	},
}
