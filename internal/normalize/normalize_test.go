package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mharmon/engpulse/internal/snapshot"
	"github.com/mharmon/engpulse/internal/types"
)

func parseHistory(t *testing.T, raw string) *snapshot.History {
	t.Helper()
	var h snapshot.History
	require.NoError(t, json.Unmarshal([]byte(raw), &h))
	return &h
}

func TestMetricKey(t *testing.T) {
	assert.Equal(t, "user_story", MetricKey("User Story"))
	assert.Equal(t, "tech_debt", MetricKey("Tech  Debt"))
	assert.Equal(t, "bug", MetricKey("BUG"))
	assert.Equal(t, "", MetricKey("   "))
}

func TestFlattenQualitySkipsNullAndMissing(t *testing.T) {
	h := parseHistory(t, `{"weeks": [{
		"week_date": "2026-01-05",
		"week_number": 2,
		"projects": [
			{"project": "Payments", "open_bug_count": 42, "avg_mttr_days": null},
			{"project": "Billing", "bugs_closed": 7}
		]
	}]}`)

	points := FlattenQuality(h)
	require.Len(t, points, 2, "null and missing leaves produce no rows")

	assert.Equal(t, "open_bug_count", points[0].MetricName)
	assert.Equal(t, "Payments", points[0].ProjectName)
	assert.Equal(t, 42.0, *points[0].Value)
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), points[0].MetricDate)

	assert.Equal(t, "bugs_closed", points[1].MetricName)
	assert.Equal(t, "Billing", points[1].ProjectName)
}

func TestFlattenQualitySkipsBadWeekDate(t *testing.T) {
	h := parseHistory(t, `{"weeks": [
		{"week_date": "not-a-date", "projects": [{"project": "P", "open_bug_count": 1}]},
		{"week_date": "2026-01-12", "projects": [{"project": "P", "open_bug_count": 2}]}
	]}`)

	points := FlattenQuality(h)
	require.Len(t, points, 1)
	assert.Equal(t, 2.0, *points[0].Value)
}

func TestFlattenSecurityPerProduct(t *testing.T) {
	h := parseHistory(t, `{"weeks": [{
		"week_date": "2026-01-05",
		"metrics": {
			"current_total": 120,
			"severity_breakdown": {"critical": 4, "high": 30},
			"product_breakdown": {
				"payments-api": {"critical": 2, "high": 10, "total": 40},
				"web-portal":   {"critical": 0, "high": 5, "total": 25}
			}
		}
	}]}`)

	points := FlattenSecurity(h)
	require.Len(t, points, 6)

	projects := map[string]bool{}
	for _, p := range points {
		projects[p.ProjectName] = true
		assert.Equal(t, types.DashboardSecurity, p.Dashboard)
		assert.NotEqual(t, "All Products", p.ProjectName, "no synthetic aggregate row")
	}
	assert.True(t, projects["payments-api"])
	assert.True(t, projects["web-portal"])
	assert.Len(t, projects, 2)
}

func TestFlattenFlowWorkTypeNames(t *testing.T) {
	h := parseHistory(t, `{"weeks": [{
		"week_date": "2026-01-05",
		"projects": [{
			"project": "Payments",
			"work_types": {
				"User Story": {"closed_count": 12, "p85_lead_time_days": 21.5},
				"Tech Debt":  {"closed_count": 3, "p85_lead_time_days": null}
			}
		}]
	}]}`)

	points := FlattenFlow(h)
	require.Len(t, points, 3)

	names := map[string]float64{}
	for _, p := range points {
		names[p.MetricName] = *p.Value
	}
	assert.Equal(t, 12.0, names["closed_count_user_story"])
	assert.Equal(t, 21.5, names["p85_lead_time_days_user_story"])
	assert.Equal(t, 3.0, names["closed_count_tech_debt"])
	_, hasNull := names["p85_lead_time_days_tech_debt"]
	assert.False(t, hasNull, "null leaf skipped")
}

func TestFlattenDeployment(t *testing.T) {
	h := parseHistory(t, `{"weeks": [{
		"week_date": "2026-01-05",
		"projects": [{"project": "Payments", "total_builds": 100, "successful_builds": 90, "build_success_rate_pct": 90.0}]
	}]}`)

	points := FlattenDeployment(h)
	require.Len(t, points, 3)
	for _, p := range points {
		assert.Equal(t, types.DashboardDeployment, p.Dashboard)
	}
}

func TestFlattenSkipsProjectlessRows(t *testing.T) {
	h := parseHistory(t, `{"weeks": [{
		"week_date": "2026-01-05",
		"projects": [{"open_bug_count": 42}, {"project": "", "open_bug_count": 7}]
	}]}`)
	assert.Empty(t, FlattenQuality(h))
}
