package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mharmon/engpulse/internal/config"
	"github.com/mharmon/engpulse/internal/storage/sqlite"
	"github.com/mharmon/engpulse/internal/types"
)

func newTestServer(t *testing.T) (*httptest.Server, *sqlite.Store, *config.Config) {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := config.Default()
	cfg.HistoryDir = t.TempDir()
	cfg.API.RateLimitEnabled = false

	srv := httptest.NewServer(NewRouter(store, cfg))
	t.Cleanup(srv.Close)
	return srv, store, cfg
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	var body map[string]string
	status := getJSON(t, srv.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestAlertsEndpoint(t *testing.T) {
	srv, store, _ := newTestServer(t)

	_, err := store.ReplaceAlerts(context.Background(), []types.Alert{{
		Dashboard: types.DashboardQuality, ProjectName: "Payments", MetricName: "open_bug_count",
		MetricDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		AlertType:  types.AlertThreshold, Severity: types.SeverityCritical,
		Value: 130, Expected: 100, Message: "Payments has 130 open bugs", CreatedAt: time.Now(),
	}})
	require.NoError(t, err)

	var body struct {
		Alerts []types.Alert `json:"alerts"`
	}
	status := getJSON(t, srv.URL+"/api/v1/alerts?limit=10", &body)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, body.Alerts, 1)
	assert.Equal(t, "Payments", body.Alerts[0].ProjectName)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/v1/alerts?limit=-1", nil))
}

func TestAnomaliesEndpoint(t *testing.T) {
	srv, store, _ := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertRollingStats(ctx, &types.RollingStats{
		Dashboard: types.DashboardQuality, ProjectName: "Payments", MetricName: "open_bug_count",
		Mean: 100, Std: 5, UpdatedAt: time.Now(),
	}))
	v := 200.0
	_, err := store.InsertMetricPoints(ctx, []types.MetricPoint{{
		MetricDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Dashboard:  types.DashboardQuality, ProjectName: "Payments",
		MetricName: "open_bug_count", Value: &v,
	}})
	require.NoError(t, err)

	var body struct {
		Anomalies []types.AnomalyResult `json:"anomalies"`
	}
	status := getJSON(t, srv.URL+"/api/v1/anomalies", &body)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, body.Anomalies, 1)
	assert.Equal(t, types.SeverityHigh, body.Anomalies[0].Severity)

	status = getJSON(t, srv.URL+"/api/v1/anomalies/security", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body.Anomalies)

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/v1/anomalies/velocity", nil))
}

func TestTrendsEndpoint(t *testing.T) {
	srv, _, cfg := newTestServer(t)

	require.NoError(t, os.WriteFile(filepath.Join(cfg.HistoryDir, "quality_history.json"), []byte(`{
		"weeks": [{"week_date": "2026-01-05", "projects": [{"project": "A", "open_bug_count": 30}]}]
	}`), 0644))

	var body struct {
		Series []types.TrendSeries `json:"series"`
	}
	status := getJSON(t, srv.URL+"/api/v1/trends/quality", &body)
	assert.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, body.Series)
	assert.Equal(t, "open_bug_count", body.Series[0].Metric)

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/v1/trends/velocity", nil))
}

func TestForecastEndpoint(t *testing.T) {
	srv, _, cfg := newTestServer(t)

	// Baselines present
	cfg.BugBaselinePath = filepath.Join(cfg.HistoryDir, "bug_baseline.json")
	cfg.SecurityBaselinePath = filepath.Join(cfg.HistoryDir, "security_baseline.json")
	require.NoError(t, os.WriteFile(cfg.BugBaselinePath, []byte(`{"open_count": 300}`), 0644))
	require.NoError(t, os.WriteFile(cfg.SecurityBaselinePath, []byte(`{"baseline_total": 400}`), 0644))

	var tp types.TargetProgress
	status := getJSON(t, srv.URL+"/api/v1/forecast", &tp)
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, tp.Trajectory)
	assert.Equal(t, 90, tp.Bugs.Target)
}
