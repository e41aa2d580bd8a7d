package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mharmon/engpulse/internal/anomaly"
	"github.com/mharmon/engpulse/internal/config"
	"github.com/mharmon/engpulse/internal/forecast"
	"github.com/mharmon/engpulse/internal/snapshot"
	"github.com/mharmon/engpulse/internal/storage/sqlite"
	"github.com/mharmon/engpulse/internal/trends"
	"github.com/mharmon/engpulse/internal/types"
)

// defaultAlertLimit caps alert listings when no limit is given.
const defaultAlertLimit = 50

type handler struct {
	store    *sqlite.Store
	cfg      *config.Config
	detector *anomaly.Detector
	trends   *trends.Extractor
}

func newHandler(store *sqlite.Store, cfg *config.Config) *handler {
	return &handler{
		store:    store,
		cfg:      cfg,
		detector: anomaly.New(store, cfg.ZScoreThreshold),
		trends:   trends.NewExtractor(cfg.HistoryDir),
	}
}

func (h *handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.CountMetrics(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "DB_UNAVAILABLE", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) getAlerts(w http.ResponseWriter, r *http.Request) {
	limit := defaultAlertLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "BAD_LIMIT", "limit must be a positive integer")
			return
		}
		limit = n
	}

	alerts, err := h.store.ListAlerts(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "QUERY_FAILED", err.Error())
		return
	}
	if alerts == nil {
		alerts = []types.Alert{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts})
}

func (h *handler) getAnomalies(w http.ResponseWriter, r *http.Request) {
	results, err := h.detector.DetectAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DETECT_FAILED", err.Error())
		return
	}
	if results == nil {
		results = []types.AnomalyResult{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"anomalies": results})
}

func (h *handler) getAnomaliesForDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard := types.Dashboard(chi.URLParam(r, "dashboard"))
	if !dashboard.IsValid() {
		writeError(w, http.StatusNotFound, "UNKNOWN_DASHBOARD", "unknown dashboard: "+string(dashboard))
		return
	}

	results, err := h.detector.DetectForDashboard(r.Context(), dashboard)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DETECT_FAILED", err.Error())
		return
	}
	if results == nil {
		results = []types.AnomalyResult{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"anomalies": results})
}

func (h *handler) getTrends(w http.ResponseWriter, r *http.Request) {
	dashboard := types.Dashboard(chi.URLParam(r, "dashboard"))
	if !dashboard.IsValid() {
		writeError(w, http.StatusNotFound, "UNKNOWN_DASHBOARD", "unknown dashboard: "+string(dashboard))
		return
	}

	series := h.trends.Dashboard(dashboard)
	if series == nil {
		series = []types.TrendSeries{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"series": series})
}

func (h *handler) getForecast(w http.ResponseWriter, r *http.Request) {
	targetDate, err := h.cfg.ParseTargetDate()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "BAD_CONFIG", err.Error())
		return
	}

	baselines := snapshot.LoadBaselines(h.cfg.SecurityBaselinePath, h.cfg.BugBaselinePath)
	bugSeries := firstSeries(h.trends.Dashboard(types.DashboardQuality), "open_bug_count")
	vulnSeries := firstSeries(h.trends.Dashboard(types.DashboardSecurity), "total_vulns")

	tp := forecast.Compute(baselines, bugSeries, vulnSeries, time.Now().UTC(), targetDate)
	writeJSON(w, http.StatusOK, tp)
}

func firstSeries(all []types.TrendSeries, metric string) []types.TrendPoint {
	for i := range all {
		if all[i].Metric == metric {
			return all[i].Points
		}
	}
	return nil
}
