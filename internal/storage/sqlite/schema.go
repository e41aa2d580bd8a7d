package sqlite

// Schema for the engineering-health metrics database.
//
// metrics has no primary key on purpose: points for the same
// (dashboard, project, metric) across dates form a series, and the
// whole table is truncated and rebuilt on every import run.
// rolling_stats is keyed per series and upserted. alerts is deleted
// and repopulated on every alert-engine run.
const schema = `
CREATE TABLE IF NOT EXISTS metrics (
	metric_date   TIMESTAMP NOT NULL,
	dashboard     TEXT NOT NULL,
	project_name  TEXT NOT NULL,
	metric_name   TEXT NOT NULL,
	metric_value  REAL,
	metric_unit   TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_metrics_series
	ON metrics(dashboard, project_name, metric_name, metric_date);

CREATE INDEX IF NOT EXISTS idx_metrics_dashboard_metric
	ON metrics(dashboard, metric_name, metric_date);

CREATE TABLE IF NOT EXISTS rolling_stats (
	dashboard     TEXT NOT NULL,
	project_name  TEXT NOT NULL,
	metric_name   TEXT NOT NULL,
	rolling_mean  REAL NOT NULL,
	rolling_std   REAL NOT NULL,
	trend_slope   REAL NOT NULL,
	last_8w_avg   REAL NOT NULL,
	last_updated  TIMESTAMP NOT NULL,
	PRIMARY KEY (dashboard, project_name, metric_name)
);

CREATE TABLE IF NOT EXISTS alerts (
	dashboard     TEXT NOT NULL,
	project_name  TEXT NOT NULL,
	metric_name   TEXT NOT NULL,
	metric_date   TIMESTAMP NOT NULL,
	alert_type    TEXT NOT NULL,
	severity      TEXT NOT NULL,
	value         REAL NOT NULL,
	expected      REAL NOT NULL,
	message       TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alerts_severity_date
	ON alerts(severity, metric_date);
`
