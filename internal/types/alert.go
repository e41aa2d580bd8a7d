package types

import (
	"fmt"
	"time"
)

// AlertType distinguishes how an alert was produced.
type AlertType string

const (
	AlertAnomaly   AlertType = "anomaly"
	AlertThreshold AlertType = "threshold"
)

// IsValid checks if the alert type value is valid
func (t AlertType) IsValid() bool {
	switch t {
	case AlertAnomaly, AlertThreshold:
		return true
	}
	return false
}

// Severity ranks how urgent an alert is. Threshold rules produce
// warn/critical; anomaly detection produces medium/high.
type Severity string

const (
	SeverityWarn     Severity = "warn"
	SeverityCritical Severity = "critical"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
)

// IsValid checks if the severity value is valid
func (s Severity) IsValid() bool {
	switch s {
	case SeverityWarn, SeverityCritical, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// Rank orders severities for alert retrieval: critical first, then high,
// warn, medium, anything else last.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityWarn:
		return 2
	case SeverityMedium:
		return 3
	}
	return 4
}

// Operator is the comparison a threshold rule applies.
type Operator string

const (
	OperatorBelow Operator = "below"
	OperatorAbove Operator = "above"
)

// IsValid checks if the operator value is valid
func (o Operator) IsValid() bool {
	return o == OperatorBelow || o == OperatorAbove
}

// Direction says which side of the rolling mean an anomalous value fell on.
type Direction string

const (
	DirectionAbove Direction = "above"
	DirectionBelow Direction = "below"
)

// ThresholdRule is one static business rule evaluated against the latest
// point per project. Rules are configuration data, defined in code and
// never persisted or mutated at runtime.
type ThresholdRule struct {
	Dashboard       Dashboard
	MetricName      string
	Threshold       float64
	Operator        Operator
	Severity        Severity
	MessageTemplate string // fmt template taking (project, value)
}

// Triggered reports whether a value trips this rule.
func (r ThresholdRule) Triggered(value float64) bool {
	if r.Operator == OperatorBelow {
		return value < r.Threshold
	}
	return value > r.Threshold
}

// Message formats the rule's message for a triggering project and value.
func (r ThresholdRule) Message(project string, value float64) string {
	return fmt.Sprintf(r.MessageTemplate, project, value)
}

// Alert is one row in the alerts table. The table is deleted and
// repopulated on every engine run: an alert is a statement about the
// current evaluation, not a historical ledger.
type Alert struct {
	Dashboard   Dashboard `json:"dashboard"`
	ProjectName string    `json:"project_name"`
	MetricName  string    `json:"metric_name"`
	MetricDate  time.Time `json:"metric_date"`
	AlertType   AlertType `json:"alert_type"`
	Severity    Severity  `json:"severity"`
	Value       float64   `json:"value"`
	Expected    float64   `json:"expected"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}

// AnomalyResult is an in-memory z-score finding, converted 1:1 into an
// Alert with type "anomaly". Never persisted directly.
type AnomalyResult struct {
	Dashboard   Dashboard `json:"dashboard"`
	ProjectName string    `json:"project_name"`
	MetricName  string    `json:"metric_name"`
	MetricDate  time.Time `json:"metric_date"`
	Value       float64   `json:"value"`
	Expected    float64   `json:"expected"`
	ZScore      float64   `json:"z_score"`
	Direction   Direction `json:"direction"`
	Severity    Severity  `json:"severity"`
}

// ToAlert converts an anomaly finding into an alert row.
func (a *AnomalyResult) ToAlert(now time.Time) Alert {
	return Alert{
		Dashboard:   a.Dashboard,
		ProjectName: a.ProjectName,
		MetricName:  a.MetricName,
		MetricDate:  a.MetricDate,
		AlertType:   AlertAnomaly,
		Severity:    a.Severity,
		Value:       a.Value,
		Expected:    a.Expected,
		Message: fmt.Sprintf("%s for %s is %.2f, %s rolling mean %.2f (z=%.1f)",
			a.MetricName, a.ProjectName, a.Value, a.Direction, a.Expected, a.ZScore),
		CreatedAt: now,
	}
}
