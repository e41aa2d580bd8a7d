// Package snapshot reads the weekly JSON history files the collectors
// produce. Absence of a file (or a malformed one) is an expected
// condition, reported as a reasoned Absence rather than an error, so
// one missing dashboard never aborts ingestion of the others.
package snapshot

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
)

// AbsenceReason says why a history file yielded no data.
type AbsenceReason string

const (
	AbsentNotFound    AbsenceReason = "not_found"
	AbsentEmpty       AbsenceReason = "empty_file"
	AbsentInvalidJSON AbsenceReason = "invalid_json"
	AbsentWrongShape  AbsenceReason = "wrong_shape"
	AbsentNoWeeks     AbsenceReason = "missing_weeks_key"
	AbsentEmptyWeeks  AbsenceReason = "empty_weeks"
)

// Absence describes a history file that produced no usable data.
type Absence struct {
	File   string
	Reason AbsenceReason
}

// Week is one weekly entry of a dashboard history. Most dashboards carry
// per-project rows; the security history instead carries a metrics block
// with a per-product breakdown.
type Week struct {
	WeekDate   string                   `json:"week_date"`
	WeekNumber int                      `json:"week_number"`
	Projects   []map[string]interface{} `json:"projects,omitempty"`
	Metrics    map[string]interface{}   `json:"metrics,omitempty"`
}

// History is the parsed shape of one dashboard's history file.
type History struct {
	Weeks []Week `json:"weeks"`
}

// Load reads and validates one history file. It returns (history, nil)
// on success, or (nil, absence) when the file is missing, empty,
// unparseable, or has no weeks. The absence is already logged with
// enough context to diagnose without the JSON.
func Load(dir, name string) (*History, *Absence) {
	path := filepath.Join(dir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, absent(name, AbsentNotFound)
		}
		slog.Warn("history file unreadable", "file", name, "error", err)
		return nil, absent(name, AbsentNotFound)
	}

	if len(data) == 0 {
		return nil, absent(name, AbsentEmpty)
	}

	// Reject non-object top levels (arrays, scalars) explicitly: a
	// history file is always an object with a weeks array.
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		var probe interface{}
		if json.Unmarshal(data, &probe) != nil {
			return nil, absent(name, AbsentInvalidJSON)
		}
		return nil, absent(name, AbsentWrongShape)
	}

	rawWeeks, ok := top["weeks"]
	if !ok {
		return nil, absent(name, AbsentNoWeeks)
	}

	var weeks []Week
	if err := json.Unmarshal(rawWeeks, &weeks); err != nil {
		return nil, absent(name, AbsentWrongShape)
	}
	if len(weeks) == 0 {
		return nil, absent(name, AbsentEmptyWeeks)
	}

	return &History{Weeks: weeks}, nil
}

func absent(name string, reason AbsenceReason) *Absence {
	slog.Warn("no snapshot data", "file", name, "reason", string(reason))
	return &Absence{File: name, Reason: reason}
}
