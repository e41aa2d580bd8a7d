package snapshot

import (
	"encoding/json"
	"log/slog"
	"os"
)

// Baselines seed the target-progress forecast: the bug and vulnerability
// counts the 70% reduction target is measured against.
type Baselines struct {
	Bugs            int
	Vulnerabilities int
}

type securityBaselineFile struct {
	BaselineTotal int `json:"baseline_total"`
}

type bugBaselineFile struct {
	OpenCount int `json:"open_count"`
}

// LoadBaselines reads the two baseline documents. A missing or
// malformed file leaves the corresponding count at zero and is logged;
// the forecast layer treats a zero baseline as "no forecast available".
func LoadBaselines(securityPath, bugsPath string) Baselines {
	var b Baselines

	var sec securityBaselineFile
	if readJSON(securityPath, &sec) {
		b.Vulnerabilities = sec.BaselineTotal
	}

	var bugs bugBaselineFile
	if readJSON(bugsPath, &bugs) {
		b.Bugs = bugs.OpenCount
	}

	return b
}

func readJSON(path string, out interface{}) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("baseline file unavailable", "file", path, "error", err)
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		slog.Warn("baseline file malformed", "file", path, "error", err)
		return false
	}
	return true
}
