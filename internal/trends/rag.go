package trends

import "math"

// RAG is the red/amber/green health classification. Gray is the
// distinct neutral state for missing or non-numeric input — absence of
// data is never an error and never reads as red.
type RAG string

const (
	RAGGreen RAG = "green"
	RAGAmber RAG = "amber"
	RAGRed   RAG = "red"
	RAGGray  RAG = "gray"
)

// MetricKind selects a row of the RAG cut-point table.
type MetricKind string

const (
	KindLeadTime      MetricKind = "lead_time"      // days, lower is better
	KindSuccessRate   MetricKind = "success_rate"   // percent, higher is better
	KindMTTR          MetricKind = "mttr"           // days, lower is better
	KindMergeTime     MetricKind = "merge_time"     // hours, lower is better
	KindUnassignedPct MetricKind = "unassigned_pct" // percent, lower is better
)

// ragBand is one classification row. For lower-is-better metrics green
// and amber are upper bounds; for higher-is-better metrics they are
// lower bounds.
type ragBand struct {
	higherIsBetter bool
	green          float64
	amber          float64
}

// Cut-points are hardcoded business constants carried over as-is; no
// underlying formula is implied.
var ragBands = map[MetricKind]ragBand{
	KindLeadTime:      {higherIsBetter: false, green: 30, amber: 60},
	KindSuccessRate:   {higherIsBetter: true, green: 90, amber: 70},
	KindMTTR:          {higherIsBetter: false, green: 7, amber: 14},
	KindMergeTime:     {higherIsBetter: false, green: 24, amber: 48},
	KindUnassignedPct: {higherIsBetter: false, green: 10, amber: 25},
}

// Classify maps a metric value to its RAG state. A nil value, or a kind
// with no configured bands, is gray.
func Classify(kind MetricKind, value *float64) RAG {
	if value == nil {
		return RAGGray
	}
	band, ok := ragBands[kind]
	if !ok {
		return RAGGray
	}

	v := *value
	if band.higherIsBetter {
		switch {
		case v >= band.green:
			return RAGGreen
		case v >= band.amber:
			return RAGAmber
		default:
			return RAGRed
		}
	}
	switch {
	case v < band.green:
		return RAGGreen
	case v <= band.amber:
		return RAGAmber
	default:
		return RAGRed
	}
}

// Indicator is a rendered trend arrow for dashboard consumers.
type Indicator struct {
	Arrow    string `json:"arrow"`
	CSSClass string `json:"css_class"`
	DeltaPct int    `json:"delta_pct"`
}

// TrendIndicator compares the current value to the previous one. The
// arrow follows the raw direction of change; the CSS class names the
// metric's good direction so consumers can color the arrow; the delta
// is the rounded percentage change.
func TrendIndicator(current, previous float64, goodDirection string) Indicator {
	deltaPct := 0
	if previous != 0 {
		deltaPct = int(math.Round((current - previous) / previous * 100))
	}

	arrow := "→"
	cssClass := "trend-flat"
	if deltaPct != 0 {
		if deltaPct < 0 {
			arrow = "↓"
		} else {
			arrow = "↑"
		}
		cssClass = "trend-" + goodDirection
	}

	return Indicator{Arrow: arrow, CSSClass: cssClass, DeltaPct: deltaPct}
}
