// Package trends extracts per-dashboard weekly trend series straight
// from the JSON histories. It bypasses the metric store on purpose:
// trends need whole-week aggregates with metric-specific rules, not
// per-metric series.
package trends

import "sort"

// sum adds values across projects. The neutral aggregate for volume
// metrics (bug counts, commits).
func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

// mean averages across projects. Used where every project should count
// equally (MTTR).
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

// median is the robust aggregate for lead times and merge times: one
// outlier project must not drag the whole trend.
func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// weightedRate computes (sum of numerators)/(sum of denominators) as a
// percentage, so large projects are not under-weighted the way an
// average of per-project percentages would.
func weightedRate(numerators, denominators []float64) (float64, bool) {
	num := sum(numerators)
	den := sum(denominators)
	if den == 0 {
		return 0, false
	}
	return num / den * 100, true
}

// allZero reports whether every value in the collection is zero. A week
// where every project reports zero for everything is a failed collector,
// not a quiet week, and must not enter trend history.
func allZero(values []float64) bool {
	for _, v := range values {
		if v != 0 {
			return false
		}
	}
	return len(values) > 0
}
