package analytics

import (
	"math"
	"sort"

	domain "gosurvey/domain/analytics"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// quartileInc computes the p-quantile with the inclusive method: linear
// interpolation at position (n−1)·p over the sorted sample. This matches
// spreadsheet QUARTILE.INC output, which the exported workbooks are compared
// against. For a single value every quantile equals that value.
func quartileInc(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := float64(n-1) * p
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// round2 rounds to two decimals, the precision reported everywhere.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// summarize computes the descriptive summary for one numeric sample. The
// caller guarantees values is non-empty.
func summarize(values []float64) domain.NumericStats {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	min, _ := stats.Min(values)
	max, _ := stats.Max(values)
	sum, _ := stats.Sum(values)
	mean, _ := stats.Mean(values)

	stdDev := 0.0
	skew := 0.0
	if len(values) > 1 {
		stdDev = stat.StdDev(values, nil)
		if math.IsNaN(stdDev) {
			stdDev = 0
		}
	}
	if len(values) > 2 && stdDev > 0 {
		skew = stat.Skew(values, nil)
		if math.IsNaN(skew) {
			skew = 0
		}
	}

	return domain.NumericStats{
		Count:    len(values),
		Min:      min,
		Q1:       round2(quartileInc(sorted, 0.25)),
		Median:   round2(quartileInc(sorted, 0.5)),
		Q3:       round2(quartileInc(sorted, 0.75)),
		Max:      max,
		Average:  round2(mean),
		Sum:      round2(sum),
		StdDev:   round2(stdDev),
		Skewness: round2(skew),
	}
}

// percentage is count/total as a percentage rounded to two decimals, 0 when
// the denominator is empty.
func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(count) / float64(total) * 100)
}
