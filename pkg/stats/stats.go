// Package stats provides the summary statistics used by batch reports and
// the analysis history.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Percentile calculates the p-th percentile of a sorted slice.
// The slice must already be sorted in ascending order.
// Returns 0 if the slice is empty.
func Percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Distribution summarizes a sample.
type Distribution struct {
	Count  int     `json:"count" toon:"count"`
	Mean   float64 `json:"mean" toon:"mean"`
	StdDev float64 `json:"std_dev" toon:"std_dev"`
	Median float64 `json:"median" toon:"median"`
	P90    float64 `json:"p90" toon:"p90"`
	Max    float64 `json:"max" toon:"max"`
}

// Describe computes the distribution of values. The input is not modified.
func Describe(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(sorted, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return Distribution{
		Count:  len(sorted),
		Mean:   mean,
		StdDev: std,
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:    Percentile(sorted, 90),
		Max:    sorted[len(sorted)-1],
	}
}

// TrendStats holds regression statistics computed over an ordered series.
type TrendStats struct {
	Slope       float64 `json:"slope" toon:"slope"`             // change per step
	Intercept   float64 `json:"intercept" toon:"intercept"`     // value at step zero
	RSquared    float64 `json:"r_squared" toon:"r_squared"`     // goodness of fit (0-1)
	Correlation float64 `json:"correlation" toon:"correlation"` // Pearson correlation (-1 to 1)
}

// Trend fits a line through ys indexed 0, 1, 2, ...
// Returns zero values if fewer than 2 points are provided.
func Trend(ys []float64) TrendStats {
	n := len(ys)
	if n < 2 {
		return TrendStats{}
	}

	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	ts := TrendStats{
		Slope:     slope,
		Intercept: intercept,
	}
	// Both are undefined for a flat series.
	if r2 := stat.RSquared(xs, ys, nil, intercept, slope); !math.IsNaN(r2) {
		ts.RSquared = r2
	}
	if c := stat.Correlation(xs, ys, nil); !math.IsNaN(c) {
		ts.Correlation = c
	}
	return ts
}
