// Package stats summarizes return series: descriptive statistics, histogram
// binning, and a gaussian kernel density estimate for distribution plots.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Summary holds the descriptive statistics of a single series.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P5     float64 `json:"p5"`
	P25    float64 `json:"p25"`
	P50    float64 `json:"p50"`
	P75    float64 `json:"p75"`
	P95    float64 `json:"p95"`
}

// Histogram is a binned view of a series. Edges has one more entry than
// Counts; bin i covers [Edges[i], Edges[i+1]). Density is normalized so the
// total area is 1.
type Histogram struct {
	Edges   []float64 `json:"edges"`
	Counts  []float64 `json:"counts"`
	Density []float64 `json:"density"`
}

// DensityCurve is a kernel density estimate sampled on an even grid.
type DensityCurve struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// Describe computes the summary statistics of values.
func Describe(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, errors.New("cannot describe an empty series")
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	s := Summary{
		Count: len(values),
		Mean:  stat.Mean(values, nil),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		P5:    stat.Quantile(0.05, stat.Empirical, sorted, nil),
		P25:   stat.Quantile(0.25, stat.Empirical, sorted, nil),
		P50:   stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P75:   stat.Quantile(0.75, stat.Empirical, sorted, nil),
		P95:   stat.Quantile(0.95, stat.Empirical, sorted, nil),
	}

	// a single observation has no spread; NaN here would poison JSON encoding
	if len(values) > 1 {
		s.StdDev = stat.StdDev(values, nil)
	}

	return s, nil
}

// Percentile returns the q-th percentile (0 to 100) of values: the smallest
// observed value whose empirical rank is at or above q.
func Percentile(values []float64, q float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.New("cannot take a percentile of an empty series")
	}
	if q < 0 || q > 100 {
		return 0, fmt.Errorf("percentile must be between 0 and 100, got %v", q)
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return stat.Quantile(q/100, stat.Empirical, sorted, nil), nil
}

// ComputeHistogram bins values into the given number of equal-width bins
// spanning the observed range.
func ComputeHistogram(values []float64, bins int) (Histogram, error) {
	if len(values) == 0 {
		return Histogram{}, errors.New("cannot bin an empty series")
	}
	if bins < 1 {
		return Histogram{}, fmt.Errorf("bin count must be at least 1, got %d", bins)
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		// degenerate range; widen so every value lands in a bin
		lo, hi = lo-0.5, hi+0.5
	}

	// the top divider is exclusive, so nudge it past the maximum
	edges := floats.Span(make([]float64, bins+1), lo, math.Nextafter(hi, math.Inf(1)))
	counts := stat.Histogram(make([]float64, bins), edges, sorted, nil)

	total := float64(len(values))
	density := make([]float64, bins)
	for i := range counts {
		width := edges[i+1] - edges[i]
		density[i] = counts[i] / (total * width)
	}

	return Histogram{Edges: edges, Counts: counts, Density: density}, nil
}

// KDE estimates the probability density of values with a gaussian kernel,
// sampled at the given number of grid points across the observed range. The
// bandwidth follows Scott's rule, sigma * n^(-1/5).
func KDE(values []float64, points int) (DensityCurve, error) {
	if len(values) < 2 {
		return DensityCurve{}, fmt.Errorf("need at least 2 values for a density estimate, got %d", len(values))
	}
	if points < 2 {
		return DensityCurve{}, fmt.Errorf("grid must have at least 2 points, got %d", points)
	}

	sigma := stat.StdDev(values, nil)
	if sigma == 0 {
		return DensityCurve{}, errors.New("cannot estimate density of a constant series")
	}
	bw := sigma * math.Pow(float64(len(values)), -0.2)

	kernel := distuv.Normal{Mu: 0, Sigma: bw}
	x := floats.Span(make([]float64, points), floats.Min(values), floats.Max(values))

	y := make([]float64, points)
	n := float64(len(values))
	for i, g := range x {
		var sum float64
		for _, v := range values {
			sum += kernel.Prob(g - v)
		}
		y[i] = sum / n
	}

	return DensityCurve{X: x, Y: y}, nil
}
