// Package priceguard flags prices that sit far from the other files' quotes
// for the same identifier.
package priceguard

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"skuprice/domain/pricing"
)

const (
	// MADMultiplier is the number of robust sigmas on each side of the median
	MADMultiplier = 3.5
	// madToSigma converts a MAD into a normal-consistent standard deviation
	madToSigma = 1.4826
	// IQRFence is the Tukey fence applied to the interquartile range
	IQRFence = 1.5

	minBandValues = 3
)

// ComputeBand builds the outlier band over values. Fewer than three values
// yield a degenerate NONE band at the median. The MAD band is preferred; the
// IQR band is used when the MAD collapses to zero.
func ComputeBand(values []float64) pricing.GuardBand {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			clean = append(clean, v)
		}
	}

	if len(clean) < minBandValues {
		m := 0.0
		if len(clean) > 0 {
			m, _ = stats.Median(clean)
		}
		return pricing.GuardBand{Method: pricing.BandNone, Median: m, Low: m, High: m}
	}

	if b := bandMAD(clean, MADMultiplier); b.Method == pricing.BandMAD && b.Low != b.High {
		return b
	}
	return bandIQR(clean, IQRFence)
}

func bandMAD(values []float64, k float64) pricing.GuardBand {
	median, _ := stats.Median(values)
	mad, _ := stats.MedianAbsoluteDeviationPopulation(values)
	if mad == 0 {
		return pricing.GuardBand{Method: pricing.BandNone, Median: median, Low: median, High: median}
	}

	sigma := madToSigma * mad
	b := pricing.GuardBand{
		Method: pricing.BandMAD,
		Median: median,
		Low:    median - k*sigma,
		High:   median + k*sigma,
	}
	if median != 0 {
		b.Pct = math.Abs(k * sigma / median)
	}
	return b
}

func bandIQR(values []float64, fence float64) pricing.GuardBand {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	q1 := stat.Quantile(0.25, stat.Empirical, sorted, nil)
	q3 := stat.Quantile(0.75, stat.Empirical, sorted, nil)
	iqr := q3 - q1
	median, _ := stats.Median(sorted)

	b := pricing.GuardBand{
		Method: pricing.BandIQR,
		Median: median,
		Low:    q1 - fence*iqr,
		High:   q3 + fence*iqr,
	}
	if median != 0 {
		b.Pct = math.Abs(max((median-b.Low)/median, (b.High-median)/median))
	}
	return b
}

// FlaggedOutlier reports whether value falls outside band. A missing value
// is never flagged, and neither is anything under a NONE band.
func FlaggedOutlier(value *float64, band pricing.GuardBand) bool {
	if value == nil || band.Method == pricing.BandNone {
		return false
	}
	return *value < band.Low || *value > band.High
}
