// Package consensus reconciles one identifier's prices across files: it
// builds a trusted price band, re-scores each row's candidates against it,
// and summarises the cheapest supplier.
package consensus

// Options tunes band construction and refinement
type Options struct {
	// MadMultiplier scales the MAD into the band half-width
	MadMultiplier float64
	// FallbackPct is the half-width as a share of the median when MAD is zero
	FallbackPct float64
	// OverrideMargin is the score lead a candidate needs to replace an
	// existing selection. Uncalibrated.
	OverrideMargin float64
}

// DefaultOptions returns the stock tuning
func DefaultOptions() Options {
	return Options{
		MadMultiplier:  3.0,
		FallbackPct:    0.15,
		OverrideMargin: 0.5,
	}
}
