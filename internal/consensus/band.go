package consensus

import (
	"github.com/montanaflynn/stats"

	"skuprice/domain/classify"
	"skuprice/domain/normalize"
	"skuprice/domain/pricing"
)

// poolStrategy gathers the values a band is built from, or declines
type poolStrategy struct {
	name    string
	collect func(files []pricing.FileResult) []float64
}

// poolStrategies run in order; the first to gather enough values wins
var poolStrategies = []poolStrategy{
	{name: "trusted", collect: trustedPrices},
	{name: "selected", collect: selectedPrices},
}

// minTrusted is the smallest trusted pool accepted before falling back
const minTrusted = 2

// trustedPrices keeps selected prices whose header, or whose sheet's price
// headers, name a price.
func trustedPrices(files []pricing.FileResult) []float64 {
	var out []float64
	for _, f := range files {
		sheetTrusted := false
		for _, h := range f.Mapping.PriceCols {
			if classify.ContainsAny(normalize.NormalizeHeader(h), classify.PriceWords) {
				sheetTrusted = true
				break
			}
		}
		for _, m := range f.Matches {
			if !m.HasPrice() {
				continue
			}
			if sheetTrusted || classify.ContainsAny(m.PriceColumnUsed, classify.PriceWords) {
				out = append(out, *m.PriceSelected)
			}
		}
	}
	if len(out) < minTrusted {
		return nil
	}
	return out
}

func selectedPrices(files []pricing.FileResult) []float64 {
	var out []float64
	for _, f := range files {
		for _, m := range f.Matches {
			if m.HasPrice() {
				out = append(out, *m.PriceSelected)
			}
		}
	}
	return out
}

// ComputeConsensusBand returns the band around the median of the first
// non-empty pool, or nil when no row has a selected price.
func ComputeConsensusBand(files []pricing.FileResult, opts Options) *pricing.ConsensusBand {
	var pool []float64
	for _, s := range poolStrategies {
		if pool = s.collect(files); len(pool) > 0 {
			break
		}
	}
	if len(pool) == 0 {
		return nil
	}

	median, err := stats.Median(pool)
	if err != nil {
		return nil
	}
	mad, err := stats.MedianAbsoluteDeviationPopulation(pool)
	if err != nil {
		mad = 0
	}

	half := opts.MadMultiplier * mad
	if mad <= 0 {
		half = opts.FallbackPct * median
	}
	return &pricing.ConsensusBand{
		Median:     median,
		Low:        max(0, median-half),
		High:       median + half,
		HalfWidth:  half,
		SampleSize: len(pool),
	}
}
