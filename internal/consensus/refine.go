package consensus

import (
	"math"
	"sort"

	"skuprice/domain/classify"
	"skuprice/domain/price"
	"skuprice/domain/pricing"
)

const sameValueEpsilon = 1e-9

type scoredCandidate struct {
	pricing.Candidate
	score float64
}

// scoreCandidate rates how plausible value is as the row's unit price
func scoreCandidate(c pricing.Candidate, band *pricing.ConsensusBand) float64 {
	score := 0.0
	if classify.ContainsAny(c.Header, classify.PriceWords) {
		score += 2.0
	}
	if classify.ContainsAny(c.Header, classify.WholesaleWords) {
		score -= 1.4
	}
	if classify.ContainsAny(c.Header, classify.ForeignCurrencyWords) {
		score -= 1.2
	}

	if band != nil {
		width := band.HalfWidth
		if width <= 0 {
			width = max(1, 0.1*band.Median)
		}
		closeness := max(0, 1-math.Abs(c.Value-band.Median)/width)
		score += 2.2 * closeness
		if !band.Contains(c.Value) {
			score -= 0.8
		}
	}

	if price.HasFraction(c.Value) {
		score += 0.3
	}
	return score
}

// RefineSelections re-scores every row's candidates against band and
// replaces a row's selection only when the best candidate leads it by more
// than opts.OverrideMargin. A kept selection keeps its reason. band may be nil.
func RefineSelections(files []pricing.FileResult, band *pricing.ConsensusBand, opts Options) {
	for fi := range files {
		matches := files[fi].Matches
		for mi := range matches {
			refineMatch(&matches[mi], band, opts.OverrideMargin)
		}
	}
}

func refineMatch(m *pricing.MatchRow, band *pricing.ConsensusBand, margin float64) {
	if len(m.Candidates) == 0 {
		return
	}

	scored := make([]scoredCandidate, len(m.Candidates))
	for i, c := range m.Candidates {
		scored[i] = scoredCandidate{Candidate: c, score: scoreCandidate(c, band)}
	}
	sort.SliceStable(scored, func(a, b int) bool { return scored[a].score > scored[b].score })
	top := scored[0]

	if m.HasPrice() {
		prevScore := math.Inf(-1)
		for _, s := range scored {
			if math.Abs(s.Value-*m.PriceSelected) < sameValueEpsilon && (m.PriceColumnUsed == "" || s.Header == m.PriceColumnUsed) {
				prevScore = s.score
				break
			}
		}
		if top.score-prevScore <= margin {
			if m.SelectionReason == pricing.ReasonNone {
				m.SelectionReason = pricing.ReasonMin
				if m.PriceColumnUsed != "" {
					m.SelectionReason = pricing.ReasonKeyword
				}
			}
			return
		}
	}

	reason := pricing.ReasonKeyword
	if band != nil {
		reason = pricing.ReasonBand
	}
	m.Select(top.Header, top.Value, reason)
}
