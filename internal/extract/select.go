package extract

import (
	"strings"

	"skuprice/domain/classify"
	"skuprice/domain/pricing"
)

// selectPrice picks a row's price: the first candidate whose header contains
// a priority keyword, else the smallest candidate (first occurrence on ties).
func selectPrice(cands pricing.Candidates) (pricing.Candidate, pricing.SelectionReason, bool) {
	if len(cands) == 0 {
		return pricing.Candidate{}, pricing.ReasonNone, false
	}
	for _, key := range classify.SelectionPriority {
		for _, c := range cands {
			if strings.Contains(c.Header, key) {
				return c, pricing.ReasonKeyword, true
			}
		}
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if c.Value < best.Value {
			best = c
		}
	}
	return best, pricing.ReasonMin, true
}
