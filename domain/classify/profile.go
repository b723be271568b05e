package classify

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/montanaflynn/stats"

	"skuprice/domain/normalize"
	"skuprice/domain/price"
	"skuprice/domain/pricing"
)

const (
	DefaultProfileSampleRows = 300
	DefaultMaxPriceCols      = 3

	// ChooseSheetPriceColumn accepts a purely statistical column only above these
	minProfiledParsed = 6
	minProfiledScore  = 3.0
)

var (
	decimalMark    = regexp.MustCompile(`[,.]\d{1,2}\b`)
	dollarMark     = regexp.MustCompile(`\$`)
	headerCurrency = regexp.MustCompile(`\$|mxn`)
)

// PriceValue parses c as a price unless the cell is shaped like a product
// identifier; a 12-14 digit code is never a price.
func PriceValue(c pricing.Cell) (float64, bool) {
	if normalize.LooksLikeGtin(c) {
		return 0, false
	}
	return price.Parse(c)
}

func skipSet(cols []int) map[int]bool {
	out := make(map[int]bool, len(cols))
	for _, c := range cols {
		out[c] = true
	}
	return out
}

func headerLabel(headers []string, idx int) string {
	if idx < len(headers) && headers[idx] != "" {
		return headers[idx]
	}
	return fmt.Sprintf("col_%d", idx)
}

// SuggestPriceCols ranks unlabeled columns by how price-like their cells
// look. Columns in skip are not scored. Only columns with a positive score
// are returned, best first, at most maxCols of them.
func SuggestPriceCols(dataRows []pricing.Row, normHeaders []string, skip []int, sampleRows, maxCols int) []pricing.ColumnScore {
	if sampleRows <= 0 {
		sampleRows = DefaultProfileSampleRows
	}
	if maxCols <= 0 {
		maxCols = DefaultMaxPriceCols
	}
	sample := dataRows[:min(len(dataRows), sampleRows)]
	skipped := skipSet(skip)

	scored := make([]pricing.ColumnScore, 0, len(normHeaders))
	for idx := range normHeaders {
		if skipped[idx] {
			continue
		}
		var samples, currency, decimals, integers int
		var parsed []float64
		for _, row := range sample {
			c := row.At(idx)
			if c.IsEmpty() {
				continue
			}
			samples++
			if price.HasCurrencyToken(c) {
				currency++
			}
			if v, ok := PriceValue(c); ok {
				parsed = append(parsed, v)
				if price.HasFraction(v) {
					decimals++
				} else {
					integers++
				}
			}
		}

		header := headerLabel(normHeaders, idx)
		cs := pricing.ColumnScore{Index: idx, Header: header}
		if samples > 0 {
			cs.ParseRate = float64(len(parsed)) / float64(samples)
			cs.CurrencyRate = float64(currency) / float64(samples)
		}
		if len(parsed) > 0 {
			cs.DecimalRate = float64(decimals) / float64(len(parsed))
		}
		cs.HeaderHit = ContainsAny(header, profilerPriceWords)

		score := 3.0*cs.ParseRate + 1.5*cs.CurrencyRate + 1.0*cs.DecimalRate
		if mean, err := stats.Mean(parsed); err == nil && mean > 0 && mean < 100000 {
			score += 0.5
		}
		if cs.HeaderHit {
			score += 0.7
		}
		if ContainsAny(header, nonPriceWords) {
			score -= 0.8
		}
		if len(parsed) > 0 && float64(integers)/float64(len(parsed)) > 0.9 {
			score -= 0.6
		}
		cs.Score = score
		scored = append(scored, cs)
	}

	sort.SliceStable(scored, func(a, b int) bool { return scored[a].Score > scored[b].Score })
	out := make([]pricing.ColumnScore, 0, maxCols)
	for _, cs := range scored {
		if cs.Score <= 0 || len(out) == maxCols {
			break
		}
		out = append(out, cs)
	}
	return out
}

// PriceColumnChoice is the single price column a sheet commits to
type PriceColumnChoice struct {
	Index   int
	Reason  pricing.PriceColumnReason
	Score   float64
	Columns []pricing.ColumnScore
}

// Found reports whether a column was chosen
func (c PriceColumnChoice) Found() bool {
	return c.Reason != pricing.PriceColumnNone
}

type sheetColumnStats struct {
	score     pricing.ColumnScore
	parsed    int
	headerHit bool
}

// priceColumnStrategy picks from profiled columns or declines
type priceColumnStrategy struct {
	reason pricing.PriceColumnReason
	pick   func(cols []sheetColumnStats) (sheetColumnStats, bool)
}

// priceColumnStrategies run in order until one picks; header hints always
// beat purely statistical evidence.
var priceColumnStrategies = []priceColumnStrategy{
	{reason: pricing.PriceColumnHeader, pick: pickByHeaderHint},
	{reason: pricing.PriceColumnProfile, pick: pickByProfile},
}

func pickByHeaderHint(cols []sheetColumnStats) (sheetColumnStats, bool) {
	var best sheetColumnStats
	found := false
	for _, c := range cols {
		if c.headerHit && (!found || c.score.Score > best.score.Score) {
			best, found = c, true
		}
	}
	return best, found
}

func pickByProfile(cols []sheetColumnStats) (sheetColumnStats, bool) {
	var best sheetColumnStats
	found := false
	for _, c := range cols {
		if !found || c.score.Score > best.score.Score {
			best, found = c, true
		}
	}
	if !found || (best.parsed < minProfiledParsed && best.score.Score < minProfiledScore) {
		return sheetColumnStats{}, false
	}
	return best, true
}

// ChooseSheetPriceColumn profiles every column outside skip and commits the
// sheet to one price column. Low-cardinality numeric columns (flags,
// sentinels) and integer-only columns are penalised.
func ChooseSheetPriceColumn(normHeaders []string, dataRows []pricing.Row, skip []int) PriceColumnChoice {
	none := PriceColumnChoice{Index: -1, Reason: pricing.PriceColumnNone}
	if len(normHeaders) == 0 {
		return none
	}
	skipped := skipSet(skip)

	cols := make([]sheetColumnStats, 0, len(normHeaders))
	for idx := range normHeaders {
		if skipped[idx] {
			continue
		}
		header := headerLabel(normHeaders, idx)
		var total, currency, decimals, intOnly, parsed int
		distinct := make(map[float64]struct{})
		for _, row := range dataRows {
			c := row.At(idx)
			if c.IsEmpty() {
				continue
			}
			total++
			raw := c.String()
			if dollarMark.MatchString(raw) {
				currency++
			}
			v, ok := PriceValue(c)
			if !ok {
				continue
			}
			parsed++
			distinct[v] = struct{}{}
			if decimalMark.MatchString(raw) {
				decimals++
			}
			if !price.HasFraction(v) {
				intOnly++
			}
		}

		cs := pricing.ColumnScore{Index: idx, Header: header}
		cs.ParseRate = float64(parsed) / float64(max(1, total))
		cs.DecimalRate = float64(decimals) / float64(max(1, parsed))
		cs.CurrencyRate = float64(currency) / float64(max(1, total))
		cs.HeaderHit = ContainsAny(header, priceHeaderHints)

		score := 4.0*cs.ParseRate + 2.5*cs.DecimalRate + 2.0*cs.CurrencyRate
		if cs.HeaderHit {
			score += 3.5
		}
		if headerCurrency.MatchString(header) {
			score += 1.0
		}
		if intOnly > 0 && cs.DecimalRate < 0.2 {
			score -= 2.0
		}
		if len(distinct) <= 3 && parsed >= 10 {
			score -= 1.0
		}
		cs.Score = score
		cols = append(cols, sheetColumnStats{score: cs, parsed: parsed, headerHit: cs.HeaderHit})
	}

	diagnostics := make([]pricing.ColumnScore, len(cols))
	for i, c := range cols {
		diagnostics[i] = c.score
	}
	sort.SliceStable(diagnostics, func(a, b int) bool { return diagnostics[a].Score > diagnostics[b].Score })

	for _, strategy := range priceColumnStrategies {
		if best, ok := strategy.pick(cols); ok {
			return PriceColumnChoice{
				Index:   best.score.Index,
				Reason:  strategy.reason,
				Score:   best.score.Score,
				Columns: diagnostics,
			}
		}
	}
	none.Columns = diagnostics
	return none
}

// RankByHeaderHint orders role-matched price columns so that columns whose
// header carries a strong price hint come first; order is otherwise kept.
func RankByHeaderHint(cols []int, normHeaders []string) []int {
	ranked := append([]int(nil), cols...)
	sort.SliceStable(ranked, func(a, b int) bool {
		ha := ContainsAny(headerLabel(normHeaders, ranked[a]), priceHeaderHints)
		hb := ContainsAny(headerLabel(normHeaders, ranked[b]), priceHeaderHints)
		return ha && !hb
	})
	return ranked
}

// HeaderFor returns the display label of column idx: the cleaned header or col_N
func HeaderFor(headers []string, idx int) string {
	if idx < len(headers) {
		if h := normalize.CleanDisplay(headers[idx]); h != "" {
			return h
		}
	}
	return fmt.Sprintf("col_%d", idx)
}
