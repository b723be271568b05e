// Package classify assigns roles to spreadsheet columns, by header keywords
// first and by sampling cell contents when headers say nothing.
package classify

import (
	"sort"

	"skuprice/domain/normalize"
	"skuprice/domain/pricing"
)

const (
	DefaultHeaderScanRows = 20
	DefaultSkuSampleRows  = 50
)

// PickHeaderRow returns the row within the first maxRows whose share of
// non-empty cells is highest. Rows need at least two filled cells; ties keep
// the earliest row.
func PickHeaderRow(grid pricing.RawGrid, maxRows int) int {
	if maxRows <= 0 {
		maxRows = DefaultHeaderScanRows
	}
	limit := min(len(grid), maxRows)

	// excelize trims trailing blanks, so score against the widest row
	width := 0
	for _, row := range grid {
		width = max(width, len(row))
	}
	if width == 0 {
		return 0
	}

	bestIdx, bestScore := 0, -1.0
	for i := 0; i < limit; i++ {
		filled := 0
		for _, c := range grid[i] {
			if !c.IsEmpty() {
				filled++
			}
		}
		score := float64(filled) / float64(width)
		if filled >= 2 && score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	return bestIdx
}

// ColumnRoles is the rule-based classification of one sheet's headers
type ColumnRoles struct {
	Headers    []string
	Confidence pricing.Confidence
	cols       map[pricing.Role][]int
}

// Columns returns the indices classified under role, in column order
func (m ColumnRoles) Columns(role pricing.Role) []int {
	return m.cols[role]
}

// Has reports whether any column was classified under role
func (m ColumnRoles) Has(role pricing.Role) bool {
	return len(m.cols[role]) > 0
}

// MapColumns classifies headers by keyword. Confidence is high when both
// identifier and price columns were found, med with price only, else low.
func MapColumns(headers []string) ColumnRoles {
	m := ColumnRoles{
		Headers: make([]string, len(headers)),
		cols:    make(map[pricing.Role][]int, len(pricing.AllRoles)),
	}
	for i, h := range headers {
		norm := normalize.NormalizeHeader(h)
		m.Headers[i] = norm
		for _, role := range RolesFor(norm) {
			m.cols[role] = append(m.cols[role], i)
		}
	}

	switch {
	case m.Has(pricing.RoleIdentifier) && m.Has(pricing.RolePrice):
		m.Confidence = pricing.ConfidenceHigh
	case m.Has(pricing.RolePrice):
		m.Confidence = pricing.ConfidenceMed
	default:
		m.Confidence = pricing.ConfidenceLow
	}
	return m
}

// InferSkuColsFromData scores columns by how many of the first sampleRows
// cells look like GTINs and returns the best two. An empty result means no
// column stood out and callers should scan whole rows.
func InferSkuColsFromData(dataRows []pricing.Row, existing []int, sampleRows int) []int {
	if len(existing) > 0 {
		return existing
	}
	if sampleRows <= 0 {
		sampleRows = DefaultSkuSampleRows
	}

	scores := make(map[int]int)
	for _, row := range dataRows[:min(len(dataRows), sampleRows)] {
		for i, c := range row {
			if normalize.LooksLikeGtin(c) {
				scores[i]++
			}
		}
	}

	cols := make([]int, 0, len(scores))
	for i := range scores {
		cols = append(cols, i)
	}
	sort.Slice(cols, func(a, b int) bool {
		if scores[cols[a]] != scores[cols[b]] {
			return scores[cols[a]] > scores[cols[b]]
		}
		return cols[a] < cols[b]
	})
	if len(cols) > 2 {
		cols = cols[:2]
	}
	return cols
}
