// Package aggregate merges every sheet of every uploaded file into one
// identifier by file price matrix.
package aggregate

import (
	"math"
	"regexp"
	"sort"

	"skuprice/domain/normalize"
	"skuprice/domain/pricing"
	"skuprice/internal/priceguard"
	"skuprice/ports"
)

// UnnamedProduct labels rows whose name is unknown or only a digit string
const UnnamedProduct = "(sin nombre)"

var bareDigits = regexp.MustCompile(`^\d{8,}$`)

// Combiner builds the catalog matrix. The catalog may be nil.
type Combiner struct {
	catalog ports.ReferenceCatalog
}

// NewCombiner creates a combiner backed by catalog
func NewCombiner(catalog ports.ReferenceCatalog) *Combiner {
	return &Combiner{catalog: catalog}
}

// sheetRef locates one FileResult both per upload and in the flat list
type sheetRef struct {
	fileIdx int
	flatIdx int
	header  string
}

// Combine builds one row per distinct identifier with one cell per upload,
// in upload order. perFile[i] holds the sheets extracted from filenames[i].
// The returned flat FileResult list carries each sheet's consensus header.
func (c *Combiner) Combine(filenames []string, perFile [][]pricing.FileResult) ([]pricing.FileResult, []pricing.CombineRow) {
	flat := make([]pricing.FileResult, 0, len(perFile))
	sheets := make([][]sheetRef, len(perFile))
	for fi, results := range perFile {
		for _, fr := range results {
			ref := sheetRef{fileIdx: fi, flatIdx: len(flat)}
			if header, ok := consensusHeader(fr.Matches); ok {
				ref.header = header
				fr.Mapping.PriceColumnChosen = header
				fr.Mapping.PriceColumnReason = pricing.PriceColumnConsensus
			}
			flat = append(flat, fr)
			sheets[fi] = append(sheets[fi], ref)
		}
	}

	skus := distinctSkus(flat)
	matrix := make([]pricing.CombineRow, 0, len(skus))
	for _, sku := range skus {
		row := c.metadata(sku, flat)
		row.Prices = make([]pricing.CombineCell, len(filenames))
		for fi, name := range filenames {
			var refs []sheetRef
			if fi < len(sheets) {
				refs = sheets[fi]
			}
			row.Prices[fi] = fileCell(name, sku, refs, flat)
		}

		var prices []float64
		for i, cell := range row.Prices {
			if cell.Price == nil {
				continue
			}
			prices = append(prices, *cell.Price)
			if row.BestIndex == nil || *cell.Price < *row.Prices[*row.BestIndex].Price {
				idx := i
				row.BestIndex = &idx
			}
		}
		row.Band = priceguard.ComputeBand(prices)
		for i := range row.Prices {
			row.Prices[i].Outlier = priceguard.FlaggedOutlier(row.Prices[i].Price, row.Band)
		}
		matrix = append(matrix, row)
	}
	return flat, matrix
}

// consensusHeader picks the header most rows selected, else the one most
// rows had a candidate under. Ties go to the header seen first.
func consensusHeader(matches []pricing.MatchRow) (string, bool) {
	var order []string
	counts := make(map[string]int)
	count := func(h string) {
		if _, seen := counts[h]; !seen {
			order = append(order, h)
		}
		counts[h]++
	}

	for _, m := range matches {
		if m.HasPrice() && m.PriceColumnUsed != "" {
			count(m.PriceColumnUsed)
		}
	}
	if len(order) == 0 {
		for _, m := range matches {
			for _, cand := range m.Candidates {
				count(cand.Header)
			}
		}
	}
	if len(order) == 0 {
		return "", false
	}

	best := order[0]
	for _, h := range order[1:] {
		if counts[h] > counts[best] {
			best = h
		}
	}
	return best, true
}

func distinctSkus(files []pricing.FileResult) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, f := range files {
		for _, m := range f.Matches {
			if _, ok := seen[m.SKU]; ok {
				continue
			}
			seen[m.SKU] = struct{}{}
			out = append(out, m.SKU)
		}
	}
	sort.Strings(out)
	return out
}

// fileCell returns the cheapest cell for sku across one upload's sheets. A
// match without any price still yields a cell so provenance is kept.
func fileCell(filename, sku string, refs []sheetRef, flat []pricing.FileResult) pricing.CombineCell {
	var best *pricing.CombineCell
	bestPrice := math.Inf(1)

	for _, ref := range refs {
		fr := flat[ref.flatIdx]
		for mi, m := range fr.Matches {
			if m.SKU != sku {
				continue
			}

			rowIdx := m.RowIndex
			cell := pricing.CombineCell{
				Filename:        filename,
				SheetName:       fr.SheetName,
				Supplier:        normalize.CleanDisplay(m.Supplier),
				PriceColumnUsed: m.PriceColumnUsed,
				RowIndex:        &rowIdx,
				Ref:             &pricing.CellRef{FileIdx: ref.flatIdx, MatchIdx: mi},
			}
			if v, ok := m.Candidates.Get(ref.header); ok && ref.header != "" {
				cell.Price = &v
				cell.PriceColumnUsed = ref.header
			} else if m.HasPrice() {
				v := *m.PriceSelected
				cell.Price = &v
			}

			switch {
			case cell.Price != nil && *cell.Price < bestPrice:
				bestPrice = *cell.Price
				best = &cell
			case best == nil:
				best = &cell
			}
		}
	}

	if best == nil {
		return pricing.CombineCell{Filename: filename}
	}
	return *best
}

// metadata resolves name, formula and lab from the reference catalog, then
// from the first matching rows in upload order.
func (c *Combiner) metadata(sku string, flat []pricing.FileResult) pricing.CombineRow {
	row := pricing.CombineRow{SKU: sku}
	if c.catalog != nil {
		if entry, ok := c.catalog.Lookup(sku); ok {
			row.ProductName = entry.ProductName
			row.Formula = entry.Formula
			row.Lab = entry.Lab
		}
	}

	complete := func() bool { return row.ProductName != "" && row.Formula != "" && row.Lab != "" }
	for _, f := range flat {
		if complete() {
			break
		}
		for _, m := range f.Matches {
			if m.SKU != sku {
				continue
			}
			if row.ProductName == "" {
				row.ProductName = firstNonEmpty(
					normalize.CleanDisplay(m.ProductName),
					normalize.CleanDisplay(m.NameFromFile),
					normalize.GuessProductName(m.Record),
				)
			}
			if row.Formula == "" {
				row.Formula = normalize.CleanDisplay(m.Formula)
			}
			if row.Lab == "" {
				row.Lab = normalize.CleanDisplay(m.Lab)
			}
			if complete() {
				break
			}
		}
	}

	if row.ProductName == "" || bareDigits.MatchString(row.ProductName) {
		row.ProductName = UnnamedProduct
	}
	return row
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
