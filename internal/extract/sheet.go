// Package extract walks one sheet and emits a match record for every row
// that carries a product identifier.
package extract

import (
	"fmt"
	"strings"
	"time"

	"skuprice/domain/classify"
	"skuprice/domain/normalize"
	"skuprice/domain/pricing"
	"skuprice/internal"
)

// SheetExtractor runs the per-sheet pipeline. It holds no mutable state and
// is safe for concurrent use.
type SheetExtractor struct {
	opts   Options
	logger *internal.Logger
}

// NewSheetExtractor creates an extractor with the given sampling options
func NewSheetExtractor(opts Options) *SheetExtractor {
	return &SheetExtractor{opts: opts, logger: internal.DefaultLogger.With("Extract")}
}

// sheetPlan is everything decided about a sheet before rows are walked
type sheetPlan struct {
	headerRow     int
	display       []string
	roles         classify.ColumnRoles
	keys          []string
	dataRows      []pricing.Row
	skuCols       []int
	idCols        []int
	priceCols     []int
	candidateCols []int
	lockedCol     int
	mapping       pricing.ColumnMapping
}

// candidateHeader is the key a column's price is stored under. Keys are
// unique within a sheet.
func (p *sheetPlan) candidateHeader(idx int) string {
	if idx >= 0 && idx < len(p.keys) {
		return p.keys[idx]
	}
	return classify.HeaderFor(nil, idx)
}

// candidateKeys returns one key per column: the normalized header, col_N when
// blank, and a #N suffix on repeats so that equal headers never share a key.
func candidateKeys(normHeaders []string) []string {
	keys := make([]string, len(normHeaders))
	seen := make(map[string]int, len(normHeaders))
	for i, h := range normHeaders {
		key := h
		if key == "" {
			key = classify.HeaderFor(nil, i)
		}
		seen[key]++
		if n := seen[key]; n > 1 {
			key = fmt.Sprintf("%s#%d", key, n)
		}
		keys[i] = key
	}
	return keys
}

// allColumnsExcept lists every header column not in skip
func allColumnsExcept(width int, skip []int) []int {
	skipped := make(map[int]bool, len(skip))
	for _, c := range skip {
		skipped[c] = true
	}
	out := make([]int, 0, width)
	for i := 0; i < width; i++ {
		if !skipped[i] {
			out = append(out, i)
		}
	}
	return out
}

func (p *sheetPlan) labels(cols []int) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = classify.HeaderFor(p.display, c)
	}
	return out
}

// ExtractWorkbook extracts every sheet of wb. An empty sku selects the
// catalog flow (every identifier row); otherwise only rows carrying sku are kept.
func (e *SheetExtractor) ExtractWorkbook(wb pricing.Workbook, sku string) []pricing.FileResult {
	out := make([]pricing.FileResult, 0, len(wb.Sheets))
	for _, sheet := range wb.Sheets {
		if sku == "" {
			out = append(out, e.ExtractAll(wb.Filename, sheet))
		} else {
			out = append(out, e.ExtractForSku(wb.Filename, sheet, sku))
		}
	}
	return out
}

// ExtractAll emits a match for every row holding a GTIN-shaped identifier
func (e *SheetExtractor) ExtractAll(filename string, sheet pricing.Sheet) pricing.FileResult {
	start := time.Now()
	plan := e.plan(sheet, false)
	return e.walk(filename, sheet, plan, start, func(row pricing.Row) string {
		return extractSku(row, plan.skuCols)
	})
}

// ExtractForSku emits a match for every row containing the normalized sku
func (e *SheetExtractor) ExtractForSku(filename string, sheet pricing.Sheet, sku string) pricing.FileResult {
	start := time.Now()
	plan := e.plan(sheet, true)
	return e.walk(filename, sheet, plan, start, func(row pricing.Row) string {
		if rowHasSku(row, plan.skuCols, sku) {
			return sku
		}
		return ""
	})
}

func (e *SheetExtractor) plan(sheet pricing.Sheet, singleColumn bool) *sheetPlan {
	grid := sheet.Grid
	p := &sheetPlan{lockedCol: -1}
	p.headerRow = classify.PickHeaderRow(grid, e.opts.HeaderScanRows)

	var headerCells pricing.Row
	if p.headerRow < len(grid) {
		headerCells = grid[p.headerRow]
		p.dataRows = grid[p.headerRow+1:]
	}
	raw := make([]string, len(headerCells))
	p.display = make([]string, len(headerCells))
	for i, c := range headerCells {
		raw[i] = c.String()
		p.display[i] = normalize.CleanDisplay(raw[i])
	}

	p.roles = classify.MapColumns(p.display)
	p.keys = candidateKeys(p.roles.Headers)
	p.skuCols = classify.InferSkuColsFromData(p.dataRows, p.roles.Columns(pricing.RoleIdentifier), e.opts.SkuSampleRows)
	p.idCols = append(append([]int(nil), p.skuCols...), p.roles.Columns(pricing.RoleIdentifier)...)

	m := pricing.ColumnMapping{
		SkuCols:           p.labels(p.skuCols),
		SupplierCols:      p.labels(p.roles.Columns(pricing.RoleSupplier)),
		ProductNameCols:   p.labels(p.roles.Columns(pricing.RoleProductName)),
		FormulaCols:       p.labels(p.roles.Columns(pricing.RoleFormula)),
		LabCols:           p.labels(p.roles.Columns(pricing.RoleLab)),
		PriceColumnReason: pricing.PriceColumnNone,
		Confidence:        p.roles.Confidence,
	}

	switch {
	case p.roles.Has(pricing.RolePrice):
		p.priceCols = p.roles.Columns(pricing.RolePrice)
		p.candidateCols = p.priceCols
		m.PriceColumnReason = pricing.PriceColumnHeader
		if singleColumn {
			p.lockedCol = classify.RankByHeaderHint(p.priceCols, p.roles.Headers)[0]
		}
	case singleColumn:
		choice := classify.ChooseSheetPriceColumn(p.roles.Headers, p.dataRows, p.idCols)
		m.PriceCandidateColumns = choice.Columns
		m.PriceColumnReason = choice.Reason
		if choice.Found() {
			p.priceCols = []int{choice.Index}
			p.candidateCols = p.priceCols
			p.lockedCol = choice.Index
			score := choice.Score
			m.PriceColumnScore = &score
		}
	default:
		suggested := classify.SuggestPriceCols(p.dataRows, p.roles.Headers, p.idCols, e.opts.ProfileSampleRows, e.opts.MaxPriceCols)
		m.PriceCandidateColumns = suggested
		for _, cs := range suggested {
			p.priceCols = append(p.priceCols, cs.Index)
		}
		p.candidateCols = p.priceCols
		if len(suggested) > 0 {
			m.PriceColumnReason = pricing.PriceColumnProfile
			score := suggested[0].Score
			m.PriceColumnScore = &score
		} else {
			p.candidateCols = allColumnsExcept(len(p.display), p.idCols)
		}
	}

	m.PriceCols = p.labels(p.priceCols)
	if p.lockedCol >= 0 {
		idx := p.lockedCol
		m.PriceColumnIndex = &idx
		m.PriceColumnChosen = classify.HeaderFor(p.display, idx)
	}
	p.mapping = m
	return p
}

func (e *SheetExtractor) walk(filename string, sheet pricing.Sheet, p *sheetPlan, start time.Time, identify func(pricing.Row) string) pricing.FileResult {
	res := pricing.FileResult{
		Filename:  normalize.CleanDisplay(filename),
		SheetName: normalize.CleanDisplay(sheet.Name),
		HeaderRow: p.headerRow,
		Mapping:   p.mapping,
		Matches:   []pricing.MatchRow{},
	}

	for i, row := range p.dataRows {
		res.Stats.RowsScanned++
		sku := identify(row)
		if sku == "" {
			continue
		}
		m := e.buildMatch(p, row)
		m.RowIndex = p.headerRow + 1 + i
		m.Filename = res.Filename
		m.SheetName = res.SheetName
		m.SKU = sku
		res.Matches = append(res.Matches, m)
	}

	res.Stats.Matches = len(res.Matches)
	res.Stats.ParseMs = time.Since(start).Milliseconds()
	e.logger.Debug("%s: header row %d, %d rows scanned, %d matches, confidence %s, price columns %v",
		res.Label(), res.HeaderRow, res.Stats.RowsScanned, res.Stats.Matches, res.Mapping.Confidence, res.Mapping.PriceCols)
	return res
}

func (e *SheetExtractor) buildMatch(p *sheetPlan, row pricing.Row) pricing.MatchRow {
	var m pricing.MatchRow

	if v := firstNonEmpty(row, p.roles.Columns(pricing.RoleSupplier)); v != "" {
		m.Supplier = normalize.NormalizeSupplier(v)
	}

	for _, idx := range p.candidateCols {
		if v, ok := classify.PriceValue(row.At(idx)); ok {
			m.Candidates.Set(p.candidateHeader(idx), v)
		}
	}
	if m.Candidates == nil {
		m.Candidates = pricing.Candidates{}
	}

	if p.lockedCol >= 0 {
		if v, ok := m.Candidates.Get(p.candidateHeader(p.lockedCol)); ok {
			m.Select(p.candidateHeader(p.lockedCol), v, pricing.ReasonKeyword)
		}
	}
	if !m.HasPrice() {
		if c, reason, ok := selectPrice(m.Candidates); ok {
			m.Select(c.Header, c.Value, reason)
		}
	}

	m.Record = make(pricing.RowRecord, len(p.display))
	for j := range p.display {
		m.Record[j] = pricing.RecordField{
			Header: classify.HeaderFor(p.display, j),
			Value:  normalize.CleanCell(row.At(j)),
		}
	}

	m.ProductName = firstNonEmpty(row, p.roles.Columns(pricing.RoleProductName))
	m.Formula = firstNonEmpty(row, p.roles.Columns(pricing.RoleFormula))
	m.Lab = firstNonEmpty(row, p.roles.Columns(pricing.RoleLab))
	m.NameFromFile = normalize.GuessProductName(m.Record)
	if m.ProductName == "" {
		m.ProductName = m.NameFromFile
	}
	return m
}

// extractSku returns the first GTIN-shaped value among skuCols, else anywhere in the row
func extractSku(row pricing.Row, skuCols []int) string {
	for _, idx := range skuCols {
		if d := normalize.CellDigits(row.At(idx)); normalize.IsGtin(d) {
			return d
		}
	}
	for _, c := range row {
		if d := normalize.CellDigits(c); normalize.IsGtin(d) {
			return d
		}
	}
	return ""
}

// rowHasSku reports whether any identifier cell, else any cell, contains sku
func rowHasSku(row pricing.Row, skuCols []int, sku string) bool {
	for _, idx := range skuCols {
		if d := normalize.CellDigits(row.At(idx)); d != "" && strings.Contains(d, sku) {
			return true
		}
	}
	for _, c := range row {
		if d := normalize.CellDigits(c); d != "" && strings.Contains(d, sku) {
			return true
		}
	}
	return false
}

func firstNonEmpty(row pricing.Row, cols []int) string {
	for _, idx := range cols {
		if v := normalize.CleanCell(row.At(idx)); v != "" {
			return v
		}
	}
	return ""
}
