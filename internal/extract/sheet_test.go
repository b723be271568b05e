package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skuprice/domain/pricing"
)

func row(values ...interface{}) pricing.Row {
	r := make(pricing.Row, len(values))
	for i, v := range values {
		switch x := v.(type) {
		case float64:
			r[i] = pricing.NumberCell(x)
		case string:
			r[i] = pricing.TextCell(x)
		}
	}
	return r
}

func vendorSheet() pricing.Sheet {
	return pricing.Sheet{
		Name: "Hoja1",
		Grid: pricing.RawGrid{
			row("Lista de precios Marzo", "", "", "", ""),
			row("Código", "Descripción", "Precio Unitario", "Mayoreo", "Proveedor"),
			row("7501234567890", "Aspirina 100mg", "$45.50", "40", "Acme S.A. de C.V."),
			row("sin codigo", "Nota al pie", "", "", ""),
			row(7501234567891.0, "Paracetamol", "30", "", "Nadro"),
		},
	}
}

func TestExtractAll(t *testing.T) {
	e := NewSheetExtractor(DefaultOptions())
	res := e.ExtractAll("proveedor.xlsx", vendorSheet())

	assert.Equal(t, "proveedor.xlsx", res.Filename)
	assert.Equal(t, "Hoja1", res.SheetName)
	assert.Equal(t, 1, res.HeaderRow)
	assert.Equal(t, 3, res.Stats.RowsScanned)
	assert.Equal(t, 2, res.Stats.Matches)
	assert.Equal(t, pricing.ConfidenceHigh, res.Mapping.Confidence)
	assert.Equal(t, []string{"Código"}, res.Mapping.SkuCols)
	assert.Equal(t, []string{"Precio Unitario", "Mayoreo"}, res.Mapping.PriceCols)
	assert.Equal(t, pricing.PriceColumnHeader, res.Mapping.PriceColumnReason)
	require.Len(t, res.Matches, 2)

	first := res.Matches[0]
	assert.Equal(t, 2, first.RowIndex)
	assert.Equal(t, "7501234567890", first.SKU)
	assert.Equal(t, "ACME", first.Supplier)
	assert.Equal(t, "Aspirina 100mg", first.ProductName)
	assert.Equal(t, pricing.Candidates{
		{Header: "precio unitario", Value: 45.5},
		{Header: "mayoreo", Value: 40},
	}, first.Candidates)
	require.True(t, first.HasPrice())
	assert.Equal(t, 45.5, *first.PriceSelected)
	assert.Equal(t, "precio unitario", first.PriceColumnUsed)
	assert.Equal(t, pricing.ReasonKeyword, first.SelectionReason)

	second := res.Matches[1]
	assert.Equal(t, "7501234567891", second.SKU)
	assert.Equal(t, "NADRO", second.Supplier)
	assert.Equal(t, 30.0, *second.PriceSelected)
}

func TestExtractAll_MinSelection(t *testing.T) {
	sheet := pricing.Sheet{Name: "S", Grid: pricing.RawGrid{
		row("SKU", "Lista", "Mayoreo"),
		row("7501234567890", "120.00", "99.90"),
	}}
	res := NewSheetExtractor(DefaultOptions()).ExtractAll("a.xlsx", sheet)
	require.Len(t, res.Matches, 1)
	m := res.Matches[0]
	assert.Equal(t, 99.9, *m.PriceSelected)
	assert.Equal(t, "mayoreo", m.PriceColumnUsed)
	assert.Equal(t, pricing.ReasonMin, m.SelectionReason)
}

func TestExtractAll_ProfilesUnlabeledPrices(t *testing.T) {
	grid := pricing.RawGrid{row("ID", "Nombre", "Importe", "Existencia")}
	for i := 0; i < 10; i++ {
		grid = append(grid, row("750123456789"+string(rune('0'+i)), "Producto de prueba", "$12.50", float64(5+i)))
	}
	res := NewSheetExtractor(DefaultOptions()).ExtractAll("b.csv", pricing.Sheet{Name: "b", Grid: grid})

	assert.Equal(t, pricing.ConfidenceLow, res.Mapping.Confidence)
	assert.Equal(t, []string{"ID"}, res.Mapping.SkuCols)
	assert.Equal(t, pricing.PriceColumnProfile, res.Mapping.PriceColumnReason)
	require.NotEmpty(t, res.Mapping.PriceCandidateColumns)
	assert.Equal(t, "importe", res.Mapping.PriceCandidateColumns[0].Header)
	assert.Equal(t, "Importe", res.Mapping.PriceCols[0])
	assert.Len(t, res.Matches, 10)
	for _, m := range res.Matches {
		v, ok := m.Candidates.Get("importe")
		assert.True(t, ok)
		assert.Equal(t, 12.5, v)
	}
}

func TestExtractAll_NoMatches(t *testing.T) {
	sheet := pricing.Sheet{Name: "vacía", Grid: pricing.RawGrid{
		row("Nombre", "Comentario"),
		row("algo", "otra cosa"),
	}}
	res := NewSheetExtractor(DefaultOptions()).ExtractAll("c.xlsx", sheet)
	assert.NotNil(t, res.Matches)
	assert.Empty(t, res.Matches)
	assert.Equal(t, 1, res.Stats.RowsScanned)
	assert.Equal(t, pricing.ConfidenceLow, res.Mapping.Confidence)
}

func TestExtractForSku(t *testing.T) {
	sheet := vendorSheet()
	sheet.Grid = append(sheet.Grid, row("EAN 7501234567890 caja", "Aspirina caja", "44.00", "", "Marzam"))

	res := NewSheetExtractor(DefaultOptions()).ExtractForSku("proveedor.xlsx", sheet, "7501234567890")
	require.Len(t, res.Matches, 2)
	assert.Equal(t, 4, res.Stats.RowsScanned)

	require.NotNil(t, res.Mapping.PriceColumnIndex)
	assert.Equal(t, 2, *res.Mapping.PriceColumnIndex)
	assert.Equal(t, "Precio Unitario", res.Mapping.PriceColumnChosen)

	for _, m := range res.Matches {
		assert.Equal(t, "7501234567890", m.SKU)
		assert.Equal(t, "precio unitario", m.PriceColumnUsed)
		assert.Equal(t, pricing.ReasonKeyword, m.SelectionReason)
	}
	assert.Equal(t, 45.5, *res.Matches[0].PriceSelected)
	assert.Equal(t, 44.0, *res.Matches[1].PriceSelected)
	assert.Equal(t, "MARZAM", res.Matches[1].Supplier)
}

func TestExtractForSku_SingleColumnProfile(t *testing.T) {
	grid := pricing.RawGrid{row("Artículo", "Importe", "Bandera")}
	for i := 0; i < 8; i++ {
		grid = append(grid, row("750123456789"+string(rune('0'+i)), "$1"+string(rune('0'+i))+".25", 1.0))
	}
	res := NewSheetExtractor(DefaultOptions()).ExtractForSku("d.xlsx", pricing.Sheet{Name: "d", Grid: grid}, "7501234567893")

	assert.Equal(t, pricing.PriceColumnProfile, res.Mapping.PriceColumnReason)
	require.NotNil(t, res.Mapping.PriceColumnScore)
	assert.Equal(t, "Importe", res.Mapping.PriceColumnChosen)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, 13.25, *res.Matches[0].PriceSelected)
	assert.Len(t, res.Matches[0].Candidates, 1)
}

func TestSelectedPriceComesFromCandidates(t *testing.T) {
	res := NewSheetExtractor(DefaultOptions()).ExtractAll("proveedor.xlsx", vendorSheet())
	for _, m := range res.Matches {
		if !m.HasPrice() {
			continue
		}
		v, ok := m.Candidates.Get(m.PriceColumnUsed)
		require.True(t, ok)
		assert.Equal(t, v, *m.PriceSelected)
	}
}

func TestExtractForSku_NoPriceColumn(t *testing.T) {
	sheet := pricing.Sheet{Name: "s", Grid: pricing.RawGrid{
		row("Código", "Descripción"),
		row("7501234567890", "Aspirina 100mg"),
		row("7501234567891", "Paracetamol"),
	}}
	res := NewSheetExtractor(DefaultOptions()).ExtractForSku("a.xlsx", sheet, "7501234567890")

	assert.Equal(t, pricing.PriceColumnNone, res.Mapping.PriceColumnReason)
	assert.Nil(t, res.Mapping.PriceColumnIndex)
	assert.Empty(t, res.Mapping.PriceCols)
	require.Len(t, res.Matches, 1)
	m := res.Matches[0]
	assert.False(t, m.HasPrice())
	assert.Empty(t, m.Candidates)
	assert.Equal(t, pricing.ReasonNone, m.SelectionReason)
}

func TestExtractAll_NoPriceColumn(t *testing.T) {
	sheet := pricing.Sheet{Name: "s", Grid: pricing.RawGrid{
		row("Código", "Descripción"),
		row(7501234567890.0, "Aspirina 100mg"),
	}}
	res := NewSheetExtractor(DefaultOptions()).ExtractAll("a.xlsx", sheet)

	require.Len(t, res.Matches, 1)
	assert.False(t, res.Matches[0].HasPrice())
	assert.Empty(t, res.Matches[0].Candidates)
}

func TestExtractAll_IdentifierNeverPricesRow(t *testing.T) {
	sheet := pricing.Sheet{Name: "s", Grid: pricing.RawGrid{
		row("ID", "Nombre", "Importe"),
		row("7501234567890", "Aspirina", "$12.50"),
		row("7501234567899", "Paracetamol", ""),
		row("7501234567891", "Ibuprofeno", "$30.75"),
	}}
	res := NewSheetExtractor(DefaultOptions()).ExtractAll("b.csv", sheet)

	assert.Equal(t, []string{"Importe"}, res.Mapping.PriceCols)
	require.Len(t, res.Matches, 3)
	assert.Equal(t, 12.5, *res.Matches[0].PriceSelected)

	unpriced := res.Matches[1]
	assert.Equal(t, "7501234567899", unpriced.SKU)
	assert.False(t, unpriced.HasPrice())
	assert.Empty(t, unpriced.Candidates)
	for _, m := range res.Matches {
		_, ok := m.Candidates.Get("id")
		assert.False(t, ok)
	}
}

func TestExtract_RepeatedHeadersKeepBothColumns(t *testing.T) {
	sheet := pricing.Sheet{Name: "s", Grid: pricing.RawGrid{
		row("SKU", "Precio", "Precio"),
		row("7501234567890", 100.0, 80.0),
	}}
	e := NewSheetExtractor(DefaultOptions())

	res := e.ExtractForSku("a.xlsx", sheet, "7501234567890")
	require.NotNil(t, res.Mapping.PriceColumnIndex)
	assert.Equal(t, 1, *res.Mapping.PriceColumnIndex)
	require.Len(t, res.Matches, 1)
	m := res.Matches[0]
	assert.Equal(t, pricing.Candidates{
		{Header: "precio", Value: 100},
		{Header: "precio#2", Value: 80},
	}, m.Candidates)
	assert.Equal(t, 100.0, *m.PriceSelected)
	assert.Equal(t, "precio", m.PriceColumnUsed)

	all := e.ExtractAll("a.xlsx", sheet)
	require.Len(t, all.Matches, 1)
	got := all.Matches[0]
	assert.Len(t, got.Candidates, 2)
	assert.Equal(t, 80.0, *got.PriceSelected)
	assert.Equal(t, "precio#2", got.PriceColumnUsed)
	assert.Equal(t, pricing.ReasonMin, got.SelectionReason)
}

func TestCandidateKeys(t *testing.T) {
	assert.Equal(t,
		[]string{"precio", "col_1", "precio#2", "col_3", "precio#3"},
		candidateKeys([]string{"precio", "", "precio", "", "precio"}))
}
