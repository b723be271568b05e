package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skuprice/domain/pricing"
)

func textRow(values ...string) pricing.Row {
	row := make(pricing.Row, len(values))
	for i, v := range values {
		row[i] = pricing.TextCell(v)
	}
	return row
}

func TestPickHeaderRow(t *testing.T) {
	t.Run("skips sparse title rows", func(t *testing.T) {
		grid := pricing.RawGrid{
			textRow("LISTA DE PRECIOS", "", "", ""),
			textRow("", "", "", ""),
			textRow("Código", "Descripción", "Precio", "Proveedor"),
			textRow("7501234567890", "Aspirina", "45.50", "Nadro"),
		}
		assert.Equal(t, 2, PickHeaderRow(grid, 20))
	})

	t.Run("ties favour the earliest row", func(t *testing.T) {
		grid := pricing.RawGrid{
			textRow("a", "b"),
			textRow("c", "d"),
		}
		assert.Equal(t, 0, PickHeaderRow(grid, 20))
	})

	t.Run("rows beyond the scan window are ignored", func(t *testing.T) {
		grid := pricing.RawGrid{
			textRow("x", "y", "", ""),
			textRow("a", "b", "c", "d"),
		}
		assert.Equal(t, 0, PickHeaderRow(grid, 1))
	})

	t.Run("empty grid", func(t *testing.T) {
		assert.Equal(t, 0, PickHeaderRow(nil, 20))
	})
}

func TestMapColumns(t *testing.T) {
	t.Run("identifier and price give high confidence", func(t *testing.T) {
		m := MapColumns([]string{"Código de Barras", "Descripción", "Precio Unitario", "Proveedor", "Laboratorio"})
		assert.Equal(t, pricing.ConfidenceHigh, m.Confidence)
		assert.Equal(t, []int{0}, m.Columns(pricing.RoleIdentifier))
		assert.Equal(t, []int{2}, m.Columns(pricing.RolePrice))
		assert.Equal(t, []int{3}, m.Columns(pricing.RoleSupplier))
		assert.Equal(t, []int{1}, m.Columns(pricing.RoleProductName))
		assert.Equal(t, []int{4}, m.Columns(pricing.RoleLab))
		assert.Equal(t, "codigo de barras", m.Headers[0])
	})

	t.Run("price only gives med", func(t *testing.T) {
		m := MapColumns([]string{"Artículo", "Precio Público"})
		assert.Equal(t, pricing.ConfidenceMed, m.Confidence)
		assert.False(t, m.Has(pricing.RoleIdentifier))
	})

	t.Run("nothing recognised gives low", func(t *testing.T) {
		m := MapColumns([]string{"A", "B", "C"})
		assert.Equal(t, pricing.ConfidenceLow, m.Confidence)
	})

	t.Run("a column can hold several roles", func(t *testing.T) {
		m := MapColumns([]string{"Marca"})
		assert.Equal(t, []int{0}, m.Columns(pricing.RoleSupplier))
		assert.Equal(t, []int{0}, m.Columns(pricing.RoleLab))
	})
}

func TestInferSkuColsFromData(t *testing.T) {
	rows := []pricing.Row{
		textRow("x", "7501234567890", "12.00", "7501234567891"),
		textRow("y", "7501234567892", "13.00", ""),
		textRow("z", "7501234567893", "14.00", "7501234567894"),
	}

	assert.Equal(t, []int{1, 3}, InferSkuColsFromData(rows, nil, 50))
	assert.Equal(t, []int{0}, InferSkuColsFromData(rows, []int{0}, 50))
	assert.Empty(t, InferSkuColsFromData([]pricing.Row{textRow("a", "b")}, nil, 50))
}

func TestSuggestPriceCols(t *testing.T) {
	headers := []string{"clave", "existencia", "importe"}
	var rows []pricing.Row
	for i := 0; i < 20; i++ {
		rows = append(rows, pricing.Row{
			pricing.TextCell("ABC-1"),
			pricing.NumberCell(float64(10 + i)),
			pricing.TextCell("$1,2" + string(rune('0'+i%10)) + "4.50"),
		})
	}

	got := SuggestPriceCols(rows, headers, nil, 300, 3)
	require.NotEmpty(t, got)
	assert.Equal(t, 2, got[0].Index)
	assert.InDelta(t, 1.0, got[0].ParseRate, 1e-9)
	assert.InDelta(t, 1.0, got[0].CurrencyRate, 1e-9)
	for _, cs := range got {
		assert.NotEqual(t, 0, cs.Index, "code column must not be suggested")
		assert.Greater(t, cs.Score, 0.0)
	}
}

func TestChooseSheetPriceColumn(t *testing.T) {
	t.Run("header hint wins over better statistics", func(t *testing.T) {
		headers := []string{"importe", "precio"}
		var rows []pricing.Row
		for i := 0; i < 12; i++ {
			rows = append(rows, pricing.Row{pricing.TextCell("$10.55"), pricing.NumberCell(float64(20 + i))})
		}
		choice := ChooseSheetPriceColumn(headers, rows, nil)
		assert.Equal(t, pricing.PriceColumnHeader, choice.Reason)
		assert.Equal(t, 1, choice.Index)
	})

	t.Run("profile picks decimal currency column", func(t *testing.T) {
		headers := []string{"flag", "importe"}
		var rows []pricing.Row
		for i := 0; i < 12; i++ {
			rows = append(rows, pricing.Row{pricing.NumberCell(1), pricing.TextCell("$1" + string(rune('0'+i%10)) + ".75")})
		}
		choice := ChooseSheetPriceColumn(headers, rows, nil)
		assert.True(t, choice.Found())
		assert.Equal(t, pricing.PriceColumnProfile, choice.Reason)
		assert.Equal(t, 1, choice.Index)
		assert.Len(t, choice.Columns, 2)
	})

	t.Run("nothing qualifies", func(t *testing.T) {
		headers := []string{"nota"}
		rows := []pricing.Row{textRow("sin precio"), textRow("n/a")}
		choice := ChooseSheetPriceColumn(headers, rows, nil)
		assert.False(t, choice.Found())
		assert.Equal(t, -1, choice.Index)
	})
}

func TestPriceValue(t *testing.T) {
	_, ok := PriceValue(pricing.TextCell("7501234567890"))
	assert.False(t, ok)
	_, ok = PriceValue(pricing.NumberCell(7501234567890))
	assert.False(t, ok)

	v, ok := PriceValue(pricing.TextCell("$45.50"))
	require.True(t, ok)
	assert.Equal(t, 45.5, v)
}

func TestSuggestPriceCols_IgnoresIdentifiers(t *testing.T) {
	headers := []string{"id", "nombre", "importe"}
	var rows []pricing.Row
	for i := 0; i < 10; i++ {
		rows = append(rows, pricing.Row{
			pricing.NumberCell(float64(7501234567890 + i)),
			pricing.TextCell("Producto"),
			pricing.TextCell("$12.50"),
		})
	}

	got := SuggestPriceCols(rows, headers, nil, 300, 3)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Index)

	assert.Empty(t, SuggestPriceCols(rows, headers, []int{2}, 300, 3))
}

func TestChooseSheetPriceColumn_SkipsColumns(t *testing.T) {
	headers := []string{"codigo", "importe"}
	var rows []pricing.Row
	for i := 0; i < 12; i++ {
		rows = append(rows, pricing.Row{pricing.TextCell("$10.55"), pricing.TextCell("$12.75")})
	}

	choice := ChooseSheetPriceColumn(headers, rows, []int{0})
	require.True(t, choice.Found())
	assert.Equal(t, 1, choice.Index)
	assert.Len(t, choice.Columns, 1)

	assert.False(t, ChooseSheetPriceColumn(headers, rows, []int{0, 1}).Found())
}

func TestRankByHeaderHint(t *testing.T) {
	headers := []string{"mayoreo", "menudeo", "precio unitario"}
	assert.Equal(t, []int{2, 0, 1}, RankByHeaderHint([]int{0, 1, 2}, headers))
}
