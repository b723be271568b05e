package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skuprice/domain/pricing"
	"skuprice/ports"
)

func TestNormalizeRecords(t *testing.T) {
	records := normalizeRecords([]ports.CatalogRecord{
		{SKU: "750-1234-567890", ProductName: "  Paracetamol   500mg "},
		{SKU: "n/a", ProductName: "dropped"},
		{SKU: "7501234567890", ProductName: "Paracetamol 500 mg", Lab: "Genomma"},
		{SKU: "7509876543210", ProductName: "Ibuprofeno"},
	})

	require.Len(t, records, 2)
	assert.Equal(t, "7501234567890", records[0].SKU)
	assert.Equal(t, "Paracetamol 500 mg", records[0].ProductName)
	assert.Equal(t, "Genomma", records[0].Lab)
	assert.Equal(t, "7509876543210", records[1].SKU)
}

func TestReadUploads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nadro.csv")
	require.NoError(t, os.WriteFile(path, []byte("SKU,Precio\n"), 0o644))

	uploads, err := readUploads([]string{path})
	require.NoError(t, err)
	require.Len(t, uploads, 1)
	assert.Equal(t, "nadro.csv", uploads[0].Filename)

	_, err = readUploads([]string{filepath.Join(dir, "missing.xlsx")})
	assert.Error(t, err)
}

func TestPrintAnalyzeSummary(t *testing.T) {
	var buf bytes.Buffer
	printAnalyzeSummary(&buf, &pricing.AnalyzeResult{
		SKUNormalized: "7501234567890",
		Best:          &pricing.BestPrice{Supplier: "MARZAM", Filename: "c.xlsx (Hoja1)", Price: 98.5},
	})
	assert.Contains(t, buf.String(), "Best: 98.50 from MARZAM (c.xlsx (Hoja1))")

	buf.Reset()
	printAnalyzeSummary(&buf, &pricing.AnalyzeResult{SKUNormalized: "7501234567890"})
	assert.Contains(t, buf.String(), "no priced match")
}
