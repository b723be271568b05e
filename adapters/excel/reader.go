package excel

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"skuprice/domain/pricing"
	"skuprice/internal/errors"
)

// fileType is the decoder chosen from an upload's extension
type fileType string

const (
	fileTypeXLSX fileType = "xlsx"
	fileTypeCSV  fileType = "csv"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WorkbookReader decodes uploaded Excel and CSV files into cell grids
type WorkbookReader struct {
	config ReaderConfig
}

// NewWorkbookReader creates a reader that handles both Excel and CSV files
func NewWorkbookReader(config ReaderConfig) *WorkbookReader {
	if config.CSVSheetName == "" {
		config.CSVSheetName = DefaultReaderConfig().CSVSheetName
	}
	return &WorkbookReader{config: config}
}

func detectFileType(filename string) (fileType, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt", ".tsv":
		return fileTypeCSV, nil
	case ".xlsx", ".xlsm", ".xltx", ".xltm", "":
		return fileTypeXLSX, nil
	case ".xls":
		return "", fmt.Errorf("legacy .xls workbooks are not supported, save as .xlsx")
	default:
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}
}

// Read decodes upload into one grid per sheet
func (r *WorkbookReader) Read(ctx context.Context, upload pricing.Upload) (pricing.Workbook, error) {
	wb := pricing.Workbook{Filename: upload.Filename}
	typ, err := detectFileType(upload.Filename)
	if err != nil {
		return wb, errors.InvalidInput(upload.Filename, err)
	}
	log.Printf("[Workbook] Starting to read %s file: %s (%d bytes)", typ, upload.Filename, len(upload.Data))

	switch typ {
	case fileTypeCSV:
		sheet, err := r.readCSV(upload.Data)
		if err != nil {
			return wb, errors.InvalidInput(upload.Filename, err)
		}
		wb.Sheets = []pricing.Sheet{sheet}
	default:
		sheets, err := r.readExcel(ctx, upload.Data)
		if err != nil {
			return wb, errors.InvalidInput(upload.Filename, err)
		}
		wb.Sheets = sheets
	}
	return wb, nil
}

// readExcel reads every sheet, keeping numeric cells as numbers so that
// identifiers stored as text keep their leading zeros.
func (r *WorkbookReader) readExcel(ctx context.Context, data []byte) ([]pricing.Sheet, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()
	log.Printf("[Workbook] Excel file opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	names := f.GetSheetList()
	if r.config.MaxSheets > 0 && len(names) > r.config.MaxSheets {
		names = names[:r.config.MaxSheets]
	}

	sheets := make([]pricing.Sheet, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		readStart := time.Now()
		grid, err := readSheet(f, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		log.Printf("[Workbook] Sheet %q read in %.2fms (%d rows)", name, float64(time.Since(readStart).Nanoseconds())/1e6, len(grid))
		sheets = append(sheets, pricing.Sheet{Name: name, Grid: grid})
	}
	return sheets, nil
}

func readSheet(f *excelize.File, sheet string) (pricing.RawGrid, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	grid := make(pricing.RawGrid, len(rows))
	for r, values := range rows {
		row := make(pricing.Row, len(values))
		for c, value := range values {
			if strings.TrimSpace(value) == "" {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			typ, err := f.GetCellType(sheet, ref)
			if err != nil {
				typ = excelize.CellTypeUnset
			}
			row[c] = toCell(typ, value)
		}
		grid[r] = row
	}
	return grid, nil
}

// toCell keeps numbers numeric; untyped cells are numbers when the raw value parses
func toCell(typ excelize.CellType, raw string) pricing.Cell {
	switch typ {
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return pricing.NumberCell(v)
		}
	}
	return pricing.TextCell(raw)
}

// readCSV decodes a delimited file into a single text grid. Input that is
// not valid UTF-8 is read as Windows-1252.
func (r *WorkbookReader) readCSV(data []byte) (pricing.Sheet, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	var src io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		src = transform.NewReader(src, charmap.Windows1252.NewDecoder())
	}

	reader := csv.NewReader(src)
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	readStart := time.Now()
	records, err := reader.ReadAll()
	if err != nil {
		return pricing.Sheet{}, fmt.Errorf("failed to read CSV file: %w", err)
	}
	log.Printf("[Workbook] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(records))

	grid := make(pricing.RawGrid, len(records))
	for i, record := range records {
		row := make(pricing.Row, len(record))
		for j, value := range record {
			row[j] = pricing.TextCell(value)
		}
		grid[i] = row
	}
	return pricing.Sheet{Name: r.config.CSVSheetName, Grid: grid}, nil
}

// sniffDelimiter picks the most frequent of comma, semicolon and tab on the first line
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
