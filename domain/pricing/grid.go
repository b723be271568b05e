package pricing

import (
	"strconv"
	"strings"
)

// CellKind identifies what a raw spreadsheet cell holds
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
)

// Cell is one raw value read from a sheet
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

// TextCell builds a text cell; blank strings become empty cells
func TextCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{Kind: CellEmpty}
	}
	return Cell{Kind: CellText, Text: s}
}

// NumberCell builds a native numeric cell
func NumberCell(n float64) Cell {
	return Cell{Kind: CellNumber, Number: n}
}

// IsEmpty reports whether the cell carries no value
func (c Cell) IsEmpty() bool {
	switch c.Kind {
	case CellNumber:
		return false
	case CellText:
		return strings.TrimSpace(c.Text) == ""
	default:
		return true
	}
}

// String renders the cell the way a spreadsheet would show its raw value
func (c Cell) String() string {
	switch c.Kind {
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellText:
		return c.Text
	default:
		return ""
	}
}

// Row is an ordered sequence of cells
type Row []Cell

// At returns the cell at idx, or an empty cell when the row is shorter
func (r Row) At(idx int) Cell {
	if idx < 0 || idx >= len(r) {
		return Cell{}
	}
	return r[idx]
}

// RawGrid is the immutable cell matrix of one sheet
type RawGrid []Row

// Sheet is a named grid inside a workbook
type Sheet struct {
	Name string
	Grid RawGrid
}

// Upload is one uploaded file as received from the transport layer
type Upload struct {
	Filename string
	Data     []byte
}

// Workbook is a decoded upload
type Workbook struct {
	Filename string
	Sheets   []Sheet
}
