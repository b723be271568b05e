package pricing

import "fmt"

// Role is the classification tag assigned to a spreadsheet column
type Role string

const (
	RoleIdentifier  Role = "identifier"
	RolePrice       Role = "price"
	RoleSupplier    Role = "supplier"
	RoleProductName Role = "product_name"
	RoleFormula     Role = "formula"
	RoleLab         Role = "lab"
)

// AllRoles lists every role in classification order
var AllRoles = []Role{RoleIdentifier, RolePrice, RoleSupplier, RoleProductName, RoleFormula, RoleLab}

// Confidence is how sure the classifier is about a sheet's column roles
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceMed  Confidence = "med"
	ConfidenceLow  Confidence = "low"
)

// SelectionReason records why a row's price was chosen
type SelectionReason string

const (
	ReasonNone    SelectionReason = ""
	ReasonBand    SelectionReason = "band"
	ReasonKeyword SelectionReason = "keyword"
	ReasonMin     SelectionReason = "min"
)

// PriceColumnReason records how a sheet's price column was resolved
type PriceColumnReason string

const (
	PriceColumnHeader    PriceColumnReason = "header"
	PriceColumnProfile   PriceColumnReason = "profile"
	PriceColumnNone      PriceColumnReason = "none"
	PriceColumnConsensus PriceColumnReason = "consensus"
)

// Candidate is one parsed price keyed by its normalized source header
type Candidate struct {
	Header string  `json:"header"`
	Value  float64 `json:"value"`
}

// Candidates keeps header/value pairs in column order
type Candidates []Candidate

// Get returns the value stored under header
func (c Candidates) Get(header string) (float64, bool) {
	for _, cand := range c {
		if cand.Header == header {
			return cand.Value, true
		}
	}
	return 0, false
}

// Set stores value under header, keeping the position of an existing header
func (c *Candidates) Set(header string, value float64) {
	for i := range *c {
		if (*c)[i].Header == header {
			(*c)[i].Value = value
			return
		}
	}
	*c = append(*c, Candidate{Header: header, Value: value})
}

// RecordField is one header/value pair of a cleaned row
type RecordField struct {
	Header string `json:"header"`
	Value  string `json:"value"`
}

// RowRecord is a data row keyed by the sheet's headers, in column order
type RowRecord []RecordField

// MatchRow is one data row that carried a valid identifier
type MatchRow struct {
	RowIndex        int             `json:"row_index"`
	Filename        string          `json:"filename"`
	SheetName       string          `json:"sheet_name,omitempty"`
	SKU             string          `json:"sku_detected"`
	Supplier        string          `json:"supplier,omitempty"`
	ProductName     string          `json:"product_name,omitempty"`
	Formula         string          `json:"formula,omitempty"`
	Lab             string          `json:"lab,omitempty"`
	NameFromFile    string          `json:"name_from_file,omitempty"`
	Candidates      Candidates      `json:"price_candidates"`
	PriceSelected   *float64        `json:"price_selected"`
	PriceColumnUsed string          `json:"price_column_used,omitempty"`
	SelectionReason SelectionReason `json:"selection_reason,omitempty"`
	Record          RowRecord       `json:"row,omitempty"`
}

// Select records a chosen price; value must come from the row's candidates
func (m *MatchRow) Select(header string, value float64, reason SelectionReason) {
	v := value
	m.PriceSelected = &v
	m.PriceColumnUsed = header
	m.SelectionReason = reason
}

// HasPrice reports whether a price was selected for the row
func (m MatchRow) HasPrice() bool {
	return m.PriceSelected != nil
}

// ColumnScore is the profiler's diagnostic for one column
type ColumnScore struct {
	Index        int     `json:"index"`
	Header       string  `json:"header"`
	Score        float64 `json:"score"`
	HeaderHit    bool    `json:"header_hit"`
	ParseRate    float64 `json:"parse_rate"`
	CurrencyRate float64 `json:"currency_rate"`
	DecimalRate  float64 `json:"decimal_rate"`
}

// ColumnMapping is a sheet's resolved column roles expressed as header labels
type ColumnMapping struct {
	SkuCols               []string          `json:"sku_cols"`
	PriceCols             []string          `json:"price_cols"`
	SupplierCols          []string          `json:"supplier_cols"`
	ProductNameCols       []string          `json:"product_name_cols"`
	FormulaCols           []string          `json:"formula_cols"`
	LabCols               []string          `json:"lab_cols"`
	PriceCandidateColumns []ColumnScore     `json:"price_candidate_columns,omitempty"`
	PriceColumnChosen     string            `json:"price_column_chosen,omitempty"`
	PriceColumnIndex      *int              `json:"price_column_index"`
	PriceColumnReason     PriceColumnReason `json:"price_column_reason"`
	PriceColumnScore      *float64          `json:"price_column_score,omitempty"`
	Confidence            Confidence        `json:"confidence"`
}

// ScanStats summarises one sheet scan
type ScanStats struct {
	RowsScanned int   `json:"rows_scanned"`
	Matches     int   `json:"matches"`
	ParseMs     int64 `json:"parse_ms"`
}

// FileResult is the extraction outcome for one sheet
type FileResult struct {
	Filename  string        `json:"filename"`
	SheetName string        `json:"sheet_name"`
	HeaderRow int           `json:"header_row"`
	Mapping   ColumnMapping `json:"mapping"`
	Stats     ScanStats     `json:"stats"`
	Matches   []MatchRow    `json:"matches"`
}

// Label identifies the sheet for display, e.g. "prices.xlsx (Hoja1)"
func (f FileResult) Label() string {
	if f.SheetName == "" {
		return f.Filename
	}
	return fmt.Sprintf("%s (%s)", f.Filename, f.SheetName)
}

// ConsensusBand is the trusted price range around the cross-file median
type ConsensusBand struct {
	Median     float64 `json:"median"`
	Low        float64 `json:"low"`
	High       float64 `json:"high"`
	HalfWidth  float64 `json:"half_width"`
	SampleSize int     `json:"sample_size"`
}

// Contains reports whether v lies inside the closed band
func (b ConsensusBand) Contains(v float64) bool {
	return v >= b.Low && v <= b.High
}

// CatalogEntry is the reference metadata stored for one identifier
type CatalogEntry struct {
	ProductName string `json:"product_name,omitempty"`
	Formula     string `json:"formula,omitempty"`
	Lab         string `json:"lab,omitempty"`
}
