package pricing

// TieEntry is one supplier sharing the best price
type TieEntry struct {
	Supplier string  `json:"supplier,omitempty"`
	Filename string  `json:"filename"`
	Price    float64 `json:"price"`
}

// PriceSource points at the cell that produced a price
type PriceSource struct {
	File            string `json:"file"`
	RowIndex        int    `json:"row_index"`
	PriceColumnUsed string `json:"price_column_used"`
}

// BestPrice is the cheapest supplier quote for one identifier
type BestPrice struct {
	Supplier string      `json:"supplier,omitempty"`
	Filename string      `json:"filename"`
	Price    float64     `json:"price"`
	Source   PriceSource `json:"source"`
	Tie      []TieEntry  `json:"tie,omitempty"`
}

// AnalyzeResult is the single-identifier response
type AnalyzeResult struct {
	RequestID     string         `json:"request_id"`
	SKU           string         `json:"sku"`
	SKUNormalized string         `json:"sku_normalized"`
	Files         []FileResult   `json:"files"`
	Best          *BestPrice     `json:"best"`
	Consensus     *ConsensusBand `json:"consensus"`
}

// BandMethod names the estimator behind a GuardBand
type BandMethod string

const (
	BandMAD  BandMethod = "MAD"
	BandIQR  BandMethod = "IQR"
	BandNone BandMethod = "NONE"
)

// GuardBand is the per-row outlier band over one identifier's file prices
type GuardBand struct {
	Method BandMethod `json:"method"`
	Median float64    `json:"median"`
	Low    float64    `json:"low"`
	High   float64    `json:"high"`
	Pct    float64    `json:"pct"`
}

// CellRef points back into the FileResult list for diagnostics
type CellRef struct {
	FileIdx  int `json:"file_idx"`
	MatchIdx int `json:"match_idx"`
}

// CombineCell is one file's price for one identifier
type CombineCell struct {
	Filename        string   `json:"filename"`
	SheetName       string   `json:"sheet_name,omitempty"`
	Supplier        string   `json:"supplier,omitempty"`
	Price           *float64 `json:"price"`
	PriceColumnUsed string   `json:"price_column_used,omitempty"`
	RowIndex        *int     `json:"row_index,omitempty"`
	Ref             *CellRef `json:"ref,omitempty"`
	Outlier         bool     `json:"outlier,omitempty"`
}

// CombineRow is one identifier across all uploaded files
type CombineRow struct {
	SKU         string        `json:"sku"`
	ProductName string        `json:"product_name"`
	Formula     string        `json:"formula,omitempty"`
	Lab         string        `json:"lab,omitempty"`
	Prices      []CombineCell `json:"prices"`
	BestIndex   *int          `json:"best_index,omitempty"`
	Band        GuardBand     `json:"band"`
}

// CombineResult is the catalog-flow response
type CombineResult struct {
	RequestID string       `json:"request_id"`
	Files     []FileResult `json:"files"`
	Matrix    []CombineRow `json:"matrix"`
}
