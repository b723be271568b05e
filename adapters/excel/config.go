package excel

// ReaderConfig holds workbook decoding settings
type ReaderConfig struct {
	// MaxSheets caps how many sheets of one workbook are read; 0 reads all
	MaxSheets int `json:"max_sheets"`
	// CSVSheetName names the single sheet of a delimited file
	CSVSheetName string `json:"csv_sheet_name"`
}

// DefaultReaderConfig returns sensible defaults for upload processing
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		MaxSheets:    0,
		CSVSheetName: "Sheet1",
	}
}
