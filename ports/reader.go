package ports

import (
	"context"

	"skuprice/domain/pricing"
)

// WorkbookReader decodes an uploaded file into its sheets' cell grids.
// Corrupt or unsupported files are reported as errors; cell content is
// never interpreted here.
type WorkbookReader interface {
	Read(ctx context.Context, upload pricing.Upload) (pricing.Workbook, error)
}
