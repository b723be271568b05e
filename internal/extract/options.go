package extract

import "skuprice/domain/classify"

// Options controls how much of each sheet the classifiers sample
type Options struct {
	HeaderScanRows    int
	SkuSampleRows     int
	ProfileSampleRows int
	MaxPriceCols      int
}

// DefaultOptions returns the sampling limits used in production
func DefaultOptions() Options {
	return Options{
		HeaderScanRows:    classify.DefaultHeaderScanRows,
		SkuSampleRows:     classify.DefaultSkuSampleRows,
		ProfileSampleRows: classify.DefaultProfileSampleRows,
		MaxPriceCols:      classify.DefaultMaxPriceCols,
	}
}
