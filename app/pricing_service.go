package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"skuprice/domain/core"
	"skuprice/domain/normalize"
	"skuprice/domain/pricing"
	"skuprice/internal"
	"skuprice/internal/aggregate"
	"skuprice/internal/config"
	"skuprice/internal/consensus"
	"skuprice/internal/errors"
	"skuprice/internal/extract"
	"skuprice/ports"
)

// ServiceConfig tunes the pricing pipeline
type ServiceConfig struct {
	Workers   int
	Extract   extract.Options
	Consensus consensus.Options
}

// DefaultServiceConfig returns the stock pipeline settings
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Workers:   4,
		Extract:   extract.DefaultOptions(),
		Consensus: consensus.DefaultOptions(),
	}
}

// ServiceConfigFrom maps loaded configuration onto the pipeline settings
func ServiceConfigFrom(cfg *config.Config) ServiceConfig {
	sc := DefaultServiceConfig()
	sc.Workers = cfg.Extract.Workers
	sc.Extract.HeaderScanRows = cfg.Tuning.HeaderScanRows
	sc.Extract.SkuSampleRows = cfg.Tuning.SkuSampleRows
	sc.Extract.ProfileSampleRows = cfg.Tuning.ProfileSampleRows
	sc.Consensus.OverrideMargin = cfg.Tuning.OverrideMargin
	sc.Consensus.FallbackPct = cfg.Tuning.FallbackBandPct
	sc.Consensus.MadMultiplier = cfg.Tuning.MadMultiplier
	return sc
}

// PricingService runs both request flows: per-file extraction fans out,
// then reconciliation runs once over the completed results.
type PricingService struct {
	reader    ports.WorkbookReader
	extractor *extract.SheetExtractor
	combiner  *aggregate.Combiner
	config    ServiceConfig
	logger    *internal.Logger
}

// NewPricingService creates a pricing service. catalog may be nil.
func NewPricingService(reader ports.WorkbookReader, catalog ports.ReferenceCatalog, cfg ServiceConfig) *PricingService {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &PricingService{
		reader:    reader,
		extractor: extract.NewSheetExtractor(cfg.Extract),
		combiner:  aggregate.NewCombiner(catalog),
		config:    cfg,
		logger:    internal.DefaultLogger.With("PricingService"),
	}
}

// AnalyzeBySku finds skuRaw in every sheet of every upload, reconciles the
// candidate prices across files and reports the cheapest supplier.
func (s *PricingService) AnalyzeBySku(ctx context.Context, skuRaw string, uploads []pricing.Upload) (*pricing.AnalyzeResult, error) {
	sku := normalize.DigitsOnly(skuRaw)
	if !normalize.IsGtin(sku) {
		return nil, errors.ValidationError("sku must have 12 to 14 digits")
	}
	if len(uploads) == 0 {
		return nil, errors.ValidationError("no files uploaded")
	}

	startTime := time.Now()
	perFile, err := s.extractUploads(ctx, uploads, sku)
	if err != nil {
		return nil, err
	}
	files := []pricing.FileResult{}
	for _, results := range perFile {
		files = append(files, results...)
	}

	band := consensus.ComputeConsensusBand(files, s.config.Consensus)
	consensus.RefineSelections(files, band, s.config.Consensus)
	best := consensus.BestPrice(files)

	result := &pricing.AnalyzeResult{
		RequestID:     core.NewID().String(),
		SKU:           skuRaw,
		SKUNormalized: sku,
		Files:         files,
		Best:          best,
		Consensus:     band,
	}
	if best != nil {
		s.logger.Info("analyze %s: %d sheets, best %s at %.2f in %v", sku, len(files), best.Filename, best.Price, time.Since(startTime))
	} else {
		s.logger.Info("analyze %s: %d sheets, no price found in %v", sku, len(files), time.Since(startTime))
	}
	return result, nil
}

// CombineCatalog extracts every identifier row of every upload and builds
// the identifier by file price matrix.
func (s *PricingService) CombineCatalog(ctx context.Context, uploads []pricing.Upload) (*pricing.CombineResult, error) {
	if len(uploads) == 0 {
		return nil, errors.ValidationError("no files uploaded")
	}

	startTime := time.Now()
	perFile, err := s.extractUploads(ctx, uploads, "")
	if err != nil {
		return nil, err
	}

	names := make([]string, len(uploads))
	for i, u := range uploads {
		names[i] = normalize.CleanDisplay(u.Filename)
	}
	files, matrix := s.combiner.Combine(names, perFile)

	s.logger.Info("combine: %d files, %d sheets, %d identifiers in %v", len(uploads), len(files), len(matrix), time.Since(startTime))
	return &pricing.CombineResult{
		RequestID: core.NewID().String(),
		Files:     files,
		Matrix:    matrix,
	}, nil
}

// extractUploads reads and extracts every upload concurrently. Results keep
// upload order; the first failure cancels the rest.
func (s *PricingService) extractUploads(ctx context.Context, uploads []pricing.Upload, sku string) ([][]pricing.FileResult, error) {
	results := make([][]pricing.FileResult, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)

	for i, upload := range uploads {
		g.Go(func() error {
			wb, err := s.reader.Read(gctx, upload)
			if err != nil {
				return errors.Wrapf(err, "failed to read %s", upload.Filename)
			}
			s.logger.Debug("%s: %d sheets (sha256 %s)", upload.Filename, len(wb.Sheets), core.NewHash(upload.Data).Short())
			results[i] = s.extractor.ExtractWorkbook(wb, sku)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
