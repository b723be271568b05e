package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"skuprice/adapters/catalog"
	"skuprice/domain/normalize"
	"skuprice/domain/pricing"
	"skuprice/internal/config"
	"skuprice/internal/container"
	"skuprice/ports"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "skuprice-cli",
		Short: "Compare supplier price lists from the command line",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newCombineCmd(),
		newCatalogCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var sku string
	var summary bool

	cmd := &cobra.Command{
		Use:   "analyze --sku <identifier> [files...]",
		Short: "Find one product across supplier files and report the best price",
		Long: `Find every row carrying the given barcode in every sheet of every file,
reconcile the candidate prices and report the cheapest supplier.

Example: skuprice-cli analyze --sku 7501234567890 nadro.xlsx marzam.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			uploads, err := readUploads(args)
			if err != nil {
				return err
			}
			result, err := c.PricingService.AnalyzeBySku(cmd.Context(), sku, uploads)
			if err != nil {
				return err
			}
			if summary {
				printAnalyzeSummary(cmd.OutOrStdout(), result)
				return nil
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&sku, "sku", "", "Product barcode (12 to 14 digits)")
	cmd.Flags().BoolVar(&summary, "summary", false, "Print a short text summary instead of JSON")
	_ = cmd.MarkFlagRequired("sku")
	return cmd
}

func newCombineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "combine [files...]",
		Short: "Build the cross-supplier price matrix for every product in the files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			uploads, err := readUploads(args)
			if err != nil {
				return err
			}
			result, err := c.PricingService.CombineCatalog(cmd.Context(), uploads)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	return cmd
}

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the reference catalog",
	}
	cmd.AddCommand(newCatalogImportCmd())
	return cmd
}

func newCatalogImportCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import --file db.json",
		Short: "Load a JSON catalog file into the catalog database",
		Long: `Upsert every record of a JSON catalog file into the catalog table.
Identifiers are stored digits-only. The database is read from DATABASE_URL.

Example: DATABASE_URL=postgres://... skuprice-cli catalog import --file db.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogImport(cmd.Context(), cmd.OutOrStdout(), file)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Path to the JSON catalog file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runCatalogImport(ctx context.Context, out io.Writer, file string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Catalog.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for catalog import")
	}

	c, err := container.New(cfg)
	if err != nil {
		return err
	}
	defer c.Shutdown(context.Background())
	if err := c.ConnectDatabase(); err != nil {
		return err
	}
	if err := c.CatalogRepo.EnsureSchema(ctx); err != nil {
		return err
	}

	records, err := catalog.NewFileSource(file).LoadEntries(ctx)
	if err != nil {
		return err
	}
	records = normalizeRecords(records)

	n, err := c.CatalogRepo.UpsertEntries(ctx, records)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Imported %d catalog entries from %s\n", n, file)
	return nil
}

// normalizeRecords keys records by their digits and drops those without any.
// A later record for the same identifier replaces an earlier one.
func normalizeRecords(records []ports.CatalogRecord) []ports.CatalogRecord {
	index := make(map[string]int, len(records))
	out := make([]ports.CatalogRecord, 0, len(records))
	for _, r := range records {
		r.SKU = normalize.DigitsOnly(r.SKU)
		if r.SKU == "" {
			continue
		}
		r.ProductName = normalize.CleanDisplay(r.ProductName)
		r.Formula = normalize.CleanDisplay(r.Formula)
		r.Lab = normalize.CleanDisplay(r.Lab)
		if i, ok := index[r.SKU]; ok {
			out[i] = r
			continue
		}
		index[r.SKU] = len(out)
		out = append(out, r)
	}
	return out
}

func buildContainer(ctx context.Context) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.ConnectDatabase(); err != nil {
		return nil, err
	}
	if err := c.Init(ctx); err != nil {
		c.Shutdown(context.Background())
		return nil, err
	}
	return c, nil
}

func readUploads(paths []string) ([]pricing.Upload, error) {
	uploads := make([]pricing.Upload, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		uploads = append(uploads, pricing.Upload{Filename: filepath.Base(p), Data: data})
	}
	return uploads, nil
}

func printJSON(out io.Writer, v interface{}) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(jsonData))
	return err
}

func printAnalyzeSummary(out io.Writer, result *pricing.AnalyzeResult) {
	fmt.Fprintf(out, "SKU: %s\n", result.SKUNormalized)
	for _, f := range result.Files {
		fmt.Fprintf(out, "  %s: %d matches (header row %d, confidence %s)\n",
			f.Label(), f.Stats.Matches, f.HeaderRow, f.Mapping.Confidence)
	}
	if result.Consensus != nil {
		fmt.Fprintf(out, "Consensus: median %.2f, band [%.2f, %.2f] over %d prices\n",
			result.Consensus.Median, result.Consensus.Low, result.Consensus.High, result.Consensus.SampleSize)
	}
	if result.Best == nil {
		fmt.Fprintln(out, "Best: no priced match")
		return
	}
	fmt.Fprintf(out, "Best: %.2f from %s (%s)\n", result.Best.Price, result.Best.Supplier, result.Best.Filename)
	if len(result.Best.Tie) > 0 {
		fmt.Fprintf(out, "Tied with: %v\n", result.Best.Tie)
	}
}
