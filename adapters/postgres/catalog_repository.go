package postgres

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"skuprice/ports"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// CatalogRepository reads and writes the reference catalog table
type CatalogRepository struct {
	db    *sqlx.DB
	table string
}

// NewCatalogRepository creates a PostgreSQL catalog repository over table
func NewCatalogRepository(db *sqlx.DB, table string) (*CatalogRepository, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid catalog table name %q", table)
	}
	return &CatalogRepository{db: db, table: table}, nil
}

func (r *CatalogRepository) quoted() string {
	return pq.QuoteIdentifier(r.table)
}

// EnsureSchema creates the catalog table when missing
func (r *CatalogRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			sku TEXT PRIMARY KEY,
			product_name TEXT,
			formula TEXT,
			lab TEXT,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`, r.quoted()))
	return err
}

// LoadEntries returns every catalog row
func (r *CatalogRepository) LoadEntries(ctx context.Context) ([]ports.CatalogRecord, error) {
	var records []ports.CatalogRecord
	err := r.db.SelectContext(ctx, &records, fmt.Sprintf(`
		SELECT sku,
		       COALESCE(product_name, '') AS product_name,
		       COALESCE(formula, '') AS formula,
		       COALESCE(lab, '') AS lab
		FROM %s
		ORDER BY sku`, r.quoted()))
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog entries: %w", err)
	}
	return records, nil
}

// UpsertEntries writes records in one transaction, replacing rows with the same sku
func (r *CatalogRepository) UpsertEntries(ctx context.Context, records []ports.CatalogRecord) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO %s (sku, product_name, formula, lab, updated_at)
		VALUES (:sku, :product_name, :formula, :lab, NOW())
		ON CONFLICT (sku) DO UPDATE SET
			product_name = EXCLUDED.product_name,
			formula = EXCLUDED.formula,
			lab = EXCLUDED.lab,
			updated_at = NOW()`, r.quoted())

	written := 0
	for _, rec := range records {
		if rec.SKU == "" {
			continue
		}
		if _, err := tx.NamedExecContext(ctx, query, rec); err != nil {
			return written, fmt.Errorf("failed to upsert sku %s: %w", rec.SKU, err)
		}
		written++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return written, nil
}
