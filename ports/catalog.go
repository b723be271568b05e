package ports

import (
	"context"

	"skuprice/domain/pricing"
)

// ReferenceCatalog is the read-only identifier to product metadata lookup.
// Keys are normalized digit strings. Implementations are loaded once and
// safe for concurrent reads.
type ReferenceCatalog interface {
	Lookup(sku string) (pricing.CatalogEntry, bool)
	Len() int
}

// CatalogSource loads reference entries from a backing store
type CatalogSource interface {
	LoadEntries(ctx context.Context) ([]CatalogRecord, error)
}

// CatalogRecord is one raw catalog row before cleanup
type CatalogRecord struct {
	SKU         string `json:"SKU" db:"sku"`
	ProductName string `json:"ProductName" db:"product_name"`
	Formula     string `json:"Formula" db:"formula"`
	Lab         string `json:"Lab" db:"lab"`
}
