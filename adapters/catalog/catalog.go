// Package catalog holds the read-only reference catalog keyed by normalized identifier.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"skuprice/domain/normalize"
	"skuprice/domain/pricing"
	"skuprice/ports"
)

// Catalog is an immutable in-memory index. It is safe for concurrent reads.
type Catalog struct {
	entries map[string]pricing.CatalogEntry
}

// New indexes records by the digits of their SKU. Records without digits are
// skipped; a later record replaces an earlier one with the same key.
func New(records []ports.CatalogRecord) *Catalog {
	c := &Catalog{entries: make(map[string]pricing.CatalogEntry, len(records))}
	for _, rec := range records {
		key := normalize.DigitsOnly(rec.SKU)
		if key == "" {
			continue
		}
		c.entries[key] = pricing.CatalogEntry{
			ProductName: normalize.CleanDisplay(rec.ProductName),
			Formula:     normalize.CleanDisplay(rec.Formula),
			Lab:         normalize.CleanDisplay(rec.Lab),
		}
	}
	return c
}

// Empty returns a catalog with no entries
func Empty() *Catalog {
	return New(nil)
}

// Load builds a catalog from source once
func Load(ctx context.Context, source ports.CatalogSource) (*Catalog, error) {
	records, err := source.LoadEntries(ctx)
	if err != nil {
		return nil, err
	}
	c := New(records)
	log.Printf("[Catalog] Loaded %d entries (%d records)", c.Len(), len(records))
	return c, nil
}

// Lookup returns the entry for a normalized identifier
func (c *Catalog) Lookup(sku string) (pricing.CatalogEntry, bool) {
	e, ok := c.entries[sku]
	return e, ok
}

// Len returns the number of indexed identifiers
func (c *Catalog) Len() int {
	return len(c.entries)
}

// FileSource reads catalog records from a JSON array file
type FileSource struct {
	Path string
}

// NewFileSource creates a JSON file source
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// LoadEntries reads and decodes the file
func (s *FileSource) LoadEntries(ctx context.Context) ([]ports.CatalogRecord, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()
	return DecodeJSON(f)
}

// skuField accepts identifiers stored as JSON strings or numbers
type skuField string

func (s *skuField) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = skuField(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = skuField(n.String())
	return nil
}

// DecodeJSON decodes a JSON array of {SKU, ProductName, Formula, Lab}
func DecodeJSON(r io.Reader) ([]ports.CatalogRecord, error) {
	var raw []struct {
		SKU         skuField `json:"SKU"`
		ProductName string   `json:"ProductName"`
		Formula     string   `json:"Formula"`
		Lab         string   `json:"Lab"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	records := make([]ports.CatalogRecord, len(raw))
	for i, r := range raw {
		records[i] = ports.CatalogRecord{
			SKU:         string(r.SKU),
			ProductName: r.ProductName,
			Formula:     r.Formula,
			Lab:         r.Lab,
		}
	}
	return records, nil
}
