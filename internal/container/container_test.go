package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skuprice/internal/config"
)

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestInit_NoCatalog(t *testing.T) {
	c, err := New(&config.Config{Tuning: config.DefaultTuning()})
	require.NoError(t, err)
	require.NoError(t, c.ConnectDatabase())
	require.NoError(t, c.Init(context.Background()))

	assert.Nil(t, c.DB)
	assert.Equal(t, 0, c.Catalog.Len())
	assert.NotNil(t, c.PricingService)
	assert.NoError(t, c.Shutdown(context.Background()))
}

func TestInit_FileCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"SKU":"7501234567890","ProductName":"Paracetamol 500mg"}]`), 0o644))

	c, err := New(&config.Config{Catalog: config.CatalogConfig{Path: path}, Tuning: config.DefaultTuning()})
	require.NoError(t, err)
	require.NoError(t, c.Init(context.Background()))

	entry, ok := c.Catalog.Lookup("7501234567890")
	require.True(t, ok)
	assert.Equal(t, "Paracetamol 500mg", entry.ProductName)
}

func TestInit_MissingCatalogFile(t *testing.T) {
	c, err := New(&config.Config{Catalog: config.CatalogConfig{Path: "/nonexistent/db.json"}})
	require.NoError(t, err)
	assert.Error(t, c.Init(context.Background()))
}
