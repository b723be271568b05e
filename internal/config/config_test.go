package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skuprice/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "MAX_UPLOAD_MB", "EXTRACT_WORKERS", "TUNING_FILE", "CATALOG_PATH", "DATABASE_URL", "CATALOG_TABLE", "READ_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 64, cfg.Server.MaxUploadMB)
	assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 4, cfg.Extract.Workers)
	assert.Equal(t, "product_catalog", cfg.Catalog.Table)
	assert.Equal(t, DefaultTuning(), cfg.Tuning)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("EXTRACT_WORKERS", "8")
	t.Setenv("CATALOG_PATH", "data/db.json")
	t.Setenv("READ_TIMEOUT", "5s")
	t.Setenv("TUNING_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 8, cfg.Extract.Workers)
	assert.Equal(t, "data/db.json", cfg.Catalog.Path)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
}

func TestLoadRejectsBadWorkers(t *testing.T) {
	t.Setenv("EXTRACT_WORKERS", "0")
	t.Setenv("TUNING_FILE", "")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLoadTuning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("override_margin: 0.8\nheader_scan_rows: 30\n"), 0o644))

	tuning, err := LoadTuning(path)
	require.NoError(t, err)
	assert.Equal(t, 0.8, tuning.OverrideMargin)
	assert.Equal(t, 30, tuning.HeaderScanRows)
	assert.Equal(t, 300, tuning.ProfileSampleRows)
	assert.Equal(t, 3.0, tuning.MadMultiplier)
}

func TestLoadTuningErrors(t *testing.T) {
	_, err := LoadTuning(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("override_margin: [1, 2"), 0o644))
	_, err = LoadTuning(path)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
