package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"skuprice/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig
	Catalog CatalogConfig
	Extract ExtractConfig
	Tuning  Tuning
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	MaxUploadMB     int
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// CatalogConfig locates the reference catalog. Both sources are optional;
// DatabaseURL wins when both are set.
type CatalogConfig struct {
	Path        string
	DatabaseURL string
	Table       string
}

// ExtractConfig holds upload processing settings
type ExtractConfig struct {
	Workers int
}

// Tuning holds the heuristics' adjustable parameters
type Tuning struct {
	OverrideMargin    float64 `yaml:"override_margin"`
	HeaderScanRows    int     `yaml:"header_scan_rows"`
	SkuSampleRows     int     `yaml:"sku_sample_rows"`
	ProfileSampleRows int     `yaml:"profile_sample_rows"`
	FallbackBandPct   float64 `yaml:"fallback_band_pct"`
	MadMultiplier     float64 `yaml:"mad_multiplier"`
}

// DefaultTuning returns the stock heuristics
func DefaultTuning() Tuning {
	return Tuning{
		OverrideMargin:    0.5,
		HeaderScanRows:    20,
		SkuSampleRows:     50,
		ProfileSampleRows: 300,
		FallbackBandPct:   0.15,
		MadMultiplier:     3.0,
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:  *loadServerConfig(),
		Catalog: *loadCatalogConfig(),
		Extract: ExtractConfig{Workers: getEnvIntOrDefault("EXTRACT_WORKERS", 4)},
	}

	tuning, err := LoadTuning(os.Getenv("TUNING_FILE"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load tuning")
	}
	config.Tuning = tuning

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// LoadTuning overlays the YAML file at path on DefaultTuning. An empty path
// returns the defaults.
func LoadTuning(path string) (Tuning, error) {
	tuning := DefaultTuning()
	if path == "" {
		return tuning, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return tuning, errors.Wrapf(err, "reading tuning file %s", path)
	}
	if err := yaml.Unmarshal(data, &tuning); err != nil {
		return tuning, errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "parsing tuning file %s", path))
	}
	return tuning, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            getEnvOrDefault("PORT", "8080"),
		MaxUploadMB:     getEnvIntOrDefault("MAX_UPLOAD_MB", 64),
		ReadTimeout:     getEnvDurationOrDefault("READ_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadCatalogConfig() *CatalogConfig {
	return &CatalogConfig{
		Path:        getEnvOrDefault("CATALOG_PATH", ""),
		DatabaseURL: getEnvOrDefault("DATABASE_URL", ""),
		Table:       getEnvOrDefault("CATALOG_TABLE", "product_catalog"),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Server.MaxUploadMB <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if config.Extract.Workers <= 0 {
		return errors.ConfigInvalid("EXTRACT_WORKERS must be positive")
	}
	if config.Tuning.OverrideMargin < 0 {
		return errors.ConfigInvalid("override_margin must not be negative")
	}
	if config.Tuning.FallbackBandPct <= 0 || config.Tuning.MadMultiplier <= 0 {
		return errors.ConfigInvalid("band parameters must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
