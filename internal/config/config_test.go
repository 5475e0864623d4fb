package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValues(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "both", cfg.Logging.Output)

	assert.Equal(t, []string{"owner", "txn gross amt", "vendor", "invoice #", "invoice no"}, cfg.Loader.HeaderKeywords)
	assert.Equal(t, 50, cfg.Loader.HeaderScanRows)
	assert.Equal(t, "JIB", cfg.Loader.LedgerSheetKeyword)
	assert.Equal(t, "Combined", cfg.Loader.ImagesSheetKeyword)

	assert.Equal(t, 2000.0, cfg.Report.Threshold)
	assert.Equal(t, 3500.0, cfg.Report.VendorFloor)
	assert.Contains(t, cfg.Report.ExcludedVendors, "MARYBOY")
	assert.Equal(t, []string{"GJ", "PE"}, cfg.Report.ExcludedPrefixes)
	assert.Equal(t, `C:\Users\brend\Dropbox\Images MP-BC-AP R4Q2`, cfg.Report.DropboxRoot)
	assert.Equal(t, `F:\Images MP-BC-AP R4Q2`, cfg.Report.SecondaryRoot)
	assert.Equal(t, AggregationModeInvoice, cfg.Report.AggregationMode)
	assert.Equal(t, 4, cfg.Report.ImageSlots)

	assert.Equal(t, "data/refund_audit.db", cfg.Paths.AuditFile)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("NNOG_REPORT_THRESHOLD", "5000")
	t.Setenv("NNOG_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5000.0, cfg.Report.Threshold)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
report:
  threshold: 1000
  aggregation_mode: composite
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("NNOG_CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1000.0, cfg.Report.Threshold)
	assert.Equal(t, AggregationModeComposite, cfg.Report.AggregationMode)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 3500.0, cfg.Report.VendorFloor, "unset file fields keep their defaults")
}

func TestLoadYAMLZeroValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
report:
  threshold: 0
  vendor_floor: 0
  image_slots: 0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("NNOG_CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.0, cfg.Report.Threshold, "explicit zero threshold survives the merge")
	assert.Equal(t, 0.0, cfg.Report.VendorFloor)
	assert.Equal(t, 0, cfg.Report.ImageSlots)
}

func TestLoadEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("report:\n  threshold: 1000\n"), 0644))
	t.Setenv("NNOG_CONFIG_PATH", path)
	t.Setenv("NNOG_REPORT_THRESHOLD", "7500")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7500.0, cfg.Report.Threshold)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "aggregation mode", mutate: func(c *Config) { c.Report.AggregationMode = "vendor" }},
		{name: "negative threshold", mutate: func(c *Config) { c.Report.Threshold = -1 }},
		{name: "zero scan rows", mutate: func(c *Config) { c.Loader.HeaderScanRows = 0 }},
		{name: "too many image slots", mutate: func(c *Config) { c.Report.ImageSlots = MaxImageSlots + 1 }},
		{name: "log level", mutate: func(c *Config) { c.Logging.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Default()
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.validate())
		})
	}
}
