package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Loader  LoaderConfig  `yaml:"loader" envconfig:"LOADER"`
	Report  ReportConfig  `yaml:"report" envconfig:"REPORT"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/refund.log"`
}

// LoaderConfig controls source-file ingestion. The header keywords and
// scan limit drive the header-row detection for spreadsheet inputs.
type LoaderConfig struct {
	HeaderKeywords     []string `yaml:"header_keywords" envconfig:"HEADER_KEYWORDS" default:"owner,txn gross amt,vendor,invoice #,invoice no"`
	HeaderScanRows     int      `yaml:"header_scan_rows" envconfig:"HEADER_SCAN_ROWS" default:"50"`
	LedgerSheetKeyword string   `yaml:"ledger_sheet_keyword" envconfig:"LEDGER_SHEET_KEYWORD" default:"JIB"`
	ImagesSheetKeyword string   `yaml:"images_sheet_keyword" envconfig:"IMAGES_SHEET_KEYWORD" default:"Combined"`
}

// ReportConfig contains the business rules for the refund report.
type ReportConfig struct {
	// Threshold is the minimum absolute per-invoice total for a
	// transaction to be refund-eligible.
	Threshold float64 `yaml:"threshold" envconfig:"THRESHOLD" default:"2000"`
	// VendorFloor protects small invoices from the excluded vendors:
	// an excluded vendor's invoice is dropped only below this total.
	VendorFloor     float64  `yaml:"vendor_floor" envconfig:"VENDOR_FLOOR" default:"3500"`
	ExcludedVendors []string `yaml:"excluded_vendors" envconfig:"EXCLUDED_VENDORS" default:"J R CONSTRUCTION,MONTEZUMA WELL SERVICE,MARYBOY,NELSON'S WELDING & ROUSTABOUT,3G CONSULTING"`
	// ExcludedPrefixes drops journal and period-end entries by invoice
	// number prefix, case-insensitive.
	ExcludedPrefixes []string `yaml:"excluded_prefixes" envconfig:"EXCLUDED_PREFIXES" default:"GJ,PE"`
	// DropboxRoot and SecondaryRoot are the two storage locations the
	// hyperlink formulas point at. Windows-style paths, no trailing slash.
	DropboxRoot   string `yaml:"dropbox_root" envconfig:"DROPBOX_ROOT" default:"C:\\Users\\brend\\Dropbox\\Images MP-BC-AP R4Q2"`
	SecondaryRoot string `yaml:"secondary_root" envconfig:"SECONDARY_ROOT" default:"F:\\Images MP-BC-AP R4Q2"`
	// AggregationMode selects how per-invoice totals are computed:
	// "invoice" sums every ledger row of an invoice, "composite" counts
	// identical invoice/vendor/property/billing/gross rows only once.
	AggregationMode string `yaml:"aggregation_mode" envconfig:"AGGREGATION_MODE" default:"invoice"`
	// ImageSlots caps how many related-file columns are read from the
	// cross-reference file. Zero disables image links entirely.
	ImageSlots int `yaml:"image_slots" envconfig:"IMAGE_SLOTS" default:"4"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
	AuditFile string `yaml:"audit_file" envconfig:"AUDIT_FILE" default:"data/refund_audit.db"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process("NNOG", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Load from config file if exists
	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileConfig, raw, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg, raw)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the built-in configuration, ignoring the config file.
// Environment overrides still apply.
func Default() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("NNOG", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFromFile loads configuration from YAML file. The raw document is
// returned as well so the merge can tell an explicit zero from an
// absent key.
func loadFromFile(filePath string) (*Config, map[interface{}]interface{}, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, nil, err
	}

	var raw map[interface{}]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}

	return &cfg, raw, nil
}

// fileHasKey reports whether the YAML document sets section.key.
func fileHasKey(raw map[interface{}]interface{}, section, key string) bool {
	sec, ok := raw[section].(map[interface{}]interface{})
	if !ok {
		return false
	}
	_, ok = sec[key]
	return ok
}

// mergeConfigs merges file config with env config (env takes precedence).
// Environment values only win when they were explicitly set; envconfig
// fills defaults either way, so the file value replaces a default.
func mergeConfigs(fileConfig, envConfig Config, raw map[interface{}]interface{}) Config {
	merged := envConfig

	if fileConfig.Logging.Level != "" && os.Getenv("NNOG_LOGGING_LEVEL") == "" {
		merged.Logging.Level = fileConfig.Logging.Level
	}
	if fileConfig.Logging.Output != "" && os.Getenv("NNOG_LOGGING_OUTPUT") == "" {
		merged.Logging.Output = fileConfig.Logging.Output
	}
	if fileConfig.Logging.FilePath != "" && os.Getenv("NNOG_LOGGING_FILE_PATH") == "" {
		merged.Logging.FilePath = fileConfig.Logging.FilePath
	}

	if len(fileConfig.Loader.HeaderKeywords) > 0 && os.Getenv("NNOG_LOADER_HEADER_KEYWORDS") == "" {
		merged.Loader.HeaderKeywords = fileConfig.Loader.HeaderKeywords
	}
	if fileConfig.Loader.HeaderScanRows > 0 && os.Getenv("NNOG_LOADER_HEADER_SCAN_ROWS") == "" {
		merged.Loader.HeaderScanRows = fileConfig.Loader.HeaderScanRows
	}
	if fileConfig.Loader.LedgerSheetKeyword != "" && os.Getenv("NNOG_LOADER_LEDGER_SHEET_KEYWORD") == "" {
		merged.Loader.LedgerSheetKeyword = fileConfig.Loader.LedgerSheetKeyword
	}
	if fileConfig.Loader.ImagesSheetKeyword != "" && os.Getenv("NNOG_LOADER_IMAGES_SHEET_KEYWORD") == "" {
		merged.Loader.ImagesSheetKeyword = fileConfig.Loader.ImagesSheetKeyword
	}

	// Zero is a legal threshold and floor, so key presence decides here
	// rather than the value.
	if fileHasKey(raw, "report", "threshold") && os.Getenv("NNOG_REPORT_THRESHOLD") == "" {
		merged.Report.Threshold = fileConfig.Report.Threshold
	}
	if fileHasKey(raw, "report", "vendor_floor") && os.Getenv("NNOG_REPORT_VENDOR_FLOOR") == "" {
		merged.Report.VendorFloor = fileConfig.Report.VendorFloor
	}
	if len(fileConfig.Report.ExcludedVendors) > 0 && os.Getenv("NNOG_REPORT_EXCLUDED_VENDORS") == "" {
		merged.Report.ExcludedVendors = fileConfig.Report.ExcludedVendors
	}
	if len(fileConfig.Report.ExcludedPrefixes) > 0 && os.Getenv("NNOG_REPORT_EXCLUDED_PREFIXES") == "" {
		merged.Report.ExcludedPrefixes = fileConfig.Report.ExcludedPrefixes
	}
	if fileConfig.Report.DropboxRoot != "" && os.Getenv("NNOG_REPORT_DROPBOX_ROOT") == "" {
		merged.Report.DropboxRoot = fileConfig.Report.DropboxRoot
	}
	if fileConfig.Report.SecondaryRoot != "" && os.Getenv("NNOG_REPORT_SECONDARY_ROOT") == "" {
		merged.Report.SecondaryRoot = fileConfig.Report.SecondaryRoot
	}
	if fileConfig.Report.AggregationMode != "" && os.Getenv("NNOG_REPORT_AGGREGATION_MODE") == "" {
		merged.Report.AggregationMode = fileConfig.Report.AggregationMode
	}
	if fileHasKey(raw, "report", "image_slots") && os.Getenv("NNOG_REPORT_IMAGE_SLOTS") == "" {
		merged.Report.ImageSlots = fileConfig.Report.ImageSlots
	}

	if fileConfig.Paths.LogsDir != "" && os.Getenv("NNOG_PATHS_LOGS_DIR") == "" {
		merged.Paths.LogsDir = fileConfig.Paths.LogsDir
	}
	if fileConfig.Paths.AuditFile != "" && os.Getenv("NNOG_PATHS_AUDIT_FILE") == "" {
		merged.Paths.AuditFile = fileConfig.Paths.AuditFile
	}

	return merged
}

// validate performs basic configuration validation
func (c *Config) validate() error {
	switch c.Report.AggregationMode {
	case AggregationModeInvoice, AggregationModeComposite:
	default:
		return fmt.Errorf("invalid aggregation_mode: %q", c.Report.AggregationMode)
	}
	if c.Report.Threshold < 0 {
		return fmt.Errorf("threshold must be non-negative: %f", c.Report.Threshold)
	}
	if c.Loader.HeaderScanRows <= 0 {
		return fmt.Errorf("header_scan_rows must be positive: %d", c.Loader.HeaderScanRows)
	}
	if c.Report.ImageSlots < 0 || c.Report.ImageSlots > MaxImageSlots {
		return fmt.Errorf("image_slots must be between 0 and %d: %d", MaxImageSlots, c.Report.ImageSlots)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %q", c.Logging.Level)
	}
	return nil
}

// getConfigFilePath returns the path to the configuration file
func getConfigFilePath() string {
	if path := os.Getenv("NNOG_CONFIG_PATH"); path != "" {
		return path
	}
	return "config.yaml"
}
