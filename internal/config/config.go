package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "aurelion/internal/errors"
)

// Config represents the complete pipeline configuration.
type Config struct {
	Paths      PathsConfig      `yaml:"paths" envconfig:"PATHS"`
	Datasets   DatasetsConfig   `yaml:"datasets" envconfig:"DATASETS"`
	Validation ValidationConfig `yaml:"validation" envconfig:"VALIDATION"`
	Analytics  AnalyticsConfig  `yaml:"analytics" envconfig:"ANALYTICS"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	History    HistoryConfig    `yaml:"history" envconfig:"HISTORY"`
}

// PathsConfig contains the directory layout of the project.
type PathsConfig struct {
	DataDir   string `yaml:"data_dir" envconfig:"DATA_DIR"`
	CleanDir  string `yaml:"clean_dir" envconfig:"CLEAN_DIR"`
	ExportDir string `yaml:"export_dir" envconfig:"EXPORT_DIR"`
	DocsDir   string `yaml:"docs_dir" envconfig:"DOCS_DIR"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// DatasetsConfig contains the per-table source files. The file extension
// decides the parser (autodetected reading).
type DatasetsConfig struct {
	Products  string `yaml:"products" envconfig:"PRODUCTS" validate:"required"`
	Clients   string `yaml:"clients" envconfig:"CLIENTS" validate:"required"`
	Sales     string `yaml:"sales" envconfig:"SALES" validate:"required"`
	SaleLines string `yaml:"sale_lines" envconfig:"SALE_LINES" validate:"required"`
}

// ValidationConfig contains thresholds for the validation stage. Dates
// use the 2006-01-02 layout; empty means unbounded.
type ValidationConfig struct {
	// MaxOrphanRatio is the tolerated fraction of referentially broken
	// rows per relation before the run is aborted. Below the threshold
	// orphans are dropped during cleaning.
	MaxOrphanRatio float64 `yaml:"max_orphan_ratio" envconfig:"MAX_ORPHAN_RATIO" validate:"gte=0,lte=1"`
	MinDate        string  `yaml:"min_date" envconfig:"MIN_DATE" validate:"omitempty,datetime=2006-01-02"`
	MaxDate        string  `yaml:"max_date" envconfig:"MAX_DATE" validate:"omitempty,datetime=2006-01-02"`
	MaxUnitPrice   float64 `yaml:"max_unit_price" envconfig:"MAX_UNIT_PRICE" validate:"gt=0"`
}

// DateWindow returns the configured sale date window. A zero time on
// either side means that side is unbounded.
func (v ValidationConfig) DateWindow() (min, max time.Time) {
	if v.MinDate != "" {
		min, _ = time.Parse("2006-01-02", v.MinDate)
	}
	if v.MaxDate != "" {
		max, _ = time.Parse("2006-01-02", v.MaxDate)
	}
	return min, max
}

// AnalyticsConfig contains KPI engine parameters.
type AnalyticsConfig struct {
	// TopProducts is the N for the product ranking export.
	TopProducts int `yaml:"top_products" envconfig:"TOP_PRODUCTS" validate:"gt=0"`
	// ABCClassA and ABCClassB are the cumulative-share cut points for
	// Pareto segmentation (class A up to ABCClassA, class B up to
	// ABCClassB, class C above).
	ABCClassA float64 `yaml:"abc_class_a" envconfig:"ABC_CLASS_A" validate:"gt=0,lt=1"`
	ABCClassB float64 `yaml:"abc_class_b" envconfig:"ABC_CLASS_B" validate:"gt=0,lte=1,gtfield=ABCClassA"`
}

// LoggingConfig contains logging configuration. Format is always JSON.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
	// TraceFilePath receives the per-step trace spans as JSON lines.
	TraceFilePath string `yaml:"trace_file_path" envconfig:"TRACE_FILE_PATH"`
	// TraceEnabled defaults to true when unset.
	TraceEnabled *bool `yaml:"trace_enabled" envconfig:"TRACE_ENABLED"`
}

// TracingEnabled reports whether step tracing is on.
func (l LoggingConfig) TracingEnabled() bool {
	return l.TraceEnabled == nil || *l.TraceEnabled
}

// HistoryConfig configures the sqlite run ledger.
type HistoryConfig struct {
	// Enabled defaults to true when unset.
	Enabled      *bool  `yaml:"enabled" envconfig:"ENABLED"`
	DatabasePath string `yaml:"database_path" envconfig:"DATABASE_PATH"`
}

// IsEnabled reports whether the run ledger is on.
func (h HistoryConfig) IsEnabled() bool {
	return h.Enabled == nil || *h.Enabled
}

// envPrefix is the prefix for environment variable overrides, e.g.
// AURELION_LOGGING_LEVEL=debug.
const envPrefix = "AURELION"

// Load reads configuration from the given YAML file (if it exists) and
// applies environment variable overrides on top.
func Load(configFile string) (*Config, error) {
	var cfg Config

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fileCfg, err := loadFromFile(configFile)
			if err != nil {
				return nil, apperrors.Wrap("config", apperrors.CodeConfigInvalid, "failed to load config from file", err)
			}
			cfg = *fileCfg
		}
	}

	// Environment variables take precedence over the file.
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, apperrors.Wrap("config", apperrors.CodeConfigInvalid, "config validation failed", err)
	}

	return &cfg, nil
}

// Default returns the built-in configuration with no file or environment
// overrides applied.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults fills zero values that envconfig defaults do not reach
// when a YAML file provided a partial section.
func applyDefaults(cfg *Config) {
	if cfg.Paths.DataDir == "" {
		cfg.Paths.DataDir = "datasets"
	}
	if cfg.Paths.CleanDir == "" {
		cfg.Paths.CleanDir = "datasets_clean"
	}
	if cfg.Paths.ExportDir == "" {
		cfg.Paths.ExportDir = "export"
	}
	if cfg.Paths.DocsDir == "" {
		cfg.Paths.DocsDir = "docs"
	}
	if cfg.Paths.LogsDir == "" {
		cfg.Paths.LogsDir = "logs"
	}
	if cfg.Datasets.Products == "" {
		cfg.Datasets.Products = "productos.xlsx"
	}
	if cfg.Datasets.Clients == "" {
		cfg.Datasets.Clients = "clientes.xlsx"
	}
	if cfg.Datasets.Sales == "" {
		cfg.Datasets.Sales = "ventas.xlsx"
	}
	if cfg.Datasets.SaleLines == "" {
		cfg.Datasets.SaleLines = "detalle_ventas.xlsx"
	}
	if cfg.Validation.MaxOrphanRatio == 0 {
		cfg.Validation.MaxOrphanRatio = 0.05
	}
	if cfg.Validation.MaxUnitPrice == 0 {
		cfg.Validation.MaxUnitPrice = 1000000
	}
	if cfg.Analytics.TopProducts == 0 {
		cfg.Analytics.TopProducts = 5
	}
	if cfg.Analytics.ABCClassA == 0 {
		cfg.Analytics.ABCClassA = 0.80
	}
	if cfg.Analytics.ABCClassB == 0 {
		cfg.Analytics.ABCClassB = 0.95
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "both"
	}
	if cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = "pipeline.log.jsonl"
	}
	if cfg.Logging.TraceFilePath == "" {
		cfg.Logging.TraceFilePath = "trace.jsonl"
	}
	if cfg.History.DatabasePath == "" {
		cfg.History.DatabasePath = "history.db"
	}
}

// Validate checks the configuration against its struct tags plus the
// cross-field rules the tags cannot express.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, verr := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", verr.Namespace(), verr.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return err
	}

	minDate, maxDate := c.Validation.DateWindow()
	if !minDate.IsZero() && !maxDate.IsZero() && maxDate.Before(minDate) {
		return fmt.Errorf("invalid configuration: validation.max_date is before validation.min_date")
	}

	return nil
}
