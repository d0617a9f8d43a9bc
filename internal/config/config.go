// =============================================================================
// EDI 944 Mapper - Configuration Module
// =============================================================================
//
// This module loads and manages all configuration files:
//
//   1. Main Config (config.yaml, viper): global application settings, with
//      EDI_-prefixed environment variable overrides (EDI_INPUT_DIR, ...).
//   2. Partner Configs (configs/*.yaml, one per trading partner): dialect,
//      file matching patterns, parser settings, interchange IDs and
//      placeholder overrides.
//
// New trading partners are added by dropping a YAML file into the configs
// directory; no code changes required.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/outsourceai/edi-mapper/internal/edi"
	"github.com/outsourceai/edi-mapper/internal/tabparser"
)

// =============================================================================
// MAIN CONFIGURATION
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// InputDir is scanned for receipt extracts to process.
	InputDir string `mapstructure:"input_dir" yaml:"input_dir"`

	// OutputDir receives the generated .edi documents.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// InputArchiveDir receives input files after successful processing.
	InputArchiveDir string `mapstructure:"input_archive_dir" yaml:"input_archive_dir"`

	// OutputArchiveDir receives copies of generated documents.
	OutputArchiveDir string `mapstructure:"output_archive_dir" yaml:"output_archive_dir"`

	// ConfigsDir contains the per-partner configuration files.
	ConfigsDir string `mapstructure:"configs_dir" yaml:"configs_dir"`

	// LogLevel controls verbosity: "debug", "info", "warn", "error".
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// OutputNameFormat names generated files. Placeholders:
	//   {uuid}      random UUID
	//   {timestamp} YYYYMMDD_HHMMSS
	//   {partner}   partner code
	OutputNameFormat string `mapstructure:"output_name_format" yaml:"output_name_format"`

	// MaxConcurrency caps the number of files processed in parallel.
	MaxConcurrency int `mapstructure:"max_concurrency" yaml:"max_concurrency"`

	// ContinueOnError keeps the batch going when a file fails.
	ContinueOnError bool `mapstructure:"continue_on_error" yaml:"continue_on_error"`

	// ControlNumberSeed is the interchange control number of the first
	// file in a batch; each subsequent file increments it.
	ControlNumberSeed int `mapstructure:"control_number_seed" yaml:"control_number_seed"`
}

// envPrefix is the environment variable prefix for main-config overrides.
const envPrefix = "EDI"

// LoadMainConfig loads the main configuration via viper: defaults, then the
// YAML file (if present), then EDI_ environment overrides. A missing config
// file is not an error; the defaults describe a complete local setup.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetDefault("input_dir", "./input")
	v.SetDefault("output_dir", "./output")
	v.SetDefault("input_archive_dir", "./input_archive")
	v.SetDefault("output_archive_dir", "./output_archive")
	v.SetDefault("configs_dir", "./configs")
	v.SetDefault("log_level", "info")
	v.SetDefault("output_name_format", "{partner}_{timestamp}_{uuid}.edi")
	v.SetDefault("max_concurrency", 4)
	v.SetDefault("continue_on_error", true)
	v.SetDefault("control_number_seed", 1)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg MainConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validateMainConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// validateMainConfig rejects settings the pipeline cannot run with.
func validateMainConfig(cfg *MainConfig) error {
	if cfg.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", cfg.MaxConcurrency)
	}
	if cfg.ControlNumberSeed < 0 {
		return fmt.Errorf("control_number_seed must not be negative, got %d", cfg.ControlNumberSeed)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", cfg.LogLevel)
	}
	return nil
}

// =============================================================================
// PARTNER CONFIGURATION
// =============================================================================

// PartnerConfig holds the configuration for one trading partner. Each
// partner can have its own file matching patterns, parser settings, dialect
// and interchange identities.
type PartnerConfig struct {
	// PartnerName is the human-readable partner name, for logs.
	PartnerName string `yaml:"partner_name"`

	// PartnerCode is a short code used in output file names.
	PartnerCode string `yaml:"partner_code"`

	// FileMatchingPatterns are glob patterns matching this partner's
	// input files, e.g. "can_*.txt".
	FileMatchingPatterns []string `yaml:"file_matching_patterns"`

	// Dialect selects the output dialect: "standard" or "synapse".
	Dialect string `yaml:"dialect"`

	// ParserSettings controls how the tabular extract is read.
	ParserSettings tabparser.Settings `yaml:"parser_settings"`

	// SenderID / ReceiverID are the interchange identities (ISA, GS).
	SenderID   string `yaml:"sender_id"`
	ReceiverID string `yaml:"receiver_id"`

	// WarehouseCode / ShipToCode back the N1*WH / N1*ST segments when the
	// input carries no parties of its own.
	WarehouseCode string `yaml:"warehouse_code"`
	ShipToCode    string `yaml:"ship_to_code"`

	// Placeholders overrides the encoder's default placeholder policy.
	Placeholders PlaceholderConfig `yaml:"placeholders"`
}

// PlaceholderConfig overrides individual placeholder defaults. Empty fields
// keep the encoder's documented defaults.
type PlaceholderConfig struct {
	Unit       string `yaml:"unit"`
	ReportType string `yaml:"report_type"`
	ID         string `yaml:"id"`
}

// EncodeOptions resolves the partner's placeholder policy against the
// encoder defaults.
func (pc *PartnerConfig) EncodeOptions() edi.EncodeOptions {
	opts := edi.DefaultEncodeOptions()
	if pc.Placeholders.Unit != "" {
		opts.DefaultUnit = pc.Placeholders.Unit
	}
	if pc.Placeholders.ReportType != "" {
		opts.DefaultReportType = pc.Placeholders.ReportType
	}
	if pc.Placeholders.ID != "" {
		opts.PlaceholderID = pc.Placeholders.ID
	}
	return opts
}

// ParsedDialect returns the partner's dialect enum. Configs are validated
// at load time, so this never fails afterwards.
func (pc *PartnerConfig) ParsedDialect() edi.Dialect {
	d, err := edi.ParseDialect(pc.Dialect)
	if err != nil {
		return edi.DialectStandard
	}
	return d
}

// LoadPartnerConfigs loads every partner configuration in a directory,
// keyed by partner code.
func LoadPartnerConfigs(configsDir string) (map[string]*PartnerConfig, error) {
	files, err := filepath.Glob(filepath.Join(configsDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list config files: %w", err)
	}
	ymlFiles, err := filepath.Glob(filepath.Join(configsDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list config files: %w", err)
	}
	files = append(files, ymlFiles...)

	configs := make(map[string]*PartnerConfig)
	for _, file := range files {
		cfg, err := LoadPartnerConfig(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}

		key := cfg.PartnerCode
		if key == "" {
			key = filepath.Base(file)
		}
		configs[key] = cfg
	}

	return configs, nil
}

// LoadPartnerConfig loads and validates a single partner configuration.
func LoadPartnerConfig(path string) (*PartnerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var cfg PartnerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	applyPartnerDefaults(&cfg)

	if _, err := edi.ParseDialect(cfg.Dialect); err != nil {
		return nil, err
	}
	if cfg.SenderID == "" {
		return nil, fmt.Errorf("sender_id is required")
	}
	if cfg.ReceiverID == "" {
		return nil, fmt.Errorf("receiver_id is required")
	}

	return &cfg, nil
}

// applyPartnerDefaults fills unset partner settings.
func applyPartnerDefaults(cfg *PartnerConfig) {
	if cfg.Dialect == "" {
		cfg.Dialect = string(edi.DialectStandard)
	}
	defaults := tabparser.DefaultSettings()
	if cfg.ParserSettings.Delimiter == "" {
		cfg.ParserSettings.Delimiter = defaults.Delimiter
	}
	if cfg.ParserSettings.HeaderTag == "" {
		cfg.ParserSettings.HeaderTag = defaults.HeaderTag
	}
	if cfg.ParserSettings.DetailTag == "" {
		cfg.ParserSettings.DetailTag = defaults.DetailTag
	}
}

// FindMatchingPartner returns the partner configuration whose file matching
// patterns match the given file name, or nil when none matches.
func FindMatchingPartner(filePath string, configs map[string]*PartnerConfig) *PartnerConfig {
	fileName := filepath.Base(filePath)
	for _, cfg := range configs {
		for _, pattern := range cfg.FileMatchingPatterns {
			matched, err := filepath.Match(pattern, fileName)
			if err != nil {
				continue // invalid pattern, skip
			}
			if matched {
				return cfg
			}
		}
	}
	return nil
}
