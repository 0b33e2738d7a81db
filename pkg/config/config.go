// Package config loads devrank settings from defaults, a YAML file,
// DEVRANK_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidMinChange = errors.New("min change size must not be negative")
	ErrInvalidWorkers   = errors.New("workers must be positive")
	ErrInvalidLimit     = errors.New("limit must not be negative")
	ErrInvalidFormat    = errors.New("unsupported output format")
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrInvalidCacheSize = errors.New("invalid blob cache size")
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DEVRANK"

// DateLayout is the accepted date-only form of since and until.
const DateLayout = "2006-01-02"

// Config holds all devrank settings.
type Config struct {
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Weights   WeightsConfig   `mapstructure:"weights"`
	Output    OutputConfig    `mapstructure:"output"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AnalysisConfig controls collection and classification.
type AnalysisConfig struct {
	MinChangeSize        int      `mapstructure:"min_change_size"`
	IgnoreWhitespaceOnly bool     `mapstructure:"ignore_whitespace_only"`
	CommitTypeWeighting  bool     `mapstructure:"commit_type_weighting"`
	IgnoreReverts        bool     `mapstructure:"ignore_reverts"`
	IgnoreMerges         bool     `mapstructure:"ignore_merges"`
	FirstParent          bool     `mapstructure:"first_parent"`
	Since                string   `mapstructure:"since"`
	Until                string   `mapstructure:"until"`
	Limit                int      `mapstructure:"limit"`
	Workers              int      `mapstructure:"workers"`
	BlobCacheSize        string   `mapstructure:"blob_cache_size"`
	SkipVendor           bool     `mapstructure:"skip_vendor"`
	IgnoredFiles         []string `mapstructure:"ignored_files"`
	ExcludeDevelopers    []string `mapstructure:"exclude_developers"`
}

// WeightsConfig locates rating weight sources.
type WeightsConfig struct {
	File      string         `mapstructure:"file"`
	Overrides map[string]any `mapstructure:"overrides"`
}

// OutputConfig selects the report writer.
type OutputConfig struct {
	Format  string `mapstructure:"format"`
	Path    string `mapstructure:"path"`
	NoColor bool   `mapstructure:"no_color"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
	File  string `mapstructure:"file"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
	OTLPHeaders  string `mapstructure:"otlp_headers"`
	MetricsFile  string `mapstructure:"metrics_file"`
}

// Loader accumulates flag bindings before reading the configuration.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader with defaults and environment overrides applied.
func NewLoader() *Loader {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// BindFlag makes a command-line flag override the given key when set.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return nil
	}

	if err := l.v.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("bind flag %s: %w", flag.Name, err)
	}

	return nil
}

// Set forces a value, taking precedence over every other source.
func (l *Loader) Set(key string, value any) {
	l.v.Set(key, value)
}

// Load reads configPath, or .devrank.yaml from the working directory when
// configPath is empty, and validates the result.
func (l *Loader) Load(configPath string) (*Config, error) {
	if configPath != "" {
		l.v.SetConfigFile(configPath)
	} else {
		l.v.SetConfigName(".devrank")
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
	}

	readErr := l.v.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var cfg Config

	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadConfig loads configuration without flag bindings.
func LoadConfig(configPath string) (*Config, error) {
	return NewLoader().Load(configPath)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("analysis.min_change_size", DefaultMinChangeSize)
	v.SetDefault("analysis.ignore_whitespace_only", DefaultIgnoreWhitespaceOnly)
	v.SetDefault("analysis.commit_type_weighting", DefaultCommitTypeWeighting)
	v.SetDefault("analysis.ignore_reverts", false)
	v.SetDefault("analysis.ignore_merges", false)
	v.SetDefault("analysis.first_parent", false)
	v.SetDefault("analysis.since", "")
	v.SetDefault("analysis.until", "")
	v.SetDefault("analysis.limit", 0)
	v.SetDefault("analysis.workers", DefaultWorkers)
	v.SetDefault("analysis.blob_cache_size", DefaultBlobCacheSize)
	v.SetDefault("analysis.skip_vendor", false)
	v.SetDefault("analysis.ignored_files", DefaultIgnoredFiles())
	v.SetDefault("analysis.exclude_developers", []string{})

	v.SetDefault("weights.file", "")
	v.SetDefault("weights.overrides", map[string]any{})

	v.SetDefault("output.format", DefaultOutputFormat)
	v.SetDefault("output.path", "")
	v.SetDefault("output.no_color", false)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.json", false)
	v.SetDefault("logging.file", "")

	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.otlp_insecure", false)
	v.SetDefault("telemetry.otlp_headers", "")
	v.SetDefault("telemetry.metrics_file", "")
}

func validateConfig(cfg *Config) error {
	a := cfg.Analysis

	if a.MinChangeSize < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMinChange, a.MinChangeSize)
	}

	if a.Workers <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, a.Workers)
	}

	if a.Limit < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLimit, a.Limit)
	}

	if _, err := a.BlobCacheBytes(); err != nil {
		return err
	}

	if _, _, err := a.Window(); err != nil {
		return err
	}

	if !slices.Contains(Formats, cfg.Output.Format) {
		return fmt.Errorf("%w: %q (want one of %s)", ErrInvalidFormat, cfg.Output.Format, strings.Join(Formats, ", "))
	}

	if !slices.Contains(LogLevels, strings.ToLower(cfg.Logging.Level)) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, cfg.Logging.Level)
	}

	return nil
}

// BlobCacheBytes parses the blob cache size, such as "64MB".
func (a AnalysisConfig) BlobCacheBytes() (int64, error) {
	if a.BlobCacheSize == "" {
		return 0, nil
	}

	n, err := humanize.ParseBytes(a.BlobCacheSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidCacheSize, err)
	}

	if n > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidCacheSize, a.BlobCacheSize)
	}

	return int64(n), nil
}

// Window parses since and until. Both accept YYYY-MM-DD or RFC 3339; a
// date-only until covers the whole day.
func (a AnalysisConfig) Window() (since, until *time.Time, err error) {
	since, err = parseBound(a.Since, false)
	if err != nil {
		return nil, nil, err
	}

	until, err = parseBound(a.Until, true)
	if err != nil {
		return nil, nil, err
	}

	if since != nil && until != nil && since.After(*until) {
		return nil, nil, fmt.Errorf("%w: since %s is after until %s", ErrInvalidDateRange, a.Since, a.Until)
	}

	return since, until, nil
}

func parseBound(value string, endOfDay bool) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}

	t, err := time.ParseInLocation(DateLayout, value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not YYYY-MM-DD", ErrInvalidDateRange, value)
	}

	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}

	return &t, nil
}
