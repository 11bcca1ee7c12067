package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/pqhint/internal/constants"
	"github.com/ludo-technologies/pqhint/internal/pqgram"
	"github.com/spf13/viper"
)

// Config represents the main configuration structure
type Config struct {
	// PQGram holds the fingerprint shape and tie-break seed
	PQGram PQGramConfig `mapstructure:"pqgram" yaml:"pqgram" toml:"pqgram"`

	// Selection holds reference-project selection settings
	Selection SelectionConfig `mapstructure:"selection" yaml:"selection" toml:"selection"`

	// Recommend holds synthesis settings
	Recommend RecommendConfig `mapstructure:"recommend" yaml:"recommend" toml:"recommend"`

	// Input holds file discovery settings
	Input InputConfig `mapstructure:"input" yaml:"input" toml:"input"`

	// Output holds report settings
	Output OutputConfig `mapstructure:"output" yaml:"output" toml:"output"`

	// Performance holds concurrency limits
	Performance PerformanceConfig `mapstructure:"performance" yaml:"performance" toml:"performance"`

	// Logging holds the log level
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" toml:"logging"`
}

// PQGramConfig configures profile building.
type PQGramConfig struct {
	// P is the ancestor window length
	P int `mapstructure:"p" yaml:"p" toml:"p"`

	// Q is the sibling window length
	Q int `mapstructure:"q" yaml:"q" toml:"q"`

	// Seed fixes tie-breaking; 0 picks a random seed per run
	Seed uint64 `mapstructure:"seed" yaml:"seed" toml:"seed"`

	// Markers are tag fragments excluded from edits
	Markers []string `mapstructure:"markers" yaml:"markers" toml:"markers"`
}

// SelectionConfig configures which reference projects are compared.
type SelectionConfig struct {
	// MinPercentage is the share of passed tests a reference needs
	MinPercentage float64 `mapstructure:"min_percentage" yaml:"min_percentage" toml:"min_percentage"`

	// Individual selects references passing a strict superset of the source's tests
	Individual bool `mapstructure:"individual" yaml:"individual" toml:"individual"`
}

// RecommendConfig configures recommendation synthesis.
type RecommendConfig struct {
	// IntermediateGroups is best_effort or strict
	IntermediateGroups string `mapstructure:"intermediate_groups" yaml:"intermediate_groups" toml:"intermediate_groups"`
}

// InputConfig configures project discovery.
type InputConfig struct {
	IncludePatterns []string `mapstructure:"include_patterns" yaml:"include_patterns" toml:"include_patterns"`
	ExcludePatterns []string `mapstructure:"exclude_patterns" yaml:"exclude_patterns" toml:"exclude_patterns"`
}

// OutputConfig configures reports.
type OutputConfig struct {
	// Format is csv, json, yaml or text
	Format string `mapstructure:"format" yaml:"format" toml:"format"`

	// Directory receives reports written without an explicit path
	Directory string `mapstructure:"directory" yaml:"directory" toml:"directory"`
}

// PerformanceConfig limits concurrency.
type PerformanceConfig struct {
	MaxGoroutines  int `mapstructure:"max_goroutines" yaml:"max_goroutines" toml:"max_goroutines"`
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level" toml:"level"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		PQGram: PQGramConfig{
			P:       constants.DefaultP,
			Q:       constants.DefaultQ,
			Seed:    0,
			Markers: append([]string(nil), constants.DefaultExcludedMarkers...),
		},
		Selection: SelectionConfig{
			MinPercentage: constants.DefaultMinPercentage,
			Individual:    false,
		},
		Recommend: RecommendConfig{
			IntermediateGroups: constants.IntermediateBestEffort,
		},
		Input: InputConfig{
			IncludePatterns: []string{"*.sb3", "*.json", "*.yaml", "*.yml", "*.py"},
			ExcludePatterns: []string{},
		},
		Output: OutputConfig{
			Format:    "csv",
			Directory: "",
		},
		Performance: PerformanceConfig{
			MaxGoroutines:  4,
			TimeoutSeconds: 300,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Engine converts the pqgram section for the core engine.
func (c PQGramConfig) Engine() pqgram.Config {
	return pqgram.Config{
		P:               c.P,
		Q:               c.Q,
		ExcludedMarkers: append([]string(nil), c.Markers...),
	}
}

// LoadConfig reads an explicit configuration file (toml, yaml or json).
// An empty path returns the defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if configPath == "" {
		return config, nil
	}

	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configPath, err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	if ext := strings.TrimPrefix(filepath.Ext(configPath), "."); ext == "" {
		v.SetConfigType("toml")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks all sections.
func (c *Config) Validate() error {
	if err := c.PQGram.Engine().Validate(); err != nil {
		return fmt.Errorf("pqgram: %w", err)
	}

	if c.Selection.MinPercentage < 0 || c.Selection.MinPercentage > constants.MaxPercentage {
		return fmt.Errorf("selection.min_percentage must be between 0 and %.0f, got %.2f",
			constants.MaxPercentage, c.Selection.MinPercentage)
	}

	switch c.Recommend.IntermediateGroups {
	case constants.IntermediateBestEffort, constants.IntermediateStrict:
	default:
		return fmt.Errorf("invalid recommend.intermediate_groups '%s', must be one of: %s, %s",
			c.Recommend.IntermediateGroups, constants.IntermediateBestEffort, constants.IntermediateStrict)
	}

	validFormats := map[string]bool{
		"csv":  true,
		"json": true,
		"yaml": true,
		"text": true,
	}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format '%s', must be one of: csv, json, yaml, text", c.Output.Format)
	}

	if len(c.Input.IncludePatterns) == 0 {
		return fmt.Errorf("input.include_patterns cannot be empty")
	}

	if c.Performance.MaxGoroutines < 1 {
		return fmt.Errorf("performance.max_goroutines must be >= 1, got %d", c.Performance.MaxGoroutines)
	}
	if c.Performance.TimeoutSeconds < 0 {
		return fmt.Errorf("performance.timeout_seconds must be >= 0, got %d", c.Performance.TimeoutSeconds)
	}

	return nil
}
