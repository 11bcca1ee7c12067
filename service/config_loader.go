package service

import (
	"path/filepath"
	"time"

	"github.com/ludo-technologies/pqhint/domain"
	"github.com/ludo-technologies/pqhint/internal/config"
)

// ConfigurationLoaderImpl turns configuration files and command line flags
// into recommend requests. Flag values only win when the flag was set
// explicitly.
type ConfigurationLoaderImpl struct {
	flagTracker *config.FlagTracker
	tomlLoader  *config.TomlConfigLoader
}

// NewConfigurationLoader creates a loader. explicitFlags may be nil.
func NewConfigurationLoader(explicitFlags map[string]bool) *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{
		flagTracker: config.NewFlagTrackerWithFlags(explicitFlags),
		tomlLoader:  config.NewTomlConfigLoader(),
	}
}

// LoadConfig reads configPath when given, otherwise discovers .pqhint.toml
// or pyproject.toml upwards from startDir.
func (c *ConfigurationLoaderImpl) LoadConfig(configPath, startDir string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
	} else {
		if startDir == "" {
			startDir = "."
		}
		cfg, err = c.tomlLoader.LoadConfig(startDir)
	}
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, domain.NewConfigError("invalid configuration", err)
	}
	return cfg, nil
}

// RequestFromConfig converts a configuration into a request without paths.
func (c *ConfigurationLoaderImpl) RequestFromConfig(cfg *config.Config) *domain.RecommendRequest {
	return &domain.RecommendRequest{
		Recursive:          true,
		IncludePatterns:    cfg.Input.IncludePatterns,
		ExcludePatterns:    cfg.Input.ExcludePatterns,
		MinPercentage:      cfg.Selection.MinPercentage,
		Individual:         cfg.Selection.Individual,
		P:                  cfg.PQGram.P,
		Q:                  cfg.PQGram.Q,
		Seed:               cfg.PQGram.Seed,
		Markers:            cfg.PQGram.Markers,
		IntermediateGroups: cfg.Recommend.IntermediateGroups,
		OutputFormat:       domain.OutputFormat(cfg.Output.Format),
		OutputPath:         cfg.Output.Directory,
		MaxGoroutines:      cfg.Performance.MaxGoroutines,
		Timeout:            time.Duration(cfg.Performance.TimeoutSeconds) * time.Second,
	}
}

// MergeConfig merges CLI flags with configuration file, respecting explicit flags
func (c *ConfigurationLoaderImpl) MergeConfig(base, override *domain.RecommendRequest) *domain.RecommendRequest {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	merged := *base

	// Inputs always come from the command line
	merged.SourcePaths = override.SourcePaths
	merged.TargetDir = override.TargetDir
	merged.ResultsPath = override.ResultsPath
	merged.ConfigPath = override.ConfigPath

	merged.OutputPath = resolveOutputPath(base.OutputPath, override.OutputPath)
	if override.OutputWriter != nil {
		merged.OutputWriter = override.OutputWriter
	}
	if c.flagTracker.WasSet("format") {
		merged.OutputFormat = override.OutputFormat
	} else if format, ok := NewOutputFormatResolver().FromPath(merged.OutputPath); ok {
		merged.OutputFormat = format
	}

	merged.MinPercentage = c.flagTracker.MergeFloat64(merged.MinPercentage, override.MinPercentage, "min-percentage")
	merged.Individual = c.flagTracker.MergeBool(merged.Individual, override.Individual, "individual")
	merged.P = c.flagTracker.MergeInt(merged.P, override.P, "ancestors")
	merged.Q = c.flagTracker.MergeInt(merged.Q, override.Q, "siblings")
	merged.Seed = c.flagTracker.MergeUint64(merged.Seed, override.Seed, "seed")
	merged.IntermediateGroups = c.flagTracker.MergeString(merged.IntermediateGroups, override.IntermediateGroups, "intermediate-groups")
	merged.MaxGoroutines = c.flagTracker.MergeInt(merged.MaxGoroutines, override.MaxGoroutines, "max-goroutines")
	merged.Recursive = c.flagTracker.MergeBool(merged.Recursive, override.Recursive, "recursive")
	merged.IncludePatterns = c.flagTracker.MergeStringSlice(merged.IncludePatterns, override.IncludePatterns, "include")
	merged.ExcludePatterns = c.flagTracker.MergeStringSlice(merged.ExcludePatterns, override.ExcludePatterns, "exclude")

	return &merged
}

// LoadRequest loads the configuration for override and merges the flags.
func (c *ConfigurationLoaderImpl) LoadRequest(override *domain.RecommendRequest) (*domain.RecommendRequest, error) {
	startDir := ""
	if len(override.SourcePaths) > 0 {
		startDir = override.SourcePaths[0]
	}
	cfg, err := c.LoadConfig(override.ConfigPath, startDir)
	if err != nil {
		return nil, err
	}
	return c.MergeConfig(c.RequestFromConfig(cfg), override), nil
}

// resolveOutputPath places bare file names in the configured directory.
func resolveOutputPath(directory, output string) string {
	if output == "" || directory == "" || filepath.IsAbs(output) || filepath.Dir(output) != "." {
		return output
	}
	return filepath.Join(directory, output)
}
