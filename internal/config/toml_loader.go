package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// ConfigFileName is the dedicated configuration file.
const ConfigFileName = ".pqhint.toml"

// PqhintTomlConfig represents the structure of .pqhint.toml
type PqhintTomlConfig struct {
	PQGram      TomlPQGram      `toml:"pqgram"`
	Selection   TomlSelection   `toml:"selection"`
	Recommend   TomlRecommend   `toml:"recommend"`
	Input       TomlInput       `toml:"input"`
	Output      TomlOutput      `toml:"output"`
	Performance TomlPerformance `toml:"performance"`
	Logging     TomlLogging     `toml:"logging"`
}

type TomlPQGram struct {
	P       int      `toml:"p"`
	Q       int      `toml:"q"`
	Seed    *uint64  `toml:"seed"` // pointer to detect unset
	Markers []string `toml:"markers"`
}

type TomlSelection struct {
	MinPercentage *float64 `toml:"min_percentage"` // pointer to detect unset
	Individual    *bool    `toml:"individual"`     // pointer to detect unset
}

type TomlRecommend struct {
	IntermediateGroups string `toml:"intermediate_groups"`
}

type TomlInput struct {
	IncludePatterns []string `toml:"include_patterns"`
	ExcludePatterns []string `toml:"exclude_patterns"`
}

type TomlOutput struct {
	Format    string `toml:"format"`
	Directory string `toml:"directory"`
}

type TomlPerformance struct {
	MaxGoroutines  int  `toml:"max_goroutines"`
	TimeoutSeconds *int `toml:"timeout_seconds"` // pointer to detect unset
}

type TomlLogging struct {
	Level string `toml:"level"`
}

// pyprojectToml is the subset of pyproject.toml we read.
type pyprojectToml struct {
	Tool struct {
		Pqhint PqhintTomlConfig `toml:"pqhint"`
	} `toml:"tool"`
}

// TomlConfigLoader handles TOML-only configuration loading
type TomlConfigLoader struct{}

// NewTomlConfigLoader creates a new TOML configuration loader
func NewTomlConfigLoader() *TomlConfigLoader {
	return &TomlConfigLoader{}
}

// LoadConfig loads configuration with this priority:
// 1. .pqhint.toml (dedicated config file)
// 2. pyproject.toml (with [tool.pqhint] section)
// 3. defaults
func (l *TomlConfigLoader) LoadConfig(startDir string) (*Config, error) {
	if path, err := findUpwards(startDir, ConfigFileName); err == nil {
		return l.LoadFile(path)
	}

	if path, err := findUpwards(startDir, "pyproject.toml"); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var pyproject pyprojectToml
		if err := toml.Unmarshal(data, &pyproject); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return mergeToml(DefaultConfig(), &pyproject.Tool.Pqhint)
	}

	return DefaultConfig(), nil
}

// LoadFile reads one .pqhint.toml file and merges it into the defaults.
func (l *TomlConfigLoader) LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file PqhintTomlConfig
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return mergeToml(DefaultConfig(), &file)
}

// FindConfigFile returns the nearest .pqhint.toml above startDir.
func (l *TomlConfigLoader) FindConfigFile(startDir string) (string, error) {
	return findUpwards(startDir, ConfigFileName)
}

// findUpwards walks up the directory tree looking for name.
func findUpwards(startDir, name string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		dir = startDir
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		configPath := filepath.Join(dir, name)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", os.ErrNotExist
}

// mergeToml copies set values over the defaults and validates the result.
func mergeToml(defaults *Config, file *PqhintTomlConfig) (*Config, error) {
	if file.PQGram.P > 0 {
		defaults.PQGram.P = file.PQGram.P
	}
	if file.PQGram.Q > 0 {
		defaults.PQGram.Q = file.PQGram.Q
	}
	if file.PQGram.Seed != nil {
		defaults.PQGram.Seed = *file.PQGram.Seed
	}
	if file.PQGram.Markers != nil {
		defaults.PQGram.Markers = file.PQGram.Markers
	}

	if file.Selection.MinPercentage != nil {
		defaults.Selection.MinPercentage = *file.Selection.MinPercentage
	}
	if file.Selection.Individual != nil {
		defaults.Selection.Individual = *file.Selection.Individual
	}

	if file.Recommend.IntermediateGroups != "" {
		defaults.Recommend.IntermediateGroups = file.Recommend.IntermediateGroups
	}

	if len(file.Input.IncludePatterns) > 0 {
		defaults.Input.IncludePatterns = file.Input.IncludePatterns
	}
	if len(file.Input.ExcludePatterns) > 0 {
		defaults.Input.ExcludePatterns = file.Input.ExcludePatterns
	}

	if file.Output.Format != "" {
		defaults.Output.Format = file.Output.Format
	}
	if file.Output.Directory != "" {
		defaults.Output.Directory = file.Output.Directory
	}

	if file.Performance.MaxGoroutines > 0 {
		defaults.Performance.MaxGoroutines = file.Performance.MaxGoroutines
	}
	if file.Performance.TimeoutSeconds != nil {
		defaults.Performance.TimeoutSeconds = *file.Performance.TimeoutSeconds
	}

	if file.Logging.Level != "" {
		defaults.Logging.Level = file.Logging.Level
	}

	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return defaults, nil
}
