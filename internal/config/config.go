// Package config loads the smx configuration from .smx/config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the smx configuration file
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the smx configuration directory
const ConfigDirName = ".smx"

// Config holds all smx configuration
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// StorageConfig selects where research data lives
type StorageConfig struct {
	Backend string `yaml:"backend"`
	// Path is relative to the .smx directory unless absolute
	Path string `yaml:"path"`
}

// AnalysisConfig holds the index and report options. Pointer fields
// distinguish an explicit zero from an unset value.
type AnalysisConfig struct {
	ChoiceFloor        *int    `yaml:"choice_floor"`
	MaxRosterSize      int     `yaml:"max_roster_size"`
	Prestige           *bool   `yaml:"prestige"`
	PrestigeDamping    float64 `yaml:"prestige_damping"`
	PrestigeIterations int     `yaml:"prestige_iterations"`
}

// Floor returns the choice floor, 1 when unset.
func (a AnalysisConfig) Floor() int {
	if a.ChoiceFloor == nil {
		return 1
	}
	return *a.ChoiceFloor
}

// PrestigeEnabled reports whether prestige is computed, true when unset.
func (a AnalysisConfig) PrestigeEnabled() bool {
	if a.Prestige == nil {
		return true
	}
	return *a.Prestige
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	Format    string `yaml:"format"`
	Precision *int   `yaml:"precision"`
}

// Digits returns the rounding precision, 2 when unset.
func (o OutputConfig) Digits() int {
	if o.Precision == nil {
		return 2
	}
	return *o.Precision
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .smx/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		// No config dir found, return defaults
		return DefaultConfig(), nil
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	return LoadFromPath(configPath)
}

// LoadFromPath reads config from a specific path.
// Merges loaded config with defaults and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())

	if err := Validate(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// FindConfigDir locates the .smx directory by walking up from startDir.
// Returns the path to the .smx directory if found.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .smx directory if it doesn't exist.
// Returns the path to the .smx directory.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)

	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return configDir, nil
}

// StoragePath resolves the storage path against configDir.
func (c *Config) StoragePath(configDir string) string {
	if filepath.IsAbs(c.Storage.Path) {
		return c.Storage.Path
	}
	return filepath.Join(configDir, c.Storage.Path)
}

// Validate checks that config values are valid.
// Returns an error if validation fails.
func Validate(cfg *Config) error {
	if !contains(ValidBackends, cfg.Storage.Backend) {
		return fmt.Errorf("%w: storage.backend must be one of %v, got %q",
			ErrInvalidConfig, ValidBackends, cfg.Storage.Backend)
	}

	if cfg.Storage.Path == "" {
		return fmt.Errorf("%w: storage.path must not be empty", ErrInvalidConfig)
	}

	if cfg.Analysis.Floor() < 0 {
		return fmt.Errorf("%w: choice_floor must be non-negative, got %d",
			ErrInvalidConfig, cfg.Analysis.Floor())
	}

	if cfg.Analysis.MaxRosterSize < 0 {
		return fmt.Errorf("%w: max_roster_size must be non-negative, got %d",
			ErrInvalidConfig, cfg.Analysis.MaxRosterSize)
	}

	// Validate PageRank damping (should be between 0 and 1)
	if cfg.Analysis.PrestigeDamping < 0 || cfg.Analysis.PrestigeDamping > 1 {
		return fmt.Errorf("%w: prestige_damping must be between 0 and 1, got %f",
			ErrInvalidConfig, cfg.Analysis.PrestigeDamping)
	}

	if cfg.Analysis.PrestigeIterations <= 0 {
		return fmt.Errorf("%w: prestige_iterations must be positive, got %d",
			ErrInvalidConfig, cfg.Analysis.PrestigeIterations)
	}

	if !contains(ValidFormats, cfg.Output.Format) {
		return fmt.Errorf("%w: output.format must be one of %v, got %q",
			ErrInvalidConfig, ValidFormats, cfg.Output.Format)
	}

	if p := cfg.Output.Digits(); p < -1 || p > 15 {
		return fmt.Errorf("%w: precision must be between -1 and 15, got %d",
			ErrInvalidConfig, p)
	}

	if !contains(ValidLogLevels, cfg.Logging.Level) {
		return fmt.Errorf("%w: logging.level must be one of %v, got %q",
			ErrInvalidConfig, ValidLogLevels, cfg.Logging.Level)
	}

	if !contains(ValidLogFormats, cfg.Logging.Format) {
		return fmt.Errorf("%w: logging.format must be one of %v, got %q",
			ErrInvalidConfig, ValidLogFormats, cfg.Logging.Format)
	}

	return nil
}

// SaveDefault writes the default configuration to .smx/config.yaml in workDir.
// Creates the .smx directory if it doesn't exist.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)

	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	header := "# smx configuration\n# storage.path is relative to this directory\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}
