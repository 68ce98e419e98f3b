package config

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: "sqlite",
			Path:    "smx.db",
		},
		Analysis: AnalysisConfig{
			ChoiceFloor:        ptr(1),
			MaxRosterSize:      0,
			Prestige:           ptr(true),
			PrestigeDamping:    0.85,
			PrestigeIterations: 100,
		},
		Output: OutputConfig{
			Format:    "yaml",
			Precision: ptr(2),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	result := &Config{}

	result.Storage = mergeStorageConfig(loaded.Storage, defaults.Storage)
	result.Analysis = mergeAnalysisConfig(loaded.Analysis, defaults.Analysis)
	result.Output = mergeOutputConfig(loaded.Output, defaults.Output)
	result.Logging = mergeLoggingConfig(loaded.Logging, defaults.Logging)

	return result
}

func mergeStorageConfig(loaded, defaults StorageConfig) StorageConfig {
	result := StorageConfig{}

	// Backend: use loaded if non-empty
	if loaded.Backend != "" {
		result.Backend = loaded.Backend
	} else {
		result.Backend = defaults.Backend
	}

	if loaded.Path != "" {
		result.Path = loaded.Path
	} else if loaded.Backend == "dolt" && defaults.Backend != "dolt" {
		// a dolt repository is a directory, not a file
		result.Path = "smx"
	} else {
		result.Path = defaults.Path
	}

	return result
}

func mergeAnalysisConfig(loaded, defaults AnalysisConfig) AnalysisConfig {
	result := AnalysisConfig{}

	// ChoiceFloor: explicit zero is kept
	if loaded.ChoiceFloor != nil {
		result.ChoiceFloor = ptr(*loaded.ChoiceFloor)
	} else if defaults.ChoiceFloor != nil {
		result.ChoiceFloor = ptr(*defaults.ChoiceFloor)
	}

	// MaxRosterSize: zero means unlimited, which is also the default
	if loaded.MaxRosterSize != 0 {
		result.MaxRosterSize = loaded.MaxRosterSize
	} else {
		result.MaxRosterSize = defaults.MaxRosterSize
	}

	if loaded.Prestige != nil {
		result.Prestige = ptr(*loaded.Prestige)
	} else if defaults.Prestige != nil {
		result.Prestige = ptr(*defaults.Prestige)
	}

	// PrestigeDamping: use loaded if non-zero
	if loaded.PrestigeDamping != 0 {
		result.PrestigeDamping = loaded.PrestigeDamping
	} else {
		result.PrestigeDamping = defaults.PrestigeDamping
	}

	// PrestigeIterations: use loaded if non-zero
	if loaded.PrestigeIterations != 0 {
		result.PrestigeIterations = loaded.PrestigeIterations
	} else {
		result.PrestigeIterations = defaults.PrestigeIterations
	}

	return result
}

func mergeOutputConfig(loaded, defaults OutputConfig) OutputConfig {
	result := OutputConfig{}

	if loaded.Format != "" {
		result.Format = loaded.Format
	} else {
		result.Format = defaults.Format
	}

	if loaded.Precision != nil {
		result.Precision = ptr(*loaded.Precision)
	} else if defaults.Precision != nil {
		result.Precision = ptr(*defaults.Precision)
	}

	return result
}

func mergeLoggingConfig(loaded, defaults LoggingConfig) LoggingConfig {
	result := LoggingConfig{}

	if loaded.Level != "" {
		result.Level = loaded.Level
	} else {
		result.Level = defaults.Level
	}

	if loaded.Format != "" {
		result.Format = loaded.Format
	} else {
		result.Format = defaults.Format
	}

	return result
}

// ValidBackends lists the supported storage backends
var ValidBackends = []string{"sqlite", "dolt"}

// ValidFormats lists the valid values for output.format
var ValidFormats = []string{"yaml", "json", "table", "markdown"}

// ValidLogLevels lists the valid values for logging.level
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// ValidLogFormats lists the valid values for logging.format
var ValidLogFormats = []string{"console", "json"}

func contains(values []string, v string) bool {
	for _, valid := range values {
		if v == valid {
			return true
		}
	}
	return false
}

func ptr[T any](v T) *T {
	return &v
}
