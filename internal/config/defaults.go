package config

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			PerPage: 100,
		},
		Report: ReportConfig{
			Timezone:  "America/New_York",
			OutputDir: ".",
		},
	}
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	result := &Config{}
	result.API = mergeAPIConfig(loaded.API, defaults.API)
	result.Report = mergeReportConfig(loaded.Report, defaults.Report)
	return result
}

func mergeAPIConfig(loaded, defaults APIConfig) APIConfig {
	result := APIConfig{}

	if loaded.BaseURL != "" {
		result.BaseURL = loaded.BaseURL
	} else {
		result.BaseURL = defaults.BaseURL
	}

	if loaded.PerPage != 0 {
		result.PerPage = loaded.PerPage
	} else {
		result.PerPage = defaults.PerPage
	}

	return result
}

func mergeReportConfig(loaded, defaults ReportConfig) ReportConfig {
	result := ReportConfig{}

	if loaded.Timezone != "" {
		result.Timezone = loaded.Timezone
	} else {
		result.Timezone = defaults.Timezone
	}

	if loaded.OutputDir != "" {
		result.OutputDir = loaded.OutputDir
	} else {
		result.OutputDir = defaults.OutputDir
	}

	return result
}
