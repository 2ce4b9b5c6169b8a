package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the lateness configuration file
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the lateness configuration directory
const ConfigDirName = ".lateness"

// Config holds all lateness tool configuration. The OAuth token is
// deliberately absent: it only ever comes from the environment, never
// from a file that might get committed.
type Config struct {
	API    APIConfig    `yaml:"api"`
	Report ReportConfig `yaml:"report"`
}

// APIConfig holds configuration for the Canvas API client
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	PerPage int    `yaml:"per_page"`
}

// ReportConfig holds configuration for report output
type ReportConfig struct {
	// Timezone is the IANA zone used for display timestamps.
	Timezone string `yaml:"timezone"`

	// OutputDir is where report files are written.
	OutputDir string `yaml:"output_dir"`
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .lateness/config.yaml, falling back to
// defaults. It searches for the config directory starting from workDir
// and walking up the directory tree. If no config is found, returns
// defaults.
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

// FindConfigDir locates the .lateness directory by walking up from
// startDir. Returns the path to the .lateness directory if found.
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
			// Reached root, config not found
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .lateness directory if it doesn't exist.
// Returns the path to the .lateness directory.
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

// Validate checks that config values are valid.
// Returns an error if validation fails.
func Validate(cfg *Config) error {
	if cfg.API.BaseURL != "" {
		u, err := url.Parse(cfg.API.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: base_url must be an absolute URL, got %q",
				ErrInvalidConfig, cfg.API.BaseURL)
		}
	}

	// Canvas caps page sizes at 100
	if cfg.API.PerPage <= 0 || cfg.API.PerPage > 100 {
		return fmt.Errorf("%w: per_page must be between 1 and 100, got %d",
			ErrInvalidConfig, cfg.API.PerPage)
	}

	if _, err := time.LoadLocation(cfg.Report.Timezone); err != nil {
		return fmt.Errorf("%w: timezone %q is not a valid IANA zone",
			ErrInvalidConfig, cfg.Report.Timezone)
	}

	if cfg.Report.OutputDir == "" {
		return fmt.Errorf("%w: output_dir must not be empty", ErrInvalidConfig)
	}

	return nil
}

// SaveDefault writes the default configuration to
// .lateness/config.yaml in workDir. Creates the .lateness directory if
// it doesn't exist.
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

	header := "# canvas-lateness-tool configuration\n# The OAuth token is read from the OAUTH_TOKEN environment variable\n# (or a .env file), never from this file.\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}

// Env holds values sourced from the process environment rather than
// config.yaml: the OAuth token and an optional base URL override.
type Env struct {
	Token   string
	BaseURL string
}

// LoadEnv reads credentials from the environment, first loading a .env
// file from the working directory if one exists. A missing .env file is
// not an error.
func LoadEnv() Env {
	_ = godotenv.Load()
	return Env{
		Token:   os.Getenv("OAUTH_TOKEN"),
		BaseURL: os.Getenv("CANVAS_API_URL"),
	}
}
