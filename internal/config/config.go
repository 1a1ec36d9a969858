// Package config loads the client configuration from a YAML file in the
// data directory, with environment and flag overrides applied by the
// caller.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds client settings persisted as YAML in the data directory.
type Config struct {
	ServerURL string `yaml:"server_url"`
	Theme     string `yaml:"theme,omitempty"`
	LogLevel  string `yaml:"log_level,omitempty"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		ServerURL: "http://localhost:8080",
		Theme:     "nord",
		LogLevel:  "info",
	}
}

// Path returns the config file path inside the given data directory.
func Path(dataDir string) string {
	return filepath.Join(dataDir, "config.yaml")
}

// Load reads the config file or returns defaults when it does not exist.
// The TASKDECK_SERVER environment variable overrides the server URL.
func Load(dataDir string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(Path(dataDir))
	switch {
	case os.IsNotExist(err):
		// First run; defaults apply.
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if v := os.Getenv("TASKDECK_SERVER"); v != "" {
		cfg.ServerURL = v
	}
	return cfg, nil
}

// Save writes the config file, creating the data directory if needed.
func (c *Config) Save(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(Path(dataDir), data, 0600)
}
