package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvAPIURL overrides the configured API base URL when set.
const EnvAPIURL = "CREWCALL_API_URL"

// DefaultAPIBaseURL is used when neither a config file nor the
// environment provides a base URL. A bare path works when the client
// runs behind the same origin as the service.
const DefaultAPIBaseURL = "/api"

// Config carries everything the client needs to come up.
type Config struct {
	// APIBaseURL is the root the transport prefixes every endpoint with.
	// Trailing slashes are stripped on load.
	APIBaseURL string `yaml:"api_base_url"`

	// StorePath locates the credential store database. Defaults to
	// credentials.db under the user's config directory.
	StorePath string `yaml:"store_path"`

	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string `yaml:"log_level"`
}

// Load builds a Config from the file at path (skipped when path is
// empty or the file doesn't exist), then applies environment overrides
// and defaults. Unknown fields in the file are rejected to catch typos.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Optional file.
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			decoder := yaml.NewDecoder(bytes.NewReader(data))
			decoder.KnownFields(true)
			if err := decoder.Decode(cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if env := os.Getenv(EnvAPIURL); env != "" {
		cfg.APIBaseURL = env
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	if cfg.StorePath == "" {
		storePath, err := defaultStorePath()
		if err != nil {
			return nil, err
		}
		cfg.StorePath = storePath
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}

	return cfg, nil
}

func defaultStorePath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config dir: %w", err)
	}
	return filepath.Join(base, "crewcall", "credentials.db"), nil
}
