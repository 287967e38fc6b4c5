package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvAPIURL, "")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "/api", cfg.APIBaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "credentials.db", filepath.Base(cfg.StorePath))
	assert.Contains(t, cfg.StorePath, "crewcall")
}

func TestLoad_FromFile(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	path := writeConfig(t, `
api_base_url: https://crewcall.example.com/api/
store_path: /tmp/creds.db
log_level: debug
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "https://crewcall.example.com/api", cfg.APIBaseURL, "trailing slash stripped")
	assert.Equal(t, "/tmp/creds.db", cfg.StorePath)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv(EnvAPIURL, "https://staging.example.com")
	path := writeConfig(t, `api_base_url: https://crewcall.example.com/api`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.com", cfg.APIBaseURL)
}

func TestLoad_MissingFileIsOptional(t *testing.T) {
	t.Setenv(EnvAPIURL, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, "/api", cfg.APIBaseURL)
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	path := writeConfig(t, `api_base_urll: typo`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	path := writeConfig(t, `log_level: loud`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid log level "loud"`)
}
