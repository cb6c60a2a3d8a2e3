// ABOUTME: Tests for configuration loading, env expansion, and validation
// ABOUTME: Covers defaults, file parsing, environment overrides, and invalid values

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes YAML content to a temp file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, DefaultTimeout, cfg.API.Timeout)
	assert.False(t, cfg.Offline)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.NotEmpty(t, cfg.State.Path)
}

func TestLoad_ParsesFullConfig(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: https://api.botino.example
  timeout: 5s
offline: true
state:
  path: /tmp/botino-test/state.db
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.botino.example", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.True(t, cfg.Offline)
	assert.Equal(t, "/tmp/botino-test/state.db", cfg.State.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_ExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("TEST_BOTINO_HOST", "api.internal.example")

	path := writeConfig(t, `
api:
  base_url: https://${TEST_BOTINO_HOST}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.internal.example", cfg.API.BaseURL)
}

func TestLoad_UnsetEnvVarExpandsEmpty(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: "${TEST_BOTINO_UNSET_LEVEL}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	// Empty after expansion falls back to the default.
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EnvOverridesWinOverFile(t *testing.T) {
	t.Setenv("BOTINO_API_URL", "http://override.example")
	t.Setenv("BOTINO_OFFLINE", "true")
	t.Setenv("BOTINO_STATE_PATH", "/tmp/botino-override.db")

	path := writeConfig(t, `
api:
  base_url: http://file.example
offline: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://override.example", cfg.API.BaseURL)
	assert.True(t, cfg.Offline)
	assert.Equal(t, "/tmp/botino-override.db", cfg.State.Path)
}

func TestLoad_InvalidTimeout(t *testing.T) {
	path := writeConfig(t, `
api:
  timeout: not-a-duration
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.timeout")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "api: [unclosed")

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "non-http base URL",
			mutate:  func(c *Config) { c.API.BaseURL = "ftp://example" },
			wantErr: "api.base_url",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: "logging.level",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				API:     APIConfig{BaseURL: "http://localhost:8000"},
				Logging: LoggingConfig{Level: "info", Format: "text"},
			}
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
