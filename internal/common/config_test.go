package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Clients.AlphaVantage.BaseURL != "https://www.alphavantage.co/query" {
		t.Errorf("AlphaVantage.BaseURL default = %q", cfg.Clients.AlphaVantage.BaseURL)
	}
	if cfg.Clients.AlphaVantage.RateLimit != 5 {
		t.Errorf("AlphaVantage.RateLimit default = %d, want 5", cfg.Clients.AlphaVantage.RateLimit)
	}
	if cfg.Clients.Gemini.Model != "gemini-2.0-flash" {
		t.Errorf("Gemini.Model default = %q", cfg.Clients.Gemini.Model)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level default = %q, want info", cfg.Logging.Level)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ALPHA_VANTAGE_API_KEY", "av-test-key")
	t.Setenv("GEMINI_API_KEY", "gemini-test-key")
	t.Setenv("TICKERLENS_LOG_LEVEL", "debug")
	t.Setenv("TICKERLENS_ENV", "production")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Clients.AlphaVantage.APIKey != "av-test-key" {
		t.Errorf("AlphaVantage.APIKey = %q after env override", cfg.Clients.AlphaVantage.APIKey)
	}
	if cfg.Clients.Gemini.APIKey != "gemini-test-key" {
		t.Errorf("Gemini.APIKey = %q after env override", cfg.Clients.Gemini.APIKey)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q after env override", cfg.Logging.Level)
	}
	if !cfg.IsProduction() {
		t.Error("expected IsProduction after TICKERLENS_ENV=production")
	}
}

func TestConfig_GoogleAPIKeyFallback(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "google-key")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Clients.Gemini.APIKey != "google-key" {
		t.Errorf("Gemini.APIKey = %q, want google-key", cfg.Clients.Gemini.APIKey)
	}
}

func TestLoadConfig_File(t *testing.T) {
	// Neutralize ambient credentials so file values win.
	t.Setenv("ALPHA_VANTAGE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("TICKERLENS_LOG_LEVEL", "")
	t.Setenv("TICKERLENS_ENV", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "tickerlens.toml")

	content := `
environment = "staging"

[clients.alphavantage]
api_key = "file-av-key"
rate_limit = 2
timeout = "10s"

[clients.gemini]
model = "gemini-2.5-pro"

[logging]
level = "warn"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, "staging", cfg.Environment)
	require.Equal(t, "file-av-key", cfg.Clients.AlphaVantage.APIKey)
	require.Equal(t, 2, cfg.Clients.AlphaVantage.RateLimit)
	require.Equal(t, "gemini-2.5-pro", cfg.Clients.Gemini.Model)
	require.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadConfig_MissingFileSkipped(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	require.Equal(t, "development", cfg.Environment)
}

func TestAlphaVantageConfig_GetTimeout(t *testing.T) {
	cfg := AlphaVantageConfig{Timeout: "15s"}
	if got := cfg.GetTimeout().Seconds(); got != 15 {
		t.Errorf("GetTimeout() = %vs, want 15s", got)
	}

	cfg.Timeout = "garbage"
	if got := cfg.GetTimeout().Seconds(); got != 30 {
		t.Errorf("GetTimeout() fallback = %vs, want 30s", got)
	}
}
