package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://api.bcb.gov.br", cfg.Source.BaseURL)
	assert.Equal(t, "csv", cfg.Source.Format)
	assert.Equal(t, 30*time.Second, cfg.Source.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.RequestInterval())
	assert.Equal(t, 10, *cfg.Source.LookbackYears)
	assert.Equal(t, 2, cfg.Analysis.MinSamples)
	assert.True(t, cfg.Output.Charts)
	assert.Equal(t, ".", cfg.Output.ChartDir)
	assert.Len(t, cfg.Series, 5)
	assert.Equal(t, []int{11, 1178, 4189}, cfg.Series[1].Codes)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, `
source:
  format: json
  timeout: 45s
  lookback_years: 5
analysis:
  min_samples: 10
series:
  - name: Taxa SELIC Acumulada
    codes: [1178]
  - name: IPCA
    codes: [433]
    lookback_years: 0
output:
  charts: false
  color: never
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "json", cfg.Source.Format)
	assert.Equal(t, 45*time.Second, cfg.Source.Timeout)
	assert.Equal(t, 10, cfg.Analysis.MinSamples)
	assert.False(t, cfg.Output.Charts)
	require.Len(t, cfg.Series, 2)

	now := time.Date(2025, time.June, 15, 13, 0, 0, 0, time.UTC)
	reqs, err := cfg.Requests(now)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, "Taxa SELIC Acumulada", reqs[0].Name)
	assert.Equal(t, time.Date(2020, time.June, 15, 0, 0, 0, 0, time.UTC), reqs[0].Window.Start)
	assert.True(t, reqs[1].Window.IsAll())
}

func TestLoad_ZeroIntervalDisablesPacing(t *testing.T) {
	cfg, err := Load(writeConfig(t, "source:\n  interval: 0s\n"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.NotNil(t, cfg.Source.Interval)
	assert.Equal(t, time.Duration(0), cfg.RequestInterval())

	cfg, err = Load(writeConfig(t, "source:\n  interval: 2s\n"))
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.RequestInterval())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BCB_FORMAT", "json")
	t.Setenv("BCB_TIMEOUT", "60s")
	t.Setenv("MIN_SAMPLES", "10")
	t.Setenv("LOOKBACK_YEARS", "0")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(writeConfig(t, "source:\n  format: csv\n"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "json", cfg.Source.Format)
	assert.Equal(t, 60*time.Second, cfg.Source.Timeout)
	assert.Equal(t, 10, cfg.Analysis.MinSamples)
	assert.Equal(t, 0, *cfg.Source.LookbackYears)
	assert.True(t, cfg.TelegramEnabled())
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("MIN_SAMPLES", "ten")
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "series: [unterminated"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"timeout too long", func(c *Config) { c.Source.Timeout = 2 * time.Minute }},
		{"negative interval", func(c *Config) { d := -time.Second; c.Source.Interval = &d }},
		{"unknown format", func(c *Config) { c.Source.Format = "xml" }},
		{"min samples below two", func(c *Config) { c.Analysis.MinSamples = 1 }},
		{"no series", func(c *Config) { c.Series = nil }},
		{"series without codes", func(c *Config) { c.Series[0].Codes = nil }},
		{"negative code", func(c *Config) { c.Series[0].Codes = []int{-1} }},
		{"duplicate names", func(c *Config) { c.Series[1].Name = c.Series[0].Name }},
		{"bad color", func(c *Config) { c.Output.Color = "rainbow" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
