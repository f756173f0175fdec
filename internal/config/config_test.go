package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "https://api.dexscreener.com", cfg.DexScreener.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.DexScreener.RequestTimeout())
	assert.Equal(t, "solana", cfg.DexScreener.Query)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)

	base, max := cfg.Retry.Delays()
	assert.Equal(t, time.Second, base)
	assert.Equal(t, 10*time.Second, max)
	assert.Equal(t, 15*time.Second, cfg.Cache.TTL())
	assert.Equal(t, 6, cfg.Filters.Limit)
	assert.Equal(t, 10000.0, cfg.Filters.MinVolume24h)
	assert.Equal(t, 65000.0, cfg.AssumedBTCPrice)
	assert.True(t, cfg.GracefulDegradation)
	assert.Equal(t, []string{"bitcoin", "ethereum", "solana"}, cfg.WatchIDs)
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
dexscreener:
  base_url: http://localhost:9000
  timeout: 1500
retry:
  max_attempts: 5
  base_delay: 200
  max_delay: 800
filters:
  limit: 10
graceful_degradation: false
watch_ids: [solana]
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000", cfg.DexScreener.BaseURL)
	assert.Equal(t, 1500*time.Millisecond, cfg.DexScreener.RequestTimeout())
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 10, cfg.Filters.Limit)
	assert.False(t, cfg.GracefulDegradation)
	assert.Equal(t, []string{"solana"}, cfg.WatchIDs)
	// Не заданное в файле берется из значений по умолчанию
	assert.Equal(t, "https://api.coingecko.com/api/v3", cfg.CoinGecko.BaseURL)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("DASHBOARD_RETRY_MAX_ATTEMPTS", "7")
	t.Setenv("DASHBOARD_ASSUMED_BTC_PRICE", "70000")
	t.Setenv("DASHBOARD_COINGECKO_BASE_URL", "http://127.0.0.1:1234")
	t.Setenv("DASHBOARD_WATCH_IDS", "bonk, jupiter")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Retry.MaxAttempts)
	assert.Equal(t, 70000.0, cfg.AssumedBTCPrice)
	assert.Equal(t, "http://127.0.0.1:1234", cfg.CoinGecko.BaseURL)
	assert.Equal(t, []string{"bonk", "jupiter"}, cfg.WatchIDs)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errText string
	}{
		{"bad scheme", "dexscreener:\n  base_url: ftp://example.com\n", "dexscreener.base_url"},
		{"zero attempts", "retry:\n  max_attempts: 0\n", "retry.max_attempts"},
		{"max below base", "retry:\n  base_delay: 500\n  max_delay: 100\n", "retry.max_delay"},
		{"zero cache", "cache:\n  duration: 0\n", "cache.duration"},
		{"zero limit", "filters:\n  limit: 0\n", "filters.limit"},
		{"negative btc", "assumed_btc_price: -1\n", "assumed_btc_price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, "config.yaml", tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{"https://api.coingecko.com/api/v3", false},
		{"http://127.0.0.1:8080", false},
		{"ftp://example.com", true},
		{"https://", true},
		{"api.dexscreener.com", true},
		{"http://[::1", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			// повторная проверка даёт тот же результат
			for range 2 {
				err := validateURL(tt.raw, "http")
				if tt.wantErr {
					assert.Error(t, err)
				} else {
					assert.NoError(t, err)
				}
			}
		})
	}
}

func TestLoadConfigCoinGeckoBaseURLValidated(t *testing.T) {
	path := writeConfig(t, "config.yaml", "coingecko:\n  base_url: ftp://example.com\n")
	for range 2 {
		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "coingecko.base_url")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
