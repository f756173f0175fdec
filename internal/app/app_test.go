package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/config"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/market"
)

func testConfig(t *testing.T, dexURL, geckoURL string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "dexscreener:\n  base_url: " + dexURL + "\n" +
		"coingecko:\n  base_url: " + geckoURL + "\n" +
		"retry:\n  base_delay: 1\n  max_delay: 2\n" +
		"filters:\n  min_volume_24h: 0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	return cfg
}

func TestAppServesPrimary(t *testing.T) {
	dex := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"pairs":[{"baseToken":{"address":"m1","symbol":"M"},"priceUsd":"1","volume":{"h24":5}}]}`))
	}))
	defer dex.Close()
	gecko := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"solana":{"usd":150}}`))
	}))
	defer gecko.Close()

	a, err := New(testConfig(t, dex.URL, gecko.URL), nil)
	require.NoError(t, err)

	res, err := a.Market.Trending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, market.SourcePrimary, res.Source)
	require.Len(t, res.Tokens, 1)

	prices, err := a.Market.Prices(context.Background(), []string{"solana"})
	require.NoError(t, err)
	assert.Equal(t, 150.0, prices.Quotes["solana"].USD)

	assert.NotNil(t, a.Server().Handler())
}

func TestAppLoadsPortfolio(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1", "http://127.0.0.1:1")
	cfg.PortfolioFile = filepath.Join(t.TempDir(), "holdings.json")
	require.NoError(t, os.WriteFile(cfg.PortfolioFile, []byte(`[{"id":"solana","amount":"1"}]`), 0o600))

	a, err := New(cfg, nil)
	require.NoError(t, err)
	assert.Len(t, a.Holdings, 1)

	cfg.PortfolioFile = filepath.Join(t.TempDir(), "missing.json")
	_, err = New(cfg, nil)
	assert.Error(t, err)
}
