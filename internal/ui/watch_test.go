package ui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/market"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/token"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/utils/logger"
)

type stubSource struct {
	snap  market.Snapshot
	err   error
	calls int
}

func (s *stubSource) Snapshot(ctx context.Context, ids []string) (market.Snapshot, error) {
	s.calls++
	return s.snap, s.err
}

func liveSnapshot() market.Snapshot {
	return market.Snapshot{
		Trending: market.TrendingResult{
			Tokens: []token.CanonicalToken{{
				BaseToken: token.BaseToken{Address: "a", Name: "Alpha", Symbol: "ALP"},
				PriceUSD:  decimal.RequireFromString("1.2345"),
				Volume24h: decimal.NewFromInt(2500000),
			}},
			Source: market.SourcePrimary,
			Live:   true,
		},
		Prices: market.PriceResult{
			Quotes:  map[string]token.Quote{"solana": {USD: 150, USD24hChange: -1.5}},
			Missing: []string{"bonk"},
			Source:  market.SourcePrimary,
			Live:    true,
		},
	}
}

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestModelRendersSnapshot(t *testing.T) {
	src := &stubSource{snap: liveSnapshot()}
	m := NewModel(context.Background(), src, Options{IDs: []string{"solana", "bonk"}})

	assert.Contains(t, m.View(), "Loading market data")

	next, cmd := m.Update(SnapshotMsg{Snapshot: src.snap})
	require.NotNil(t, cmd)
	view := next.View()

	assert.Contains(t, view, "ALP")
	assert.Contains(t, view, "$1.23")
	assert.Contains(t, view, "$2.50M")
	assert.Contains(t, view, "solana $150.00")
	assert.Contains(t, view, "bonk n/a")
	assert.NotContains(t, view, staticBanner)
}

func TestModelShowsBannerForStaticData(t *testing.T) {
	m := NewModel(context.Background(), &stubSource{}, Options{})
	next, _ := m.Update(SnapshotMsg{Snapshot: market.Snapshot{
		Trending: market.TrendingResult{Tokens: token.StaticDataset(), Source: market.SourceFallback},
	}})

	view := next.View()
	assert.Contains(t, view, staticBanner)
	assert.Contains(t, view, "SOL")
}

func TestModelRefreshKey(t *testing.T) {
	src := &stubSource{snap: liveSnapshot()}
	m := NewModel(context.Background(), src, Options{})

	// после старта обновление уже выполняется
	_, cmd := m.Update(keyMsg('r'))
	assert.Nil(t, cmd)

	next, _ := m.Update(SnapshotMsg{Snapshot: src.snap})
	next, cmd = next.Update(keyMsg('r'))
	require.NotNil(t, cmd)

	msg := cmd()
	snap, ok := msg.(SnapshotMsg)
	require.True(t, ok)
	assert.NoError(t, snap.Err)
	assert.Equal(t, 1, src.calls)
}

func TestModelKeepsDataOnError(t *testing.T) {
	m := NewModel(context.Background(), &stubSource{}, Options{})
	next, _ := m.Update(SnapshotMsg{Snapshot: liveSnapshot()})
	next, _ = next.Update(SnapshotMsg{Err: errors.New("context canceled")})

	view := next.View()
	assert.Contains(t, view, "Refresh failed")
	assert.Contains(t, view, "ALP")
}

func TestModelQuit(t *testing.T) {
	m := NewModel(context.Background(), &stubSource{}, Options{})
	_, cmd := m.Update(keyMsg('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModelShowsRecentLogs(t *testing.T) {
	ring := logger.NewRing(10)
	log := zap.New(ring.Core(zapcore.InfoLevel))
	log.Warn("primary source failed, switching to secondary")

	m := NewModel(context.Background(), &stubSource{}, Options{Logs: ring})
	assert.Contains(t, m.View(), "switching to secondary")
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "$0", formatPrice(decimal.Zero))
	assert.Equal(t, "$0.00001234", formatPrice(decimal.RequireFromString("0.0000123400")))
	assert.Equal(t, "+3.20%", formatChange(3.2))
	assert.Equal(t, "-1.00%", formatChange(-1))
	assert.Equal(t, "$1.50B", formatCompact(1.5e9))
	assert.Equal(t, "$12.3K", formatCompact(12345))
	assert.Equal(t, "$999", formatCompact(999))
}
