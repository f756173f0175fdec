// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/cache"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/config"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/market"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/portfolio"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/retry"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/server"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/token"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/upstream"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/upstream/coingecko"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/upstream/dexscreener"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/utils/metrics"
)

const userAgent = "market-dashboard/1.0"

// App собирает компоненты дашборда из конфигурации
type App struct {
	Config   *config.Config
	Market   *market.Service
	Valuator *portfolio.Valuator
	Holdings []portfolio.Holding
	Registry *prometheus.Registry

	logger *zap.Logger
}

// New создает клиентов апстримов, кэши и сервис. Файл портфеля читается, если задан.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewCollector(reg)

	dexClient := upstream.NewClient(upstream.Config{
		Source:    dexscreener.SourceName,
		BaseURL:   cfg.DexScreener.BaseURL,
		Timeout:   cfg.DexScreener.RequestTimeout(),
		RateLimit: cfg.DexScreener.RateLimit,
		UserAgent: userAgent,
	}, nil, logger, m)
	geckoClient := upstream.NewClient(upstream.Config{
		Source:    coingecko.SourceName,
		BaseURL:   cfg.CoinGecko.BaseURL,
		Timeout:   cfg.CoinGecko.RequestTimeout(),
		RateLimit: cfg.CoinGecko.RateLimit,
		UserAgent: userAgent,
	}, nil, logger, m)

	policy := token.Policy{GracefulDegradation: cfg.GracefulDegradation}
	filters := dexscreener.Filters{
		MinVolume24h: cfg.Filters.MinVolume24h,
		MaxFDV:       cfg.Filters.MaxFDV,
		Limit:        cfg.Filters.Limit,
	}

	baseDelay, maxDelay := cfg.Retry.Delays()
	cacheOpts := cache.Options{Duration: cfg.Cache.TTL(), MaxEntries: cfg.Cache.MaxEntries}

	svc, err := market.New(market.Deps{
		Primary:       dexscreener.NewFetcher(dexClient, cfg.DexScreener.Query, filters, policy, logger),
		Secondary:     coingecko.NewTrendingFetcher(geckoClient, cfg.AssumedBTCPrice, cfg.Filters.Limit, policy, logger),
		Prices:        coingecko.NewPriceFetcher(geckoClient, logger),
		TrendingCache: cache.New[market.TrendingResult](cacheOpts),
		PriceCache:    cache.New[market.PriceResult](cacheOpts),
		Retry: retry.Config{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseDelay:   baseDelay,
			MaxDelay:    maxDelay,
		},
		Logger:  logger,
		Metrics: m,
	})
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:   cfg,
		Market:   svc,
		Valuator: &portfolio.Valuator{Prices: svc, Logger: logger.Named("portfolio")},
		Registry: reg,
		logger:   logger,
	}

	if cfg.PortfolioFile != "" {
		holdings, err := portfolio.LoadHoldings(cfg.PortfolioFile)
		if err != nil {
			return nil, fmt.Errorf("portfolio: %w", err)
		}
		a.Holdings = holdings
		logger.Info("Loaded portfolio", zap.Int("holdings", len(holdings)))
	}

	return a, nil
}

// Server возвращает HTTP API поверх сервиса
func (a *App) Server() *server.Server {
	var valuator *portfolio.Valuator
	if a.Config.PortfolioFile != "" {
		valuator = a.Valuator
	}
	return server.New(server.Config{
		Addr:       a.Config.HTTPAddr,
		DefaultIDs: a.Config.WatchIDs,
	}, a.Market, valuator, a.Holdings, a.logger, a.Registry)
}

// SignalContext отменяется по SIGINT/SIGTERM
func (a *App) SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			a.logger.Info("Signal received", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
