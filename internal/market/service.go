// internal/market/service.go
package market

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/andres-erbsen/clock"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/cache"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/retry"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/token"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/utils/metrics"
)

const (
	opTrending = "trending"
	opPrices   = "prices"

	trendingKey     = "trending"
	pricesKeyPrefix = "prices:"

	fallbackSecondary = "secondary"
	fallbackStatic    = "static"
)

// Deps зависимости Service. Primary, Secondary и Prices обязательны.
type Deps struct {
	Primary   TrendingFetcher
	Secondary TrendingFetcher
	Prices    PriceFetcher

	TrendingCache *cache.Cache[TrendingResult]
	PriceCache    *cache.Cache[PriceResult]

	Retry   retry.Config
	Logger  *zap.Logger
	Metrics *metrics.Collector
	Clock   clock.Clock

	// Static отдает резервный набор. По умолчанию token.StaticDataset.
	Static func() []token.CanonicalToken
}

// Service граница, которую вызывает UI. Любой сбой источников заканчивается
// отображаемым результатом; ошибкой возвращаются только отмена вызывающим и неверная настройка.
type Service struct {
	primary   TrendingFetcher
	secondary TrendingFetcher
	prices    PriceFetcher

	trendingCache *cache.Cache[TrendingResult]
	priceCache    *cache.Cache[PriceResult]

	retryCfg retry.Config
	logger   *zap.Logger
	metrics  *metrics.Collector
	clock    clock.Clock
	static   func() []token.CanonicalToken

	group singleflight.Group
}

// New создает сервис. Вместо nil-кэшей создаются кэши размера по умолчанию.
func New(deps Deps) (*Service, error) {
	if deps.Primary == nil || deps.Secondary == nil || deps.Prices == nil {
		return nil, errors.New("market: primary, secondary and price fetchers are required")
	}
	if err := deps.Retry.Validate(); err != nil {
		return nil, fmt.Errorf("market: %w", err)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.TrendingCache == nil {
		deps.TrendingCache = cache.New[TrendingResult](cache.Options{Clock: deps.Clock})
	}
	if deps.PriceCache == nil {
		deps.PriceCache = cache.New[PriceResult](cache.Options{Clock: deps.Clock})
	}
	if deps.Static == nil {
		deps.Static = token.StaticDataset
	}

	return &Service{
		primary:       deps.Primary,
		secondary:     deps.Secondary,
		prices:        deps.Prices,
		trendingCache: deps.TrendingCache,
		priceCache:    deps.PriceCache,
		retryCfg:      deps.Retry,
		logger:        deps.Logger.Named("market"),
		metrics:       deps.Metrics,
		clock:         deps.Clock,
		static:        deps.Static,
	}, nil
}

// Trending возвращает трендовый список по порядку: кэш, основной, резервный источник, статика.
func (s *Service) Trending(ctx context.Context) (TrendingResult, error) {
	if res, ok := s.trendingCache.Get(trendingKey); ok {
		s.metrics.RecordCacheLookup(opTrending, true)
		res = res.clone()
		res.Cached = true
		return res, nil
	}
	s.metrics.RecordCacheLookup(opTrending, false)

	v, err := s.collapse(ctx, trendingKey, func(ctx context.Context) (any, error) {
		return s.fetchTrending(ctx)
	})
	if err != nil {
		return TrendingResult{}, err
	}
	return v.(TrendingResult).clone(), nil
}

func (s *Service) fetchTrending(ctx context.Context) (TrendingResult, error) {
	// пока ждали группу, кэш мог заполнить другой вызов
	if res, ok := s.trendingCache.Get(trendingKey); ok {
		res.Cached = true
		return res, nil
	}

	source := SourcePrimary
	primary := func(ctx context.Context) ([]token.CanonicalToken, error) {
		return s.primary.FetchTrending(ctx)
	}
	secondary := func(ctx context.Context) ([]token.CanonicalToken, error) {
		source = SourceSecondary
		return s.secondary.FetchTrending(ctx)
	}

	tokens, err := retry.WithFallback(ctx, primary, secondary, retry.FallbackOptions{
		Retry: s.retryConfig(opTrending),
		OnFallback: func(primaryErr error) {
			s.metrics.RecordFallback(opTrending, fallbackSecondary)
			s.logger.Warn("primary source failed, switching to secondary",
				zap.Error(primaryErr))
		},
	})
	if err != nil {
		var chainErr *retry.ChainExhaustedError
		if !errors.As(err, &chainErr) {
			return TrendingResult{}, err
		}

		s.metrics.RecordFallback(opTrending, fallbackStatic)
		s.logger.Warn("all sources failed, serving static dataset",
			zap.NamedError("primary_error", chainErr.Primary),
			zap.NamedError("secondary_error", chainErr.Secondary))

		// статику не кэшируем: следующий запрос снова пойдет к источникам
		return TrendingResult{
			Tokens:    s.static(),
			Source:    SourceFallback,
			Live:      false,
			FetchedAt: s.clock.Now(),
		}, nil
	}

	res := TrendingResult{
		Tokens:    tokens,
		Source:    source,
		Live:      source.Live(),
		FetchedAt: s.clock.Now(),
	}
	s.trendingCache.Set(trendingKey, res)

	s.logger.Debug("trending fetched",
		zap.String("source", string(source)),
		zap.Int("tokens", len(tokens)))

	return res, nil
}

// Prices возвращает котировки для ids. Резервного источника нет, поэтому
// после исчерпания попыток все ids попадают в Missing.
func (s *Service) Prices(ctx context.Context, ids []string) (PriceResult, error) {
	ids = NormalizeIDs(ids)
	if len(ids) == 0 {
		return PriceResult{
			Quotes:    map[string]token.Quote{},
			Missing:   []string{},
			Source:    SourcePrimary,
			Live:      true,
			FetchedAt: s.clock.Now(),
		}, nil
	}

	key := pricesKeyPrefix + strings.Join(ids, ",")
	if res, ok := s.priceCache.Get(key); ok {
		s.metrics.RecordCacheLookup(opPrices, true)
		res = res.clone()
		res.Cached = true
		return res, nil
	}
	s.metrics.RecordCacheLookup(opPrices, false)

	v, err := s.collapse(ctx, key, func(ctx context.Context) (any, error) {
		return s.fetchPrices(ctx, key, ids)
	})
	if err != nil {
		return PriceResult{}, err
	}
	return v.(PriceResult).clone(), nil
}

func (s *Service) fetchPrices(ctx context.Context, key string, ids []string) (PriceResult, error) {
	if res, ok := s.priceCache.Get(key); ok {
		res.Cached = true
		return res, nil
	}

	quotes, err := retry.Do(ctx, func(ctx context.Context) (map[string]token.Quote, error) {
		return s.prices.FetchPrices(ctx, ids)
	}, s.retryConfig(opPrices))
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, retry.ErrInvalidConfig) {
			return PriceResult{}, err
		}

		s.metrics.RecordFallback(opPrices, fallbackStatic)
		s.logger.Warn("price lookup failed, returning empty quotes",
			zap.Strings("ids", ids),
			zap.Error(err))

		return PriceResult{
			Quotes:    map[string]token.Quote{},
			Missing:   append([]string{}, ids...),
			Source:    SourceFallback,
			Live:      false,
			FetchedAt: s.clock.Now(),
		}, nil
	}

	missing := make([]string, 0)
	for _, id := range ids {
		if _, ok := quotes[id]; !ok {
			missing = append(missing, id)
		}
	}

	res := PriceResult{
		Quotes:    quotes,
		Missing:   missing,
		Source:    SourcePrimary,
		Live:      true,
		FetchedAt: s.clock.Now(),
	}
	s.priceCache.Set(key, res)
	return res, nil
}

// Snapshot получает тренды и цены параллельно.
func (s *Service) Snapshot(ctx context.Context, ids []string) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res, err := s.Trending(gctx)
		if err != nil {
			return fmt.Errorf("trending: %w", err)
		}
		snap.Trending = res
		return nil
	})
	g.Go(func() error {
		res, err := s.Prices(gctx, ids)
		if err != nil {
			return fmt.Errorf("prices: %w", err)
		}
		snap.Prices = res
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// collapse выполняет fn один раз на ключ среди параллельных вызовов. Если контекст
// ведущего отменен, ожидающие с живым контекстом снова входят в группу
// и один из них ведет следующую попытку.
func (s *Service) collapse(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	for {
		ch := s.group.DoChan(key, func() (any, error) {
			return fn(ctx)
		})

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case r := <-ch:
			if r.Err != nil && isContextErr(r.Err) && ctx.Err() == nil {
				continue
			}
			return r.Val, r.Err
		}
	}
}

func (s *Service) retryConfig(operation string) retry.Config {
	cfg := s.retryCfg
	userHook := cfg.OnRetry
	cfg.OnRetry = func(attempt int, err error) {
		s.metrics.RecordRetry(operation)
		s.logger.Info("retrying upstream request",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", cfg.MaxAttempts),
			zap.Error(err))
		if userHook != nil {
			userHook(attempt, err)
		}
	}
	return cfg
}

// NormalizeIDs обрезает пробелы, приводит к нижнему регистру, убирает дубли и сортирует ids
func NormalizeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		for _, part := range strings.Split(id, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			if _, ok := seen[part]; ok {
				continue
			}
			seen[part] = struct{}{}
			out = append(out, part)
		}
	}
	sort.Strings(out)
	return out
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
