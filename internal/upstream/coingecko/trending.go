// internal/upstream/coingecko/trending.go
package coingecko

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/token"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/upstream"
)

const (
	// SourceName - имя источника в логах и метриках
	SourceName = "coingecko"

	DefaultBaseURL = "https://api.coingecko.com/api/v3"
	DefaultLimit   = 6

	// DefaultAssumedBTCPrice - фиксированный курс BTC для пересчета price_btc в USD.
	// Это заведомо устаревшее приближение запасного уровня, а не ошибка.
	DefaultAssumedBTCPrice = 65000.0
)

// TrendingResponse представляет ответ /search/trending.
// Монеты разбираются по одной, чтобы одна кривая запись не ломала весь список.
type TrendingResponse struct {
	Coins []json.RawMessage `json:"coins"`
}

// TrendingCoin - обертка элемента списка
type TrendingCoin struct {
	Item token.Optional[TrendingItem] `json:"item"`
}

// TrendingItem содержит данные монеты
type TrendingItem struct {
	ID            string                       `json:"id"`
	Name          string                       `json:"name"`
	Symbol        string                       `json:"symbol"`
	PriceBTC      token.Loose                  `json:"price_btc"`
	MarketCapRank token.Loose                  `json:"market_cap_rank"`
	Data          token.Optional[TrendingData] `json:"data"`
}

// TrendingData - вложенные рыночные данные
type TrendingData struct {
	// price_change_percentage_24h бывает числом или объектом {"usd": n}
	PriceChange24h ChangeField `json:"price_change_percentage_24h"`
	TotalVolume    token.Loose `json:"total_volume"`
	MarketCap      token.Loose `json:"market_cap"`
	FDV            token.Loose `json:"fdv"`
}

// TrendingFetcher - запасной источник списка токенов.
type TrendingFetcher struct {
	client   *upstream.Client
	btcPrice decimal.Decimal
	limit    int
	policy   token.Policy
	logger   *zap.Logger
}

// NewTrendingFetcher создает запасной fetcher. assumedBTCPrice <= 0 заменяется значением по умолчанию.
func NewTrendingFetcher(client *upstream.Client, assumedBTCPrice float64, limit int, policy token.Policy, logger *zap.Logger) *TrendingFetcher {
	if assumedBTCPrice <= 0 {
		assumedBTCPrice = DefaultAssumedBTCPrice
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrendingFetcher{
		client:   client,
		btcPrice: decimal.NewFromFloat(assumedBTCPrice),
		limit:    limit,
		policy:   policy,
		logger:   logger.Named(SourceName),
	}
}

// FetchTrending возвращает трендовые монеты в порядке ранга апстрима.
func (f *TrendingFetcher) FetchTrending(ctx context.Context) ([]token.CanonicalToken, error) {
	var resp TrendingResponse
	if err := f.client.GetJSON(ctx, f.client.BaseURL()+"/search/trending", &resp); err != nil {
		return nil, err
	}
	if !token.ValidateContainer(&resp, "coins") {
		return nil, &upstream.ShapeError{Source: SourceName, Reason: "missing or empty coins"}
	}

	coins, dropped := token.DecodeRecords[TrendingCoin](resp.Coins)
	tokens := make([]token.CanonicalToken, 0, len(coins))
	for _, coin := range coins {
		if !coin.Item.Set {
			dropped++
			continue
		}
		tok, err := token.Normalize(f.toCandidate(&coin.Item.Value), f.policy)
		if err != nil {
			dropped++
			continue
		}
		tokens = append(tokens, tok)
	}

	if dropped > 0 {
		f.logger.Debug("dropped invalid trending coins",
			zap.Int("dropped", dropped),
			zap.Int("total", len(resp.Coins)))
	}

	return token.Dedupe(tokens, f.limit), nil
}

// toCandidate - единственное место, где формат CoinGecko trending переводится в Candidate.
// priceUsd выводится как price_btc * assumedBTCPrice.
func (f *TrendingFetcher) toCandidate(item *TrendingItem) token.Candidate {
	c := token.Candidate{
		Address:        item.ID,
		Name:           item.Name,
		Symbol:         item.Symbol,
		PriceChange24h: item.Data.Value.PriceChange24h.Value,
		Volume24h:      item.Data.Value.TotalVolume,
		FDV:            item.Data.Value.FDV,
	}

	if btc, ok := item.PriceBTC.Decimal(); ok {
		c.PriceUSD = token.LooseFrom(btc.Mul(f.btcPrice).String())
	} else {
		c.PriceUSD = item.PriceBTC
	}

	return c
}
