// internal/upstream/dexscreener/dexscreener.go
package dexscreener

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/token"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/upstream"
)

const (
	// SourceName - имя источника в логах и метриках
	SourceName = "dexscreener"

	DefaultBaseURL = "https://api.dexscreener.com"
	DefaultQuery   = "solana"
	DefaultLimit   = 6

	containerField = "pairs"
)

// Filters - бизнес-пороги отбора пар
type Filters struct {
	MinVolume24h float64
	MaxFDV       float64 // 0 - без ограничения
	Limit        int
}

// DefaultFilters возвращает пороги по умолчанию
func DefaultFilters() Filters {
	return Filters{
		MinVolume24h: 10000,
		MaxFDV:       0,
		Limit:        DefaultLimit,
	}
}

// SearchResponse представляет ответ /latest/dex/search.
// Пары разбираются по одной, чтобы одна кривая запись не ломала весь список.
type SearchResponse struct {
	SchemaVersion string            `json:"schemaVersion"`
	Pairs         []json.RawMessage `json:"pairs"`
}

// PairInfo содержит нужные поля пары. Числовые поля приходят то строкой, то числом,
// вложенные объекты бывают пропущены или заменены числом. Пара с неразбираемым
// baseToken отбрасывается целиком: без адреса запись все равно не нужна.
type PairInfo struct {
	BaseToken      TokenInfo                `json:"baseToken"`
	PriceUSD       token.Loose              `json:"priceUsd"`
	Volume24h      token.Loose              `json:"volume24h"`
	PriceChange24h token.Loose              `json:"priceChange24h"`
	Volume         token.Optional[h24Field] `json:"volume"`
	PriceChange    token.Optional[h24Field] `json:"priceChange"`
	Liquidity      token.Optional[usdField] `json:"liquidity"`
	FDV            token.Loose              `json:"fdv"`
}

type h24Field struct {
	H24 token.Loose `json:"h24"`
}

type usdField struct {
	USD token.Loose `json:"usd"`
}

// TokenInfo содержит информацию о токене
type TokenInfo struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// Fetcher - основной источник списка токенов.
type Fetcher struct {
	client  *upstream.Client
	query   string
	filters Filters
	policy  token.Policy
	logger  *zap.Logger
}

// NewFetcher создает fetcher поверх клиента апстрима.
func NewFetcher(client *upstream.Client, query string, filters Filters, policy token.Policy, logger *zap.Logger) *Fetcher {
	if query == "" {
		query = DefaultQuery
	}
	if filters.Limit <= 0 {
		filters.Limit = DefaultLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client:  client,
		query:   query,
		filters: filters,
		policy:  policy,
		logger:  logger.Named(SourceName),
	}
}

// FetchTrending получает пары, отбирает по порогам, сортирует по объему
// (по убыванию) и возвращает не больше Limit токенов.
func (f *Fetcher) FetchTrending(ctx context.Context) ([]token.CanonicalToken, error) {
	endpoint := f.client.BaseURL() + "/latest/dex/search?q=" + url.QueryEscape(f.query)

	var resp SearchResponse
	if err := f.client.GetJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if !token.ValidateContainer(&resp, containerField) {
		return nil, &upstream.ShapeError{Source: SourceName, Reason: "missing or empty pairs"}
	}

	pairs, dropped := token.DecodeRecords[PairInfo](resp.Pairs)
	tokens := make([]token.CanonicalToken, 0, len(pairs))
	for i := range pairs {
		tok, err := token.Normalize(toCandidate(&pairs[i]), f.policy)
		if err != nil {
			dropped++
			continue
		}
		if !f.passes(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}

	sort.SliceStable(tokens, func(i, j int) bool {
		return tokens[i].Volume24h.GreaterThan(tokens[j].Volume24h)
	})
	tokens = token.Dedupe(tokens, f.filters.Limit)

	if dropped > 0 {
		f.logger.Debug("dropped invalid pairs",
			zap.Int("dropped", dropped),
			zap.Int("total", len(resp.Pairs)))
	}

	return tokens, nil
}

func (f *Fetcher) passes(tok token.CanonicalToken) bool {
	if tok.Volume24h.LessThan(decimal.NewFromFloat(f.filters.MinVolume24h)) {
		return false
	}
	if f.filters.MaxFDV > 0 && tok.FDV > f.filters.MaxFDV {
		return false
	}
	return true
}

// toCandidate - единственное место, где формат DexScreener переводится в Candidate.
func toCandidate(p *PairInfo) token.Candidate {
	c := token.Candidate{
		Address:        p.BaseToken.Address,
		Name:           p.BaseToken.Name,
		Symbol:         p.BaseToken.Symbol,
		PriceUSD:       p.PriceUSD,
		Volume24h:      p.Volume24h.Or(p.Volume.Value.H24),
		PriceChange24h: p.PriceChange24h.Or(p.PriceChange.Value.H24),
		LiquidityUSD:   p.Liquidity.Value.USD,
		FDV:            p.FDV,
	}
	return c
}
