// internal/market/types.go
package market

import (
	"context"
	"time"

	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/token"
)

// Source уровень, давший результат
type Source string

const (
	SourcePrimary   Source = "primary"
	SourceSecondary Source = "secondary"
	SourceFallback  Source = "fallback"
)

// Live сообщает, пришли ли данные от источника, а не из статики
func (s Source) Live() bool {
	return s != SourceFallback
}

// TrendingFetcher возвращает нормализованный список токенов одного источника
type TrendingFetcher interface {
	FetchTrending(ctx context.Context) ([]token.CanonicalToken, error)
}

// PriceFetcher возвращает котировки по ids монет
type PriceFetcher interface {
	FetchPrices(ctx context.Context, ids []string) (map[string]token.Quote, error)
}

// TrendingResult трендовый список для отображения
type TrendingResult struct {
	Tokens    []token.CanonicalToken `json:"tokens"`
	Source    Source                 `json:"source"`
	Live      bool                   `json:"live"`
	Cached    bool                   `json:"cached"`
	FetchedAt time.Time              `json:"fetchedAt"`
}

// PriceResult котировки запрошенных ids. Missing перечисляет ids без цены.
type PriceResult struct {
	Quotes    map[string]token.Quote `json:"quotes"`
	Missing   []string               `json:"missing"`
	Source    Source                 `json:"source"`
	Live      bool                   `json:"live"`
	Cached    bool                   `json:"cached"`
	FetchedAt time.Time              `json:"fetchedAt"`
}

// Snapshot тренды и цены, полученные параллельно
type Snapshot struct {
	Trending TrendingResult `json:"trending"`
	Prices   PriceResult    `json:"prices"`
}

func (r TrendingResult) clone() TrendingResult {
	tokens := make([]token.CanonicalToken, len(r.Tokens))
	copy(tokens, r.Tokens)
	r.Tokens = tokens
	return r
}

func (r PriceResult) clone() PriceResult {
	quotes := make(map[string]token.Quote, len(r.Quotes))
	for id, q := range r.Quotes {
		quotes[id] = q
	}
	r.Quotes = quotes
	r.Missing = append(make([]string, 0, len(r.Missing)), r.Missing...)
	return r
}
