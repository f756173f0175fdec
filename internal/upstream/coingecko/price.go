// internal/upstream/coingecko/price.go
package coingecko

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/token"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/upstream"
)

type simplePrice struct {
	USD          token.Loose `json:"usd"`
	USD24hChange token.Loose `json:"usd_24h_change"`
}

// PriceFetcher получает котировки по идентификаторам монет.
type PriceFetcher struct {
	client *upstream.Client
	logger *zap.Logger
}

// NewPriceFetcher создает fetcher котировок
func NewPriceFetcher(client *upstream.Client, logger *zap.Logger) *PriceFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceFetcher{client: client, logger: logger.Named(SourceName)}
}

// FetchPrices возвращает котировки для ids. Пустой ответ считается ошибкой формы.
// Идентификаторы, которых нет в ответе или чья запись не объект, отсутствуют в карте.
func (f *PriceFetcher) FetchPrices(ctx context.Context, ids []string) (map[string]token.Quote, error) {
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", "usd")
	q.Set("include_24hr_change", "true")
	endpoint := f.client.BaseURL() + "/simple/price?" + q.Encode()

	var resp map[string]token.Optional[simplePrice]
	if err := f.client.GetJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if len(resp) == 0 {
		return nil, &upstream.ShapeError{Source: SourceName, Reason: "empty price map"}
	}

	quotes := make(map[string]token.Quote, len(resp))
	for id, p := range resp {
		if !p.Set {
			continue
		}
		quotes[id] = token.NormalizeQuote(p.Value.USD, p.Value.USD24hChange)
	}

	f.logger.Debug("fetched prices",
		zap.Int("requested", len(ids)),
		zap.Int("received", len(quotes)))

	return quotes, nil
}
