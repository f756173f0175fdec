// internal/portfolio/valuation.go
package portfolio

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/market"
)

// PriceSource - то, что умеет отдавать котировки (market.Service)
type PriceSource interface {
	Prices(ctx context.Context, ids []string) (market.PriceResult, error)
}

// Position - оцененная позиция. Priced=false, если котировки нет.
type Position struct {
	Holding      Holding         `json:"holding"`
	PriceUSD     decimal.Decimal `json:"priceUsd"`
	ValueUSD     decimal.Decimal `json:"valueUsd"`
	Change24hPct float64         `json:"change24hPct"`
	PnLUSD       decimal.Decimal `json:"pnlUsd"`
	Priced       bool            `json:"priced"`
}

// Valuation - итог по портфелю
type Valuation struct {
	Positions    []Position      `json:"positions"`
	TotalUSD     decimal.Decimal `json:"totalUsd"`
	TotalCostUSD decimal.Decimal `json:"totalCostUsd"`
	PnLUSD       decimal.Decimal `json:"pnlUsd"`
	Source       market.Source   `json:"source"`
	Live         bool            `json:"live"`
}

// Valuator оценивает портфель по текущим котировкам
type Valuator struct {
	Prices PriceSource
	Logger *zap.Logger
}

// Value считает стоимость и PnL. Неоцененные позиции остаются в списке
// и не входят в итоги.
func (v *Valuator) Value(ctx context.Context, holdings []Holding) (Valuation, error) {
	res, err := v.Prices.Prices(ctx, IDs(holdings))
	if err != nil {
		return Valuation{}, err
	}

	val := Valuation{
		Positions:    make([]Position, 0, len(holdings)),
		TotalUSD:     decimal.Zero,
		TotalCostUSD: decimal.Zero,
		PnLUSD:       decimal.Zero,
		Source:       res.Source,
		Live:         res.Live,
	}

	unpriced := 0
	for _, h := range holdings {
		pos := Position{
			Holding:  h,
			PriceUSD: decimal.Zero,
			ValueUSD: decimal.Zero,
			PnLUSD:   decimal.Zero,
		}

		if q, ok := res.Quotes[h.ID]; ok {
			pos.Priced = true
			pos.PriceUSD = decimal.NewFromFloat(q.USD)
			pos.ValueUSD = pos.PriceUSD.Mul(h.Amount)
			pos.Change24hPct = q.USD24hChange
			pos.PnLUSD = pos.ValueUSD.Sub(h.CostBasisUSD)

			val.TotalUSD = val.TotalUSD.Add(pos.ValueUSD)
			val.TotalCostUSD = val.TotalCostUSD.Add(h.CostBasisUSD)
		} else {
			unpriced++
		}

		val.Positions = append(val.Positions, pos)
	}
	val.PnLUSD = val.TotalUSD.Sub(val.TotalCostUSD)

	if unpriced > 0 && v.Logger != nil {
		v.Logger.Debug("some holdings have no quote",
			zap.Int("unpriced", unpriced),
			zap.Int("total", len(holdings)))
	}

	return val, nil
}
