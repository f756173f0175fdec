// internal/token/types.go
package token

import (
	"github.com/shopspring/decimal"
)

// DefaultSymbol подставляется, если апстрим не прислал символ
const DefaultSymbol = "UNKNOWN"

// BaseToken содержит идентификацию токена
type BaseToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// Liquidity содержит информацию о ликвидности
type Liquidity struct {
	USD float64 `json:"usd"`
}

// CanonicalToken - нормализованная запись, которую отдают все источники.
// После Normalize все числовые поля конечны, Liquidity всегда заполнена.
type CanonicalToken struct {
	BaseToken      BaseToken       `json:"baseToken"`
	PriceUSD       decimal.Decimal `json:"priceUsd"`
	Volume24h      decimal.Decimal `json:"volume24h"`
	PriceChange24h float64         `json:"priceChange24h"`
	Liquidity      Liquidity       `json:"liquidity"`
	FDV            float64         `json:"fdv"`
}

// Candidate - запись апстрима после разбора, но до валидации.
// Каждый источник переводит свой формат в Candidate в одной функции маппинга.
type Candidate struct {
	Address        string
	Name           string
	Symbol         string
	PriceUSD       Loose
	Volume24h      Loose
	PriceChange24h Loose
	LiquidityUSD   Loose
	FDV            Loose
}

// Quote - результат запроса цены
type Quote struct {
	USD          float64 `json:"usd"`
	USD24hChange float64 `json:"usd24hChange"`
}
