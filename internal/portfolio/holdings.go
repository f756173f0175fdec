// internal/portfolio/holdings.go
package portfolio

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidHolding - запись портфеля без id или с отрицательным количеством
	ErrInvalidHolding = errors.New("invalid holding")
)

// Holding описывает позицию пользователя
type Holding struct {
	ID           string          `json:"id"`
	Symbol       string          `json:"symbol"`
	Amount       decimal.Decimal `json:"amount"`
	CostBasisUSD decimal.Decimal `json:"costBasisUsd"`
}

// LoadHoldings читает JSON-массив позиций из файла
func LoadHoldings(path string) ([]Holding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read holdings file: %w", err)
	}
	return ParseHoldings(data)
}

// ParseHoldings разбирает и проверяет позиции. Идентификаторы приводятся к нижнему регистру.
func ParseHoldings(data []byte) ([]Holding, error) {
	var holdings []Holding
	if err := json.Unmarshal(data, &holdings); err != nil {
		return nil, fmt.Errorf("failed to parse holdings: %w", err)
	}

	for i := range holdings {
		h := &holdings[i]
		h.ID = strings.ToLower(strings.TrimSpace(h.ID))
		h.Symbol = strings.ToUpper(strings.TrimSpace(h.Symbol))

		if h.ID == "" {
			return nil, fmt.Errorf("%w: entry %d has empty id", ErrInvalidHolding, i)
		}
		if h.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: %s has negative amount %s", ErrInvalidHolding, h.ID, h.Amount)
		}
		if h.CostBasisUSD.IsNegative() {
			return nil, fmt.Errorf("%w: %s has negative cost basis %s", ErrInvalidHolding, h.ID, h.CostBasisUSD)
		}
		if h.Symbol == "" {
			h.Symbol = strings.ToUpper(h.ID)
		}
	}

	return holdings, nil
}

// IDs возвращает идентификаторы всех позиций
func IDs(holdings []Holding) []string {
	ids := make([]string, 0, len(holdings))
	for _, h := range holdings {
		ids = append(ids, h.ID)
	}
	return ids
}
