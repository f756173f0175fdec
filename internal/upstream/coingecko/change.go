// internal/upstream/coingecko/change.go
package coingecko

import (
	"bytes"
	"encoding/json"

	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/token"
)

// ChangeField разбирает процент изменения, который приходит числом или объектом {"usd": n}.
type ChangeField struct {
	Value token.Loose
}

// UnmarshalJSON никогда не возвращает ошибку
func (c *ChangeField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			USD token.Loose `json:"usd"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			c.Value = token.Loose{}
			return nil
		}
		c.Value = obj.USD
		return nil
	}
	return c.Value.UnmarshalJSON(data)
}
