// internal/token/optional.go
package token

import (
	"bytes"
	"encoding/json"
)

// Optional - вложенный необязательный объект апстрима. Если значение
// не разбирается в T (число вместо объекта, строка "n/a" и т.п.),
// остается нулевой T, а весь payload продолжает разбираться.
type Optional[T any] struct {
	Value T
	Set   bool
}

// UnmarshalJSON никогда не возвращает ошибку.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	*o = Optional[T]{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	*o = Optional[T]{Value: v, Set: true}
	return nil
}

// MarshalJSON отдает значение или null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// DecodeRecords разбирает каждый элемент списка отдельно. Элементы, которые
// не разбираются в T, пропускаются; возвращается их число.
func DecodeRecords[T any](raw []json.RawMessage) ([]T, int) {
	out := make([]T, 0, len(raw))
	dropped := 0
	for _, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			dropped++
			continue
		}
		out = append(out, v)
	}
	return out, dropped
}
