// internal/token/loose.go
package token

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var looseCleaner = strings.NewReplacer("$", "", ",", "", " ", "")

// maxExponent ограничивает порядок десятичного значения: точный перевод
// decimal с огромной экспонентой строит 10^exp в big.Int без предела.
const maxExponent = 400

// Loose хранит числовое поле апстрима в исходном виде: числом, строкой или null.
// Разбор никогда не падает, поэтому один кривой field не ломает весь payload.
type Loose struct {
	raw string
	set bool
}

// LooseFrom создает Loose из строки (удобно для тестов и маппинга).
func LooseFrom(raw string) Loose {
	return Loose{raw: raw, set: true}
}

// LooseFloat создает Loose из числа.
func LooseFloat(v float64) Loose {
	return Loose{raw: decimal.NewFromFloat(v).String(), set: true}
}

// UnmarshalJSON принимает любое JSON-значение.
func (l *Loose) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = Loose{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*l = Loose{raw: string(data), set: true}
			return nil
		}
		*l = Loose{raw: s, set: true}
		return nil
	}

	*l = Loose{raw: string(data), set: true}
	return nil
}

// MarshalJSON отдает исходное значение строкой.
func (l Loose) MarshalJSON() ([]byte, error) {
	if !l.set {
		return []byte("null"), nil
	}
	return json.Marshal(l.raw)
}

// IsSet сообщает, присутствовало ли поле в payload.
func (l Loose) IsSet() bool {
	return l.set
}

// Raw возвращает исходный текст поля
func (l Loose) Raw() string {
	return l.raw
}

// Decimal разбирает значение. Строки вида "$1,234.5" допускаются.
// NaN, Inf, объекты, массивы и экспонента вне ±maxExponent дают ok=false.
func (l Loose) Decimal() (decimal.Decimal, bool) {
	d, _, ok := l.parse()
	return d, ok
}

// Float разбирает значение в конечный float64.
func (l Loose) Float() (float64, bool) {
	_, f, ok := l.parse()
	return f, ok
}

// parse сначала проверяет строку через strconv.ParseFloat (быстро и без
// аллокаций на экспоненту), и только потом строит точное decimal.
func (l Loose) parse() (decimal.Decimal, float64, bool) {
	if !l.set {
		return decimal.Zero, 0, false
	}
	s := looseCleaner.Replace(strings.TrimSpace(l.raw))
	if s == "" {
		return decimal.Zero, 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !isFinite(f) {
		return decimal.Zero, 0, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, 0, false
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Zero, 0, false
	}
	return d, f, true
}

// Or возвращает l, если поле присутствует, иначе other.
func (l Loose) Or(other Loose) Loose {
	if l.set {
		return l
	}
	return other
}
