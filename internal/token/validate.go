// internal/token/validate.go
package token

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrMissingAddress - у записи нет идентификатора, запись отбрасывается
	ErrMissingAddress = errors.New("record has no address")

	// ErrInvalidNumeric - числовое поле не разобралось при выключенной деградации
	ErrInvalidNumeric = errors.New("record has invalid numeric field")
)

// Policy управляет поведением нормализатора.
type Policy struct {
	// GracefulDegradation: некорректные числа заменяются нулем вместо отбрасывания записи.
	GracefulDegradation bool
}

// DefaultPolicy - показываем неполные данные, а не прячем токен
var DefaultPolicy = Policy{GracefulDegradation: true}

// ValidateContainer проверяет, что payload - объект с непустым списком
// (или непустым объектом) в поле field. Никогда не паникует.
func ValidateContainer(payload any, field string) bool {
	if payload == nil {
		return false
	}

	v := reflect.ValueOf(payload)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}

	var container reflect.Value
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return false
		}
		container = v.MapIndex(reflect.ValueOf(field).Convert(v.Type().Key()))
	case reflect.Struct:
		container = structFieldByJSONName(v, field)
	default:
		return false
	}

	if !container.IsValid() {
		return false
	}
	for container.Kind() == reflect.Pointer || container.Kind() == reflect.Interface {
		if container.IsNil() {
			return false
		}
		container = container.Elem()
	}

	switch container.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return container.Len() > 0
	default:
		return false
	}
}

// structFieldByJSONName ищет поле структуры по json-тегу или имени.
func structFieldByJSONName(v reflect.Value, name string) reflect.Value {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := strings.Split(f.Tag.Get("json"), ",")[0]
		if tag == name || (tag == "" && strings.EqualFold(f.Name, name)) {
			return v.Field(i)
		}
	}
	return reflect.Value{}
}

// Normalize проверяет запись и возвращает нормализованную копию.
// Пустой адрес - всегда отказ. Числовые поля при GracefulDegradation
// заменяются нулем, иначе запись отклоняется с ErrInvalidNumeric.
func Normalize(c Candidate, p Policy) (CanonicalToken, error) {
	address := strings.TrimSpace(c.Address)
	if address == "" {
		return CanonicalToken{}, ErrMissingAddress
	}

	symbol := strings.TrimSpace(c.Symbol)
	if symbol == "" {
		symbol = DefaultSymbol
	}
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = symbol
	}

	n := numericNormalizer{policy: p}
	tok := CanonicalToken{
		BaseToken: BaseToken{
			Address: address,
			Name:    name,
			Symbol:  symbol,
		},
		PriceUSD:       n.decimal("priceUsd", c.PriceUSD),
		Volume24h:      n.decimal("volume24h", c.Volume24h),
		PriceChange24h: n.float("priceChange24h", c.PriceChange24h),
		Liquidity:      Liquidity{USD: n.float("liquidity.usd", c.LiquidityUSD)},
		FDV:            n.float("fdv", c.FDV),
	}
	if n.err != nil {
		return CanonicalToken{}, fmt.Errorf("%w: %s: %v", ErrInvalidNumeric, address, n.err)
	}

	return tok, nil
}

// NormalizeQuote приводит котировку к конечным значениям.
func NormalizeQuote(usd, change Loose) Quote {
	q := Quote{}
	if v, ok := usd.Float(); ok {
		q.USD = v
	}
	if v, ok := change.Float(); ok {
		q.USD24hChange = v
	}
	return q
}

// numericNormalizer копит первую ошибку разбора при строгой политике.
type numericNormalizer struct {
	policy Policy
	err    error
}

func (n *numericNormalizer) decimal(field string, l Loose) decimal.Decimal {
	if d, ok := l.Decimal(); ok {
		return d
	}
	n.reject(field, l)
	return decimal.Zero
}

func (n *numericNormalizer) float(field string, l Loose) float64 {
	if f, ok := l.Float(); ok {
		return f
	}
	n.reject(field, l)
	return 0
}

// reject фиксирует ошибку только для присутствующих, но кривых полей
// и только при строгой политике; отсутствующее поле всегда означает ноль.
func (n *numericNormalizer) reject(field string, l Loose) {
	if n.policy.GracefulDegradation || !l.IsSet() || n.err != nil {
		return
	}
	n.err = fmt.Errorf("field %s=%q", field, l.Raw())
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
