// internal/retry/errors.go
package retry

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig возникает при некорректной политике повторов (ошибка программиста).
var ErrInvalidConfig = errors.New("invalid retry config")

// ExhaustedError возвращается, когда все попытки одного уровня исчерпаны.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Err)
}

// Unwrap возвращает последнюю ошибку операции
func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// ChainExhaustedError возвращается, когда отказали оба уровня цепочки.
type ChainExhaustedError struct {
	Primary   error
	Secondary error
}

func (e *ChainExhaustedError) Error() string {
	return fmt.Sprintf("fallback chain exhausted: primary: %v; secondary: %v", e.Primary, e.Secondary)
}

// Unwrap позволяет errors.Is/As добраться до ошибок обоих уровней.
func (e *ChainExhaustedError) Unwrap() []error {
	return []error{e.Primary, e.Secondary}
}
