// internal/retry/retry.go
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Operation - асинхронная операция, которую можно повторять.
type Operation[T any] func(ctx context.Context) (T, error)

// Config описывает политику повторов одного уровня.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// OnRetry вызывается перед каждой паузой; на поток управления не влияет.
	OnRetry func(attempt int, err error)
}

// DefaultConfig возвращает политику по умолчанию: 3 попытки, 1s..10s.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    10 * time.Second,
	}
}

// Validate проверяет инварианты политики.
func (c Config) Validate() error {
	switch {
	case c.MaxAttempts < 1:
		return fmt.Errorf("%w: max attempts must be >= 1, got %d", ErrInvalidConfig, c.MaxAttempts)
	case c.BaseDelay < 0:
		return fmt.Errorf("%w: base delay must be >= 0", ErrInvalidConfig)
	case c.MaxDelay < c.BaseDelay:
		return fmt.Errorf("%w: max delay %s is below base delay %s", ErrInvalidConfig, c.MaxDelay, c.BaseDelay)
	}
	return nil
}

// Do выполняет op до cfg.MaxAttempts раз, делая паузы по ComputeDelay.
// Попытки строго последовательны. Отмена ctx прерывает цикл сразу, и во время
// попытки, и во время паузы; в этом случае возвращается ошибка контекста.
// Ошибки, обернутые в backoff.Permanent, не повторяются.
func Do[T any](ctx context.Context, op Operation[T], cfg Config) (T, error) {
	var zero T
	if err := cfg.Validate(); err != nil {
		return zero, err
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	attempt := 0
	operation := func() (T, error) {
		attempt++
		return op(ctx)
	}

	notify := func(err error, _ time.Duration) {
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}
	}

	res, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(&CappedExponential{Base: cfg.BaseDelay, Max: cfg.MaxDelay}),
		backoff.WithMaxTries(uint(cfg.MaxAttempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(notify))
	if err == nil {
		return res, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return zero, ctxErr
	}
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return zero, permanent.Unwrap()
	}
	if attempt < cfg.MaxAttempts {
		return zero, err
	}

	return zero, &ExhaustedError{Attempts: attempt, Err: err}
}
