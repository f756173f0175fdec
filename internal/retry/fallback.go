// internal/retry/fallback.go
package retry

import (
	"context"
	"errors"
)

// FallbackOptions настраивает двухуровневую цепочку.
type FallbackOptions struct {
	// OnFallback вызывается один раз при переключении на secondary.
	OnFallback func(primaryErr error)
	Retry      Config
}

// WithFallback выполняет primary через Do, а при его отказе - secondary
// с той же политикой повторов. Если отказали оба уровня, возвращается
// *ChainExhaustedError с ошибками обоих.
func WithFallback[T any](ctx context.Context, primary, secondary Operation[T], opts FallbackOptions) (T, error) {
	res, primaryErr := Do(ctx, primary, opts.Retry)
	if primaryErr == nil {
		return res, nil
	}

	var zero T
	// Отмену вызывающей стороной и ошибки конфигурации не маскируем вторым уровнем
	if ctx.Err() != nil || errors.Is(primaryErr, ErrInvalidConfig) {
		return zero, primaryErr
	}

	if opts.OnFallback != nil {
		opts.OnFallback(primaryErr)
	}

	res, secondaryErr := Do(ctx, secondary, opts.Retry)
	if secondaryErr == nil {
		return res, nil
	}
	if ctx.Err() != nil {
		return zero, secondaryErr
	}

	return zero, &ChainExhaustedError{Primary: primaryErr, Secondary: secondaryErr}
}
