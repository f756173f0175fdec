// internal/retry/backoff.go
package retry

import (
	"time"

	"github.com/cenkalti/backoff/v5"
)

// ComputeDelay возвращает задержку перед повтором: min(base * 2^(attempt-1), max).
// Попытки считаются с 1. Некорректные входные данные не приводят к панике:
// attempt < 1 трактуется как 1, отрицательные задержки как 0.
func ComputeDelay(attempt int, base, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if base < 0 {
		base = 0
	}
	if max < 0 {
		max = 0
	}
	if base == 0 {
		return 0
	}

	delay := base
	for i := 1; i < attempt; i++ {
		// Проверка до умножения, чтобы не уйти в переполнение
		if delay >= max || delay > max/2 {
			return max
		}
		delay *= 2
	}

	if delay > max {
		return max
	}
	return delay
}

// CappedExponential реализует backoff.BackOff без jitter поверх ComputeDelay.
type CappedExponential struct {
	Base    time.Duration
	Max     time.Duration
	attempt int
}

var _ backoff.BackOff = (*CappedExponential)(nil)

// NextBackOff возвращает задержку для следующей попытки.
func (b *CappedExponential) NextBackOff() time.Duration {
	b.attempt++
	return ComputeDelay(b.attempt, b.Base, b.Max)
}

// Reset сбрасывает счетчик попыток.
func (b *CappedExponential) Reset() {
	b.attempt = 0
}
