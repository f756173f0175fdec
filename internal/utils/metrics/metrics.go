// internal/utils/metrics/metrics.go
package metrics

import (
	"time"
)

// Исходы запросов к апстриму
const (
	OutcomeSuccess = "success"
	OutcomeTimeout = "timeout"
	OutcomeNetwork = "network"
	OutcomeStatus  = "status"
	OutcomeShape   = "shape"
)

// RecordUpstreamRequest записывает исход и длительность запроса к апстриму
func (c *Collector) RecordUpstreamRequest(source, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.upstreamRequests.WithLabelValues(source, outcome).Inc()
	c.upstreamLatency.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordRetry увеличивает счетчик повторов операции
func (c *Collector) RecordRetry(operation string) {
	if c == nil {
		return
	}
	c.retries.WithLabelValues(operation).Inc()
}

// RecordFallback фиксирует переключение на запасной источник (secondary или static)
func (c *Collector) RecordFallback(operation, kind string) {
	if c == nil {
		return
	}
	c.fallbacks.WithLabelValues(operation, kind).Inc()
}

// RecordCacheLookup фиксирует попадание или промах кэша
func (c *Collector) RecordCacheLookup(cache string, hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(cache, result).Inc()
}
