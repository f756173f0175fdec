// internal/cache/cache.go
package cache

import (
	"sync"
	"time"

	"github.com/andres-erbsen/clock"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultDuration - окно актуальности записи
	DefaultDuration = 15 * time.Second
	// DefaultMaxEntries ограничивает число ключей
	DefaultMaxEntries = 128
)

// Options настраивает кэш.
type Options struct {
	Duration   time.Duration
	MaxEntries int
	Clock      clock.Clock
}

type entry[V any] struct {
	data      V
	timestamp time.Time
}

// Cache - небольшой кэш результатов с фиксированным окном актуальности.
// Устаревшие записи удаляются лениво, только при Get; фонового таймера нет.
// Число ключей ограничено LRU, поэтому рост между чтениями конечен.
type Cache[V any] struct {
	mu       sync.Mutex
	entries  *lru.Cache[string, entry[V]]
	duration time.Duration
	clock    clock.Clock
}

// New создает кэш. Нулевые поля Options заменяются значениями по умолчанию.
func New[V any](opts Options) *Cache[V] {
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}

	// lru.New возвращает ошибку только для size <= 0
	entries, _ := lru.New[string, entry[V]](opts.MaxEntries)

	return &Cache[V]{
		entries:  entries,
		duration: opts.Duration,
		clock:    opts.Clock,
	}
}

// Get возвращает значение, если оно есть и не устарело. Устаревшая запись удаляется.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries.Get(key)
	if !ok {
		return zero, false
	}

	if c.clock.Now().Sub(e.timestamp) > c.duration {
		c.entries.Remove(key)
		return zero, false
	}

	return e.data, true
}

// Set сохраняет значение с текущим временем, перезаписывая прежнюю запись целиком.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries.Add(key, entry[V]{data: value, timestamp: c.clock.Now()})
}

// IsValid сообщает, есть ли запись моложе окна актуальности. Ничего не удаляет.
func (c *Cache[V]) IsValid(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Peek(key)
	if !ok {
		return false
	}
	return c.clock.Now().Sub(e.timestamp) < c.duration
}

// Len возвращает число хранимых записей, включая еще не удаленные устаревшие.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Purge очищает кэш
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Purge()
}

// Duration возвращает окно актуальности
func (c *Cache[V]) Duration() time.Duration {
	return c.duration
}
