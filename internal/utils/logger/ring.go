// internal/utils/logger/ring.go
package logger

import (
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
)

// Entry - одна запись кольцевого буфера
type Entry struct {
	Time    time.Time
	Level   zapcore.Level
	Logger  string
	Message string
}

// Ring хранит последние size записей. Потокобезопасен.
type Ring struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
}

// NewRing создает буфер; size < 1 заменяется на 1
func NewRing(size int) *Ring {
	if size < 1 {
		size = 1
	}
	return &Ring{entries: make([]Entry, size)}
}

func (r *Ring) add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[r.next] = e
	r.next = (r.next + 1) % len(r.entries)
	if r.next == 0 {
		r.full = true
	}
}

// Recent возвращает до limit последних записей, от старых к новым. limit <= 0 - все.
func (r *Ring) Recent(limit int) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := r.next
	start := 0
	if r.full {
		count = len(r.entries)
		start = r.next
	}

	out := make([]Entry, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, r.entries[(start+i)%len(r.entries)])
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// Core возвращает zapcore.Core, пишущий в буфер. Поля не сохраняются, только сообщение.
func (r *Ring) Core(level zapcore.LevelEnabler) zapcore.Core {
	return &ringCore{LevelEnabler: level, ring: r}
}

type ringCore struct {
	zapcore.LevelEnabler
	ring *Ring
}

func (c *ringCore) With([]zapcore.Field) zapcore.Core {
	return c
}

func (c *ringCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *ringCore) Write(entry zapcore.Entry, _ []zapcore.Field) error {
	c.ring.add(Entry{
		Time:    entry.Time,
		Level:   entry.Level,
		Logger:  entry.LoggerName,
		Message: entry.Message,
	})
	return nil
}

func (c *ringCore) Sync() error {
	return nil
}
