package ui

import (
	"time"

	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/market"
)

// Сообщения bubbletea экрана наблюдения

// SnapshotMsg результат одного обновления
type SnapshotMsg struct {
	Snapshot market.Snapshot
	Err      error
	Took     time.Duration
}

// TickMsg запускает периодическое обновление
type TickMsg time.Time
