package ui

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

const (
	defaultRestartDelay = 2 * time.Second
	defaultMaxRestarts  = 3
)

// ProgramFactory строит новую модель и опции для каждого (пере)запуска
type ProgramFactory func() (tea.Model, []tea.ProgramOption)

// RecoveryHandler запускает программу наблюдения и перезапускает ее после паники
type RecoveryHandler struct {
	logger       *zap.Logger
	restartDelay time.Duration
	maxRestarts  int

	mu           sync.Mutex
	restartCount int
}

// NewRecoveryHandler создает обработчик восстановления
func NewRecoveryHandler(logger *zap.Logger) *RecoveryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecoveryHandler{
		logger:       logger.Named("ui"),
		restartDelay: defaultRestartDelay,
		maxRestarts:  defaultMaxRestarts,
	}
}

// Run выполняет программу до штатного выхода или отмены ctx.
// После паники перезапуск не более maxRestarts раз.
func (rh *RecoveryHandler) Run(ctx context.Context, create ProgramFactory) error {
	for {
		err := rh.runOnce(ctx, create)
		if err == nil || ctx.Err() != nil {
			return nil
		}

		rh.mu.Lock()
		rh.restartCount++
		count := rh.restartCount
		rh.mu.Unlock()

		if count > rh.maxRestarts {
			return fmt.Errorf("watch view crashed too many times (%d), giving up: %w", rh.maxRestarts, err)
		}

		rh.logger.Error("Watch view crashed, will restart",
			zap.Error(err),
			zap.Int("restart_count", count),
			zap.Duration("delay", rh.restartDelay))

		timer := time.NewTimer(rh.restartDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

func (rh *RecoveryHandler) runOnce(ctx context.Context, create ProgramFactory) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("watch view panic: %v", r)
			rh.logger.Error("Watch view panic recovered",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())))
		}
	}()

	model, opts := create()
	opts = append(opts, tea.WithContext(ctx))
	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		return fmt.Errorf("watch view: %w", err)
	}
	return nil
}

// RestartCount возвращает число выполненных перезапусков
func (rh *RecoveryHandler) RestartCount() int {
	rh.mu.Lock()
	defer rh.mu.Unlock()
	return rh.restartCount
}
