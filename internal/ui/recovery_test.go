package ui

import (
	"context"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// quitModel завершается на первом Init
type quitModel struct{}

func (quitModel) Init() tea.Cmd { return tea.Quit }

func (m quitModel) Update(tea.Msg) (tea.Model, tea.Cmd) { return m, nil }

func (quitModel) View() string { return "" }

func headless() []tea.ProgramOption {
	return []tea.ProgramOption{
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutSignalHandler(),
		tea.WithoutRenderer(),
	}
}

func newTestHandler() *RecoveryHandler {
	h := NewRecoveryHandler(zap.NewNop())
	h.restartDelay = time.Millisecond
	return h
}

func TestRecoveryHandlerNormalExit(t *testing.T) {
	h := newTestHandler()

	err := h.Run(context.Background(), func() (tea.Model, []tea.ProgramOption) {
		return quitModel{}, headless()
	})
	require.NoError(t, err)
	assert.Equal(t, 0, h.RestartCount())
}

func TestRecoveryHandlerRestartsAfterPanic(t *testing.T) {
	h := newTestHandler()

	calls := 0
	err := h.Run(context.Background(), func() (tea.Model, []tea.ProgramOption) {
		calls++
		if calls == 1 {
			panic("boom")
		}
		return quitModel{}, headless()
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, h.RestartCount())
}

func TestRecoveryHandlerGivesUp(t *testing.T) {
	h := newTestHandler()
	h.maxRestarts = 2

	calls := 0
	err := h.Run(context.Background(), func() (tea.Model, []tea.ProgramOption) {
		calls++
		panic("always")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "giving up")
	assert.Equal(t, 3, calls)
}

func TestRecoveryHandlerStopsOnCancel(t *testing.T) {
	h := newTestHandler()
	h.restartDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- h.Run(ctx, func() (tea.Model, []tea.ProgramOption) {
			panic("crash")
		})
	}()

	require.Eventually(t, func() bool { return h.RestartCount() == 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
