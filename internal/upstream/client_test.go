package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/utils/metrics"
)

func newTestClient(t *testing.T, srv *httptest.Server, timeout time.Duration) *Client {
	t.Helper()
	return NewClient(Config{
		Source:  "test",
		BaseURL: srv.URL,
		Timeout: timeout,
	}, srv.Client(), zaptest.NewLogger(t), nil)
}

func TestGetJSONSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pairs":[1,2]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, time.Second)
	var out struct {
		Pairs []int `json:"pairs"`
	}
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, &out))
	assert.Equal(t, []int{1, 2}, out.Pairs)
}

func TestGetJSONStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, time.Second)
	var out map[string]any
	err := c.GetJSON(context.Background(), srv.URL, &out)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatus))
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Contains(t, se.Body, "boom")
}

func TestGetJSONShapeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, time.Second)
	var out map[string]any
	err := c.GetJSON(context.Background(), srv.URL, &out)
	assert.True(t, errors.Is(err, ErrShape))
}

func TestGetJSONTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(t, srv, 50*time.Millisecond)
	var out map[string]any
	err := c.GetJSON(context.Background(), srv.URL, &out)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.False(t, errors.Is(err, context.Canceled))
}

func TestGetJSONCallerCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 5*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	var out map[string]any
	err := c.GetJSON(ctx, srv.URL, &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, ErrTimeout))
}

func TestGetJSONNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	c := NewClient(Config{Source: "test", BaseURL: addr, Timeout: time.Second}, nil, nil, nil)
	var out map[string]any
	err := c.GetJSON(context.Background(), addr, &out)
	assert.True(t, errors.Is(err, ErrNetwork))
}

func TestGetJSONRecordsMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	m := metrics.NewCollector(reg)
	c := NewClient(Config{Source: "test", BaseURL: srv.URL}, srv.Client(), nil, m)

	var out map[string]any
	require.NoError(t, c.GetJSON(context.Background(), srv.URL+"/ok", &out))
	require.Error(t, c.GetJSON(context.Background(), srv.URL+"/bad", &out))

	count, err := testutil.GatherAndCount(reg, "dashboard_upstream_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
