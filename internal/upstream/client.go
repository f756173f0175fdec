// internal/upstream/client.go
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/hashicorp/go-cleanhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/utils/metrics"
)

const (
	// DefaultTimeout - таймаут одного запроса
	DefaultTimeout = 5 * time.Second
	// DefaultRateLimit - запросов в минуту
	DefaultRateLimit = 300

	maxErrorBody = 512
)

// Config настраивает клиент одного апстрима.
type Config struct {
	Source    string
	BaseURL   string
	Timeout   time.Duration
	RateLimit int // запросов в минуту, 0 - без ограничения
	UserAgent string
}

// Client выполняет GET-запросы к JSON API с таймаутом и ограничением частоты.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
	metrics *metrics.Collector
}

// NewClient создает клиент. httpClient может быть nil - тогда используется пул cleanhttp.
func NewClient(cfg Config, httpClient *http.Client, logger *zap.Logger, m *metrics.Collector) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RateLimit)), 1)
	}

	return &Client{
		cfg:     cfg,
		http:    httpClient,
		limiter: limiter,
		logger:  logger.Named(cfg.Source),
		metrics: m,
	}
}

// Source возвращает имя апстрима
func (c *Client) Source() string {
	return c.cfg.Source
}

// BaseURL возвращает базовый адрес апстрима
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// GetJSON выполняет GET по url и декодирует тело в out.
// Ошибки: *TimeoutError при срабатывании таймаута запроса, ошибка ctx при отмене
// вызывающей стороной, *NetworkError, *StatusError, *ShapeError (невалидный JSON).
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &NetworkError{Source: c.cfg.Source, URL: url, Err: err}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	err := c.do(reqCtx, url, out)
	duration := time.Since(start)

	if err == nil {
		c.metrics.RecordUpstreamRequest(c.cfg.Source, metrics.OutcomeSuccess, duration)
		c.logger.Debug("upstream request completed",
			zap.String("url", url),
			zap.Duration("duration", duration))
		return nil
	}

	// Отмена вызывающей стороной не является ошибкой апстрима
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		err = &TimeoutError{Source: c.cfg.Source, URL: url, Timeout: c.cfg.Timeout}
	}

	c.metrics.RecordUpstreamRequest(c.cfg.Source, outcomeOf(err), duration)
	c.logger.Debug("upstream request failed",
		zap.String("url", url),
		zap.Duration("duration", duration),
		zap.Error(err))
	return err
}

func (c *Client) do(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Source: c.cfg.Source, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Source:     c.cfg.Source,
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			// Тело оборвалось по таймауту
			return &NetworkError{Source: c.cfg.Source, URL: url, Err: err}
		}
		return &ShapeError{Source: c.cfg.Source, Reason: "decode response", Err: err}
	}

	return nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return metrics.OutcomeTimeout
	case errors.Is(err, ErrStatus):
		return metrics.OutcomeStatus
	case errors.Is(err, ErrShape):
		return metrics.OutcomeShape
	default:
		return metrics.OutcomeNetwork
	}
}
