// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/market"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/portfolio"
)

// StatusClientClosedRequest - клиент ушел раньше, чем мы ответили (nginx 499)
const StatusClientClosedRequest = 499

const shutdownTimeout = 10 * time.Second

// MarketService - то, что сервер берет из market.Service
type MarketService interface {
	Trending(ctx context.Context) (market.TrendingResult, error)
	Prices(ctx context.Context, ids []string) (market.PriceResult, error)
	Snapshot(ctx context.Context, ids []string) (market.Snapshot, error)
}

// Config настраивает HTTP API
type Config struct {
	Addr string
	// DefaultIDs используются в /api/prices и /api/snapshot без параметра ids
	DefaultIDs []string
}

// Server отдает данные дашборда по HTTP в JSON
type Server struct {
	cfg      Config
	market   MarketService
	valuator *portfolio.Valuator
	holdings []portfolio.Holding
	logger   *zap.Logger
	gatherer prometheus.Gatherer
	started  time.Time
}

type errorResponse struct {
	Error string `json:"error"`
}

// New создает сервер. valuator может быть nil - тогда /api/portfolio отвечает 404.
func New(cfg Config, svc MarketService, valuator *portfolio.Valuator, holdings []portfolio.Holding, logger *zap.Logger, gatherer prometheus.Gatherer) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		cfg:      cfg,
		market:   svc,
		valuator: valuator,
		holdings: holdings,
		logger:   logger.Named("server"),
		gatherer: gatherer,
		started:  time.Now(),
	}
}

// Handler возвращает маршрутизатор API
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/trending", s.handleTrending)
	mux.HandleFunc("GET /api/prices", s.handlePrices)
	mux.HandleFunc("GET /api/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /api/portfolio", s.handlePortfolio)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return s.logRequests(mux)
}

// Run слушает cfg.Addr до отмены ctx, затем корректно останавливается.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	res, err := s.market.Trending(r.Context())
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.sendJSON(w, http.StatusOK, res)
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	res, err := s.market.Prices(r.Context(), s.idsFrom(r))
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.sendJSON(w, http.StatusOK, res)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	res, err := s.market.Snapshot(r.Context(), s.idsFrom(r))
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.sendJSON(w, http.StatusOK, res)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if s.valuator == nil {
		s.sendJSON(w, http.StatusNotFound, errorResponse{Error: "portfolio is not configured"})
		return
	}
	val, err := s.valuator.Value(r.Context(), s.holdings)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.sendJSON(w, http.StatusOK, val)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) idsFrom(r *http.Request) []string {
	ids := market.NormalizeIDs(r.URL.Query()["ids"])
	if len(ids) == 0 {
		return s.cfg.DefaultIDs
	}
	return ids
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Debug("failed to write response", zap.Error(err))
	}
}

// sendError переводит ошибку сервиса в код ответа. Сервис возвращает ошибки
// только при отмене или программной ошибке, отказ апстримов сюда не доходит.
func (s *Server) sendError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, context.Canceled):
		status = StatusClientClosedRequest
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		s.logger.Debug("request aborted", zap.String("path", r.URL.Path), zap.Error(err))
	}
	s.sendJSON(w, status, errorResponse{Error: err.Error()})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
