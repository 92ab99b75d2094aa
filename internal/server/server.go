// Package server собирает эталонный сервер записей: маршруты, middleware и
// фоновую очистку маркеров удаления.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/shelfsync/internal/server/handlers"
	"github.com/iudanet/shelfsync/internal/server/jwt"
	"github.com/iudanet/shelfsync/internal/server/metrics"
	"github.com/iudanet/shelfsync/internal/server/middleware"
	"github.com/iudanet/shelfsync/internal/server/storage"
)

// Store хранилище, которое нужно серверу целиком
type Store interface {
	storage.ZoneStorage
	storage.RecordStorage
	handlers.Pinger
}

// Config параметры сервера
type Config struct {
	Addr            string
	Version         string
	MaxBatchSize    int
	PageSize        int
	RateLimit       int
	RateWindow      time.Duration
	ChangeRetention time.Duration
	PruneInterval   time.Duration
}

// Server HTTP сервер записей
type Server struct {
	logger  *slog.Logger
	store   Store
	tokens  *jwt.Service
	metrics *metrics.Metrics
	limiter *middleware.RateLimiter
	http    *http.Server
	cfg     Config
	stop    sync.Once
}

// New собирает сервер
func New(logger *slog.Logger, store Store, tokens *jwt.Service, m *metrics.Metrics, cfg Config) *Server {
	s := &Server{
		logger:  logger,
		store:   store,
		tokens:  tokens,
		metrics: m,
		cfg:     cfg,
	}
	if cfg.RateLimit > 0 {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow, logger)
	}
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler возвращает полный стек: recovery -> logging -> rate limit -> metrics -> mux
func (s *Server) Handler() http.Handler {
	zones := handlers.NewZoneHandler(s.logger, s.store)
	records := handlers.NewRecordHandler(s.logger, s.store, s.metrics, handlers.RecordHandlerConfig{
		MaxBatchSize: s.cfg.MaxBatchSize,
		PageSize:     s.cfg.PageSize,
	})
	health := handlers.NewHealthHandler(s.logger, s.store, s.cfg.Version)

	auth := middleware.AuthMiddleware(s.logger, s.tokens)
	protected := func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}

	mux := http.NewServeMux()
	mux.Handle("PUT /api/v1/zones/{zone}", protected(zones.CreateZone))
	mux.Handle("GET /api/v1/zones/{zone}", protected(zones.GetZone))
	mux.Handle("PUT /api/v1/zones/{zone}/subscriptions/{id}", protected(zones.CreateSubscription))
	mux.Handle("GET /api/v1/zones/{zone}/subscriptions/{id}", protected(zones.GetSubscription))
	mux.Handle("POST /api/v1/zones/{zone}/records/modify", protected(records.Modify))
	mux.Handle("GET /api/v1/zones/{zone}/changes", protected(records.Changes))
	mux.HandleFunc("GET /health", health.Health)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	var h http.Handler = mux
	h = s.metrics.Middleware(h)
	if s.limiter != nil {
		h = s.limiter.Middleware(h)
	}
	h = middleware.LoggingWithSkip(s.logger, []string{"/health", "/metrics"})(h)
	h = middleware.RecoveryMiddleware(s.logger)(h)
	return h
}

// Run обслуживает запросы и периодически чистит старые маркеры удаления,
// пока ctx не отменён
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Server listening", "addr", s.cfg.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("Shutting down server")
		defer s.Close()
		return s.http.Shutdown(shutdownCtx)
	})

	if s.cfg.PruneInterval > 0 && s.cfg.ChangeRetention > 0 {
		g.Go(func() error {
			s.pruneLoop(ctx)
			return nil
		})
	}

	return g.Wait()
}

// Close останавливает фоновые задачи rate limiter
func (s *Server) Close() {
	s.stop.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
	})
}

func (s *Server) pruneLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Prune(ctx, time.Now())
		}
	}
}

// Prune удаляет маркеры удаления старше срока хранения
func (s *Server) Prune(ctx context.Context, now time.Time) {
	pruned, err := s.store.PruneChanges(ctx, now.Add(-s.cfg.ChangeRetention))
	if err != nil {
		s.logger.Error("Failed to prune change history", "error", err)
		return
	}
	s.metrics.Pruned(pruned)
	if pruned > 0 {
		s.logger.Info("Pruned change history", "tombstones", pruned)
	}
}
