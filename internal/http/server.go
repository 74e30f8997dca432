// Package http exposes the dashboard and receipt API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"ricevute/internal/backend"
	"ricevute/internal/cache"
	applog "ricevute/internal/log"
	"ricevute/internal/middleware/trace"
	"ricevute/internal/stats"
)

// Server serves the dashboard JSON API, chart images and exports on
// top of a receipt store and the aggregation engine.
type Server struct {
	http.Server

	store       backend.Backend
	engine      *stats.Engine
	logger      *applog.Logger
	rateLimiter *rateLimiter

	// Rendered artifacts (chart PNGs, CSV exports) by cursor. Purged
	// whenever the engine announces a change.
	artifactCache *cache.LRU[[]byte]

	stopCachePurge chan struct{}
	shutdownOnce   sync.Once
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(addr string, store backend.Backend, engine *stats.Engine, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	mux := http.NewServeMux()

	s := &Server{
		store:          store,
		engine:         engine,
		logger:         logger.WithComponent(applog.ComponentHTTP),
		rateLimiter:    newRateLimiter(),
		artifactCache:  cache.NewLRU[[]byte](50, 5*time.Minute),
		stopCachePurge: make(chan struct{}),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/dashboard/daily", s.handleDailySeries)
	mux.HandleFunc("GET /api/dashboard/categories", s.handleCategories)
	mux.HandleFunc("GET /api/dashboard/merchants", s.handleMerchants)

	mux.HandleFunc("GET /api/cursor", s.handleGetCursor)
	mux.HandleFunc("POST /api/cursor", s.handleMoveCursor)

	mux.HandleFunc("POST /api/receipts", s.withRateLimit(s.handleUpsertReceipt))
	mux.HandleFunc("DELETE /api/receipts/{id}", s.withRateLimit(s.handleDeleteReceipt))

	mux.HandleFunc("GET /api/export/month.csv", s.handleExportCSV)
	mux.HandleFunc("GET /api/charts/daily.png", s.handleDailyChart)
	mux.HandleFunc("GET /api/charts/categories.png", s.handleCategoriesChart)

	s.Server = http.Server{
		Addr:    addr,
		Handler: trace.Middleware(applog.Middleware(logger)(mux)),
	}

	go s.purgeOnChange()

	return s
}

// Handler returns the full middleware-wrapped handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.Server.Handler
}

// purgeOnChange drops rendered artifacts whenever the snapshot or the
// cursor changes. The subscription channel coalesces bursts.
func (s *Server) purgeOnChange() {
	changes := s.engine.Subscribe()
	for {
		select {
		case <-changes:
			s.artifactCache.Purge()
		case <-s.stopCachePurge:
			return
		}
	}
}

// refresh reloads the snapshot from the store into the engine. Called
// after every write so reads observe their own effects.
func (s *Server) refresh(ctx context.Context) error {
	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return err
	}
	s.engine.SetSnapshot(snapshot)
	s.artifactCache.Purge()
	return nil
}

// Shutdown stops the purge goroutine and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		close(s.stopCachePurge)
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
