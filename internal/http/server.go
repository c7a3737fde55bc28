// Package http serves the JSON API consumed by the dashboard frontend.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	"fintrack/internal/store"
)

const (
	reportCacheSize = 100
	reportCacheTTL  = 5 * time.Minute
)

type Server struct {
	http.Server

	txs     *services.TransactionService
	budgets store.BudgetStore
	prefs   store.PreferenceStore

	detector *security.Detector
	limiter  *ratelimit.Limiter
	cacheMgr *cache.Manager

	// Dashboard reports are expensive to rebuild, so they are cached per
	// month and the whole cache is purged on any write: edits to past
	// months still move the trailing trend and the insights.
	reportCache *cache.LRUCache[core.Report]

	now func() time.Time

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, txs *services.TransactionService, budgets store.BudgetStore, prefs store.PreferenceStore) *Server {
	mux := http.NewServeMux()

	s := &Server{
		txs:         txs,
		budgets:     budgets,
		prefs:       prefs,
		detector:    security.NewDetector(),
		limiter:     ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		cacheMgr:    cache.NewManager(),
		reportCache: cache.NewLRUCache[core.Report](reportCacheSize, reportCacheTTL),
		now:         time.Now,
	}

	s.cacheMgr.Register(s.reportCache)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/api/transactions", s.handleTransactions)
	mux.HandleFunc("/api/transactions/", s.handleTransactionByID)
	mux.HandleFunc("/api/dashboard", s.handleDashboard)
	mux.HandleFunc("/api/budget", s.handleBudget)
	mux.HandleFunc("/api/preferences", s.handlePreferences)
	mux.HandleFunc("/api/categories", s.handleCategories)

	traceMW := trace.NewMiddleware(s.detector.ExtractClientIP)
	headersMW := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	s.Server = http.Server{
		Addr:    addr,
		Handler: traceMW.Middleware(headersMW.Middleware(s.guard(mux))),
	}
	return s
}

// guard rate-limits write requests and logs probe traffic. Reads stay
// unlimited: the dashboard polls.
func (s *Server) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request",
				"method", r.Method,
				"path", r.URL.Path,
				"client_ip", s.detector.ExtractClientIP(r))
		}

		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			clientIP := s.detector.ExtractClientIP(r)
			if !s.limiter.Allow(clientIP) {
				slog.WarnContext(r.Context(), "Rate limit exceeded",
					"client_ip", clientIP,
					"method", r.Method,
					"path", r.URL.Path)
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// invalidateReports drops every cached dashboard report. Called after any
// write that can move derived figures.
func (s *Server) invalidateReports() {
	s.reportCache.Purge()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// The store is wired at construction; a cheap read proves it responds.
	if _, err := s.prefs.Preferences(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "store not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown stops the HTTP listener and the background cleanup loops.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.cacheMgr.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
