// Package http exposes the expense analytics engine as a JSON API.
package http

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"expenseiq/internal/cache"
	"expenseiq/internal/core"
	"expenseiq/internal/log"
	"expenseiq/internal/services"
)

// ExpenseService is the application surface the API needs.
type ExpenseService interface {
	AddExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	ImportCSV(ctx context.Context, r io.Reader) (core.Summary, error)
	ListExpenses(ctx context.Context) ([]core.Expense, error)
	MonthDashboard(ctx context.Context, month string) (services.Dashboard, error)
}

type Server struct {
	http.Server
	svc         ExpenseService
	rateLimiter *rateLimiter
	metrics     *securityMetrics
	structured  *log.StructuredLogger

	// Dashboard responses are cached per month filter. Any mutation
	// clears the whole cache: a single new record can shift category
	// means and reorder every aggregate.
	dashCache *cache.LRUCache[services.Dashboard]
	cacheMgr  *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. mutationsPerMinute is the per-client rate limit budget;
// non-positive values fall back to the limiter's default.
func NewServer(addr string, svc ExpenseService, logger *log.Logger, cacheSize, mutationsPerMinute int) *Server {
	mux := http.NewServeMux()

	if cacheSize <= 0 {
		cacheSize = 64
	}

	s := &Server{
		svc:         svc,
		rateLimiter: newRateLimiter(mutationsPerMinute),
		metrics:     &securityMetrics{},
		structured:  log.NewStructuredLogger(logger.WithComponent(log.ComponentHTTP)),
		dashCache:   cache.NewLRUCache[services.Dashboard](cacheSize, 5*time.Minute),
		cacheMgr:    cache.NewManager(),
	}
	s.Server = http.Server{
		Addr:    addr,
		Handler: log.Middleware(logger)(mux),
	}

	s.cacheMgr.Register(s.dashCache)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/api/expenses", s.withSecurityHeaders(s.handleExpenses))
	mux.HandleFunc("/api/expenses/", s.withSecurityHeaders(s.handleExpenseByID))
	mux.HandleFunc("/api/expenses/upload", s.withSecurityHeaders(s.handleUpload))
	mux.HandleFunc("/api/dashboard", s.withSecurityHeaders(s.handleDashboard))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		if detectSuspiciousRequest(r, s.metrics) {
			log.FromContext(ctx).WarnContext(ctx, "Suspicious request",
				log.FieldClientIP, clientIP,
				log.FieldPath, r.URL.Path,
				log.FieldRequestID, requestID)
		}

		s.structured.LogHTTPStart(ctx, r, clientIP, requestID)

		if !s.rateLimiter.allowRequest(r.Method, clientIP, s.metrics) {
			log.FromContext(ctx).WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		s.structured.LogHTTPEnd(ctx, r, rw.statusCode, duration.Milliseconds(), clientIP, requestID)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// invalidateDashboards drops every cached month view.
func (s *Server) invalidateDashboards() {
	s.dashCache.Clear()
}
