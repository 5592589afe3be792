package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"sintesi/internal/llm"
	applog "sintesi/internal/log"
	"sintesi/internal/services"
)

// Server exposes the summary pipeline and the expense store over JSON.
type Server struct {
	http.Server
	summaries   *services.SummaryService
	expenses    *services.ExpenseService
	chat        llm.Generator
	rateLimiter *rateLimiter

	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server. The chat
// generator may be nil when no API key is configured; the chat endpoint then
// reports unavailability while the rest of the API keeps working on
// fallback summaries.
func NewServer(addr string, summaries *services.SummaryService, expenses *services.ExpenseService, chat llm.Generator) *Server {
	mux := http.NewServeMux()

	// Every request gets a context logger tagged with a request ID.
	logger := applog.New(applog.Config{Component: applog.ComponentHTTP})
	handler := applog.Middleware(logger)(
		applog.RequestIDMiddleware(func(*http.Request) string { return generateRequestID() })(mux))

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: handler,
		},
		summaries:   summaries,
		expenses:    expenses,
		chat:        chat,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("POST /summary", s.withRequestDefaults(s.handleRefreshSummary))
	mux.HandleFunc("GET /summary/month", s.withRequestDefaults(s.handleGetMonthlySummary))
	mux.HandleFunc("GET /summary/year", s.withRequestDefaults(s.handleGetYearlySummary))

	mux.HandleFunc("POST /expenses", s.withRequestDefaults(s.handleCreateExpense))
	mux.HandleFunc("DELETE /expenses/{id}", s.withRequestDefaults(s.handleDeleteExpense))
	mux.HandleFunc("GET /expenses", s.withRequestDefaults(s.handleListExpenses))

	mux.HandleFunc("GET /chat", s.withRequestDefaults(s.handleChat))

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	return s
}

// withRequestDefaults adds rate limiting and request logging.
func (s *Server) withRequestDefaults(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ip := clientIP(r)
		ctx := r.Context()
		logger := applog.FromContext(ctx)

		logger.InfoContext(ctx, "Request started",
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", ip)

		// Rate limit the write paths; summary refreshes fan out LLM calls.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(ip) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", ip,
				"method", r.Method,
				"url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		logger.InfoContext(ctx, "Request completed",
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
