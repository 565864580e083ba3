// Package httputil builds the chi router shared by the HTTP services.
package httputil

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RouterConfig defines the common middleware settings.
type RouterConfig struct {
	RequestTimeout time.Duration
	AllowedOrigins []string
	RateLimit      int
	Burst          int
}

// NewRouter creates a chi router with request ids, panic recovery, access
// logging, CORS, a per-request timeout and a global rate limit.
func NewRouter(cfg RouterConfig, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)
	if cfg.RateLimit > 0 {
		r.Use(RateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst)))
	}
	if cfg.RequestTimeout > 0 {
		r.Use(Timeout(cfg.RequestTimeout))
	}
	return r
}

// AccessLog logs every request once it completes.
func AccessLog(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, req)
			logger.Info("Request",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestId", middleware.GetReqID(req.Context())),
			)
		})
	}
}

// RateLimit rejects requests with 429 once l is exhausted.
func RateLimit(l *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !l.Allow() {
				w.Header().Set("Retry-After", "1")
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

// Timeout cancels the request context after d. WebSocket upgrades are
// long-lived and pass through untouched.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		timed := middleware.Timeout(d)(next)
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if strings.EqualFold(req.Header.Get("Upgrade"), "websocket") {
				next.ServeHTTP(w, req)
				return
			}
			timed.ServeHTTP(w, req)
		})
	}
}
