package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	courier "github.com/nazarhussain/contact-courier/internal"
	"github.com/nazarhussain/contact-courier/internal/mailer"
	"github.com/nazarhussain/contact-courier/internal/ratelimit"
)

func main() {
	logger := newLogger()

	config, err := courier.LoadConfig()
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := newLimiter(ctx, logger, config)
	dispatcher := mailer.NewDispatcher(config.NewSender(), config.Email.From, config.Email.NotifyTo,
		mailer.WithTimeout(config.Email.Timeout),
		mailer.WithLogger(logger),
	)
	contact := courier.NewHandler(config, limiter, dispatcher)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(func(next http.Handler) http.Handler { return loggingMiddleware(logger, next) })
	r.Use(secHeaders)

	r.Get("/health", courier.HandleHealth)
	// Every method reaches the handler so it can answer 405 with CORS headers.
	r.Handle("/", contact)
	r.Handle("/v1/contact", contact)

	s := &http.Server{
		Addr:              config.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "err", err)
		}
	}()

	logger.Info("contact-courier listening",
		"addr", config.ListenAddr,
		"origins", len(config.AllowedOrigins),
		"email_provider", config.Email.Provider,
		"rate_limited", limiter != nil,
	)

	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// newLimiter builds the rate limiter for config.RedisURL. An empty URL
// disables rate limiting and "memory" selects the process-local store.
func newLimiter(ctx context.Context, logger *slog.Logger, config *courier.Config) *ratelimit.Limiter {
	opts := []ratelimit.Option{
		ratelimit.WithMaxRequests(config.RateLimitMax),
		ratelimit.WithWindow(config.RateLimitWindow),
		ratelimit.WithStoreTimeout(config.StoreTimeout),
		ratelimit.WithLogger(logger),
	}

	switch config.RedisURL {
	case "":
		logger.Warn("REDIS_URL not set, rate limiting disabled")
		return nil
	case courier.MemoryStoreURL:
		store := ratelimit.NewMemoryStore()
		store.StartJanitor(ctx)
		return ratelimit.New(store, opts...)
	}

	rdb, err := ratelimit.NewRedisClient(config.RedisURL)
	if err != nil {
		logger.Error("invalid REDIS_URL, rate limiting disabled", "err", err)
		return nil
	}
	store := ratelimit.NewRedisStore(rdb)

	pingCtx, cancel := context.WithTimeout(ctx, config.StoreTimeout)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		logger.Warn("redis unreachable, limiter will fail open until it recovers", "err", err)
	}
	return ratelimit.New(store, opts...)
}

func secHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "0")
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(baseLogger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestLogger := baseLogger.With(
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
		)

		ctx := courier.ContextWithLogger(r.Context(), requestLogger)
		r = r.WithContext(ctx)

		lrw := &loggingResponseWriter{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if rec := recover(); rec != nil {
				requestLogger.Error("panic recovered",
					"err", rec,
					"type", fmt.Sprintf("%T", rec),
					"stack", string(debug.Stack()),
				)
				lrw.WriteHeader(http.StatusInternalServerError)
			}
			level := slog.LevelInfo
			switch {
			case lrw.status >= 500:
				level = slog.LevelError
			case lrw.status >= 400:
				level = slog.LevelWarn
			}
			requestLogger.Log(ctx, level, "request completed",
				"status", lrw.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"bytes", lrw.length,
			)
		}()

		next.ServeHTTP(lrw, r)
	})
}

type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	length int
	wrote  bool
}

func (lrw *loggingResponseWriter) WriteHeader(status int) {
	if !lrw.wrote {
		lrw.ResponseWriter.WriteHeader(status)
		lrw.wrote = true
		lrw.status = status
	}
}

func (lrw *loggingResponseWriter) Write(p []byte) (int, error) {
	if !lrw.wrote {
		lrw.WriteHeader(http.StatusOK)
	}
	n, err := lrw.ResponseWriter.Write(p)
	lrw.length += n
	return n, err
}

func newLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: logLevelFromEnv(),
	}

	var handler slog.Handler
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func logLevelFromEnv() slog.Leveler {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
