package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dlf/internal/config"
	dbRedis "github.com/kailas-cloud/dlf/internal/db/redis"
	"github.com/kailas-cloud/dlf/internal/db/sqlite"
	"github.com/kailas-cloud/dlf/internal/links"
	logpkg "github.com/kailas-cloud/dlf/internal/logger"
	"github.com/kailas-cloud/dlf/internal/metrics"
	collectionrepo "github.com/kailas-cloud/dlf/internal/repository/collection"
	documentrepo "github.com/kailas-cloud/dlf/internal/repository/document"
	libraryrepo "github.com/kailas-cloud/dlf/internal/repository/library"
	metadatarepo "github.com/kailas-cloud/dlf/internal/repository/metadata"
	searchrepo "github.com/kailas-cloud/dlf/internal/repository/search"
	"github.com/kailas-cloud/dlf/internal/secret"
	chiTransport "github.com/kailas-cloud/dlf/internal/transport/chi"
	feeduc "github.com/kailas-cloud/dlf/internal/usecase/feed"
	healthuc "github.com/kailas-cloud/dlf/internal/usecase/health"
	searchuc "github.com/kailas-cloud/dlf/internal/usecase/search"
	"github.com/kailas-cloud/dlf/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting dlf search server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("catalog", cfg.Catalog.Path),
		zap.Int("feeds", len(cfg.Feeds)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create search store", zap.Error(err))
	}
	defer store.Close()

	// Wait for search store to be ready
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Search store not ready", zap.Error(err))
	}
	logger.Info("Connected to search store")

	catalog, err := sqlite.Open(ctx, cfg.Catalog.Path)
	if err != nil {
		logger.Fatal("Failed to open catalog", zap.Error(err))
	}
	defer func() { _ = catalog.Close() }()

	// Register metrics explicitly (no init())
	metrics.Register()

	codec, err := secret.NewCodec(cfg.Security.EncryptionKey)
	if err != nil {
		logger.Fatal("Invalid encryption key", zap.Error(err))
	}
	linkBuilder, err := links.NewBuilder(cfg.Links.BaseURL, cfg.Links.Path)
	if err != nil {
		logger.Fatal("Invalid link configuration", zap.Error(err))
	}

	// Repositories
	searchRepo := searchuc.NewInstrumentedRepository(searchrepo.New(store, searchrepo.Config{
		KeyPrefix:       cfg.Search.KeyPrefix,
		FulltextMaxHits: cfg.Search.FulltextMaxHits,
		ChildLimit:      cfg.Search.ChildLimit,
	}), logger)
	collRepo := collectionrepo.New(catalog.DB())
	metaRepo := metadatarepo.New(catalog.DB())
	docRepo := documentrepo.New(catalog.DB())
	libRepo := libraryrepo.New(catalog.DB())

	// Use case services
	searchSvc := searchuc.New(codec, searchRepo, collRepo, metaRepo, linkBuilder,
		time.Duration(cfg.Search.TimeoutMS)*time.Millisecond)
	feedSvc := feeduc.New(docRepo, libRepo, linkBuilder, cfg.FeedSettings(), logger)
	healthSvc := healthuc.New(store, catalog)

	var limiter *chiTransport.RateLimiter
	if cfg.HTTP.RateLimitRPS > 0 {
		limiter = chiTransport.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
		go limiter.Run(ctx)
	}

	server := chiTransport.NewServer(searchSvc, feedSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Mount(r, chiTransport.Options{
		MetricsTokens: cfg.HTTP.MetricsTokens,
		Limiter:       limiter,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request. The query is omitted: it carries the settings token.
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
