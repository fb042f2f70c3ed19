package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shakesearch/internal/config"
	"github.com/kailas-cloud/shakesearch/internal/corpus"
	dbRedis "github.com/kailas-cloud/shakesearch/internal/db/redis"
	logpkg "github.com/kailas-cloud/shakesearch/internal/logger"
	"github.com/kailas-cloud/shakesearch/internal/matcher"
	"github.com/kailas-cloud/shakesearch/internal/metrics"
	"github.com/kailas-cloud/shakesearch/internal/repository/rescache"
	"github.com/kailas-cloud/shakesearch/internal/searchui"
	chiTransport "github.com/kailas-cloud/shakesearch/internal/transport/chi"
	gen "github.com/kailas-cloud/shakesearch/internal/transport/generated"
	"github.com/kailas-cloud/shakesearch/internal/version"
	healthuc "github.com/kailas-cloud/shakesearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/shakesearch/internal/usecase/search"
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

	logger.Info("Starting shakesearch server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("corpus", cfg.Corpus.Path),
		zap.Strings("matchers", cfg.Search.Matchers),
		zap.String("strategy", cfg.Search.Strategy),
	)

	works, err := corpus.Load(cfg.Corpus.Path)
	if err != nil {
		logger.Fatal("Failed to load corpus", zap.Error(err))
	}

	logger.Info("Building indexes", zap.Int("lines", works.Len()))
	start := time.Now()
	matchers, err := matcher.Build(works, cfg.Search.Modes(), cfg.Search.MaxResults)
	if err != nil {
		logger.Fatal("Failed to build matchers", zap.Error(err))
	}
	defer matcher.CloseAll(matchers)
	logger.Info("Indexes built", zap.Duration("took", time.Since(start)))

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	named := make([]searchuc.NamedMatcher, len(matchers))
	for i, m := range matchers {
		named[i] = searchuc.NamedMatcher{Mode: m.Mode, Matcher: m.Matcher}
	}
	searchSvc := searchuc.New(named, logger).
		WithStrategy(searchuc.Strategy(cfg.Search.Strategy)).
		WithMaxResults(cfg.Search.MaxResults).
		WithTimeout(time.Duration(cfg.Search.TimeoutSec) * time.Second)

	// Pass nil interfaces (not typed nil pointers) when the cache is disabled.
	var (
		searcher    chiTransport.Searcher = searchSvc
		cachePinger healthuc.CachePinger
	)
	if cfg.Cache.Enabled {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.Cache.Addrs,
			Password:   cfg.Cache.Password,
			Standalone: cfg.Cache.Standalone,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(context.Background(), time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to cache", zap.Strings("addrs", cfg.Cache.Addrs))

		searcher = rescache.New(
			searchSvc, store, time.Duration(cfg.Cache.TTLSec)*time.Second, metrics.SearchCacheTotal, logger,
		).WithScope(cacheScope(cfg.Search))
		cachePinger = store
	}

	healthSvc := healthuc.New(works, cachePinger)

	// Without a backend URL the page calls this server's API in process, skipping
	// the middleware chain so a page view is logged and counted once.
	uiTimeout := time.Duration(cfg.UI.RequestTimeoutSec) * time.Second
	var api http.Handler
	backendURL := cfg.UI.BackendURL
	var backend searchui.Doer = &http.Client{Timeout: uiTimeout}
	if backendURL == "" {
		backendURL = fmt.Sprintf("http://localhost:%d", cfg.HTTP.Port)
		backend = searchui.HandlerDoer{
			Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { api.ServeHTTP(w, r) }),
			Timeout: uiTimeout,
		}
	}
	ui, err := searchui.NewController(backendURL, backend, logger)
	if err != nil {
		logger.Fatal("Failed to create search page controller", zap.Error(err))
	}

	// Create chi server
	server := chiTransport.NewServer(searcher, healthSvc, ui, logger)
	api = gen.HandlerWithOptions(server, gen.ChiServerOptions{
		ErrorHandlerFunc: chiTransport.ParamErrorHandler,
	})

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(searchui.Static()))))
	gen.HandlerWithOptions(server, gen.ChiServerOptions{
		BaseRouter:       r,
		ErrorHandlerFunc: chiTransport.ParamErrorHandler,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// cacheScope identifies the matcher setup a cached result was produced by.
func cacheScope(s config.SearchConfig) string {
	return fmt.Sprintf("%s:%s:%d", s.Strategy, strings.Join(s.Matchers, ","), s.MaxResults)
}
