package main

import (
	"context"
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

	"github.com/cen-na/agricarte/internal/config"
	dbRedis "github.com/cen-na/agricarte/internal/db/redis"
	logpkg "github.com/cen-na/agricarte/internal/logger"
	"github.com/cen-na/agricarte/internal/metrics"
	budgetrepo "github.com/cen-na/agricarte/internal/repository/budget"
	contractrepo "github.com/cen-na/agricarte/internal/repository/contract"
	personrepo "github.com/cen-na/agricarte/internal/repository/person"
	"github.com/cen-na/agricarte/internal/repository/sirenecache"
	chiTransport "github.com/cen-na/agricarte/internal/transport/chi"
	"github.com/cen-na/agricarte/internal/transport/sirene"
	contractuc "github.com/cen-na/agricarte/internal/usecase/contract"
	healthuc "github.com/cen-na/agricarte/internal/usecase/health"
	personuc "github.com/cen-na/agricarte/internal/usecase/person"
	"github.com/cen-na/agricarte/internal/usecase/quota"
	siretuc "github.com/cen-na/agricarte/internal/usecase/siret"
	usageuc "github.com/cen-na/agricarte/internal/usecase/usage"
	"github.com/cen-na/agricarte/internal/version"
)

func main() {
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

	logger.Info("Starting agricarte API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("sirene_base_url", cfg.Sirene.BaseURL),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Explicit registration, no init().
	metrics.RegisterHTTPMetrics()
	metrics.RegisterSireneMetrics()

	registry := sirene.NewClient(&sirene.Config{
		BaseURL: cfg.Sirene.BaseURL,
		APIKey:  cfg.Sirene.APIKey,
		Timeout: time.Duration(cfg.Sirene.TimeoutSec) * time.Second,
		Logger:  logger,
	})
	var provider siretuc.Provider = registry

	// Quota sits under the cache: only requests reaching INSEE are counted.
	var quotaReader usageuc.QuotaReader
	if q := cfg.Sirene.Quota; q.Enabled() {
		action, err := quota.ParseAction(q.Action)
		if err != nil {
			logger.Fatal("Invalid SIRENE quota action", zap.Error(err))
		}
		tracker := quota.NewTracker("sirene", q.DailyLimit, q.MonthlyLimit, action, logger).
			WithStore(ctx, budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour))
		provider = quota.NewGuard(provider, tracker, metrics.SireneQuotaUsed)
		quotaReader = tracker
	}

	if cfg.Storage.CacheEnabled() {
		ttl := time.Duration(cfg.Storage.SireneCacheTTLSec) * time.Second
		provider = sirenecache.New(provider, store, ttl, metrics.SireneCacheTotal, logger)
	}

	contracts := contractrepo.New(store)
	persons := personrepo.New(store)

	personSvc := personuc.New(persons).WithLimit(cfg.Search.Limit)
	siretSvc := siretuc.New(provider, contracts, logger)
	contractSvc := contractuc.New(contracts, personSvc, logger)
	healthSvc := healthuc.New(store, registry)
	usageSvc := usageuc.New(quotaReader)

	server := chiTransport.NewServer(personSvc, siretSvc, contractSvc, healthSvc, usageSvc, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.Recoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.RequestLogger(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprint(w, `{"code":"not_found","message":"route not found"}`)
	})
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
