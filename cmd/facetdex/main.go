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

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/kailas-cloud/facetdex/internal/config"
	"github.com/kailas-cloud/facetdex/internal/db"
	dbBadger "github.com/kailas-cloud/facetdex/internal/db/badger"
	dbRedis "github.com/kailas-cloud/facetdex/internal/db/redis"
	"github.com/kailas-cloud/facetdex/internal/domain/search/field"
	"github.com/kailas-cloud/facetdex/internal/domain/search/fuzzy"
	logpkg "github.com/kailas-cloud/facetdex/internal/logger"
	"github.com/kailas-cloud/facetdex/internal/metrics"
	"github.com/kailas-cloud/facetdex/internal/repository/catalog"
	"github.com/kailas-cloud/facetdex/internal/textsim/trigram"
	"github.com/kailas-cloud/facetdex/internal/textsim/unaccent"
	chiTransport "github.com/kailas-cloud/facetdex/internal/transport/chi"
	healthuc "github.com/kailas-cloud/facetdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/facetdex/internal/usecase/search"
	"github.com/kailas-cloud/facetdex/internal/version"
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

	logger.Info("Starting facetdex API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	metrics.RegisterHTTPMetrics()
	metrics.RegisterSearchMetrics()

	store, err := openStore(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database", zap.String("driver", store.Driver()))

	fields, err := searchFields(cfg.Search.Fields)
	if err != nil {
		logger.Fatal("Invalid search fields", zap.Error(err))
	}
	locale, err := language.Parse(cfg.Search.Locale)
	if err != nil {
		logger.Fatal("Invalid search locale", zap.String("locale", cfg.Search.Locale), zap.Error(err))
	}

	repo := catalog.New(store, cfg.Storage.KeyPrefix)
	engine := fuzzy.NewEngine(trigram.Measure{}, nil, unaccent.Fold).WithAlwaysFold(cfg.Search.FoldDiacritics)

	searchSvc := searchuc.New(repo, repo, engine, fields).
		WithThreshold(*cfg.Search.Threshold).
		WithFacets(cfg.Search.Facets, *cfg.Search.HierarchyFacet).
		WithOrdering(locale, cfg.Search.Ordering...).
		WithPagination(cfg.Pagination.DefaultPageSize, cfg.Pagination.MaxPageSize)
	healthSvc := healthuc.New(store, repo)

	server := chiTransport.NewServer(searchuc.NewInstrumented(searchSvc, logger), healthSvc, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, logger),
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

func openStore(cfg config.DatabaseConfig, logger *zap.Logger) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverRedis, config.DriverValkey:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Driver:   cfg.Driver,
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s store: %w", cfg.Driver, err)
		}
		return s, nil
	case config.DriverBadger:
		s, err := dbBadger.Open(dbBadger.Config{Dir: cfg.Dir, InMemory: cfg.InMemory, Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("open badger store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func searchFields(cfgs []config.SearchFieldConfig) ([]field.SearchField, error) {
	fields := make([]field.SearchField, len(cfgs))
	for i, c := range cfgs {
		f, err := field.New(c.Name, field.Preprocessing(c.Preprocessing))
		if err != nil {
			return nil, fmt.Errorf("search field %d: %w", i, err)
		}
		fields[i] = f
	}
	return fields, nil
}
