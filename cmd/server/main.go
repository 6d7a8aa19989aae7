package main // read API for the dashboard plus the operator reload endpoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/config"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/database"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/docstore"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/handler"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/logging"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/middleware"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/model"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/queue"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/repository"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/router"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/service"
)

var errDefaultSecret = errors.New("JWT_SECRET must be set in production")

func main() {
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err := run(cfg); err != nil {
		logging.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	if cfg.UsesDefaultSecret() && cfg.Env == "production" {
		return errDefaultSecret
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, dialect, err := database.OpenConfig(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("relational store unavailable: %w", err)
	}
	defer db.Close()

	deps := service.Deps{SQL: db, Dialect: dialect, Publisher: service.NewAMQPPublisher(cfg.RabbitURL)}
	if store, err := docstore.Open(ctx, cfg.Mongo); err != nil {
		logging.Warn().Err(err).Msg("document store unavailable; reloads will skip it")
	} else {
		deps.Docs = store
		defer func() { _ = store.Close(context.Background()) }()
	}

	rdb := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if rdb == nil {
		logging.Warn().Msg("redis unavailable; run lock, cache and rate limit disabled")
	} else {
		deps.Locker = service.NewRedisLocker(rdb, 0)
		defer rdb.Close()
	}

	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)
	pipeline := service.NewPipeline(deps, service.Options{Sources: cfg.Sources, BatchSize: cfg.BatchSize})
	e := router.New(router.Handlers{
		Verification: &handler.VerificationHandler{Reporter: repository.NewIntegrityRepo(db)},
		Merged: &handler.MergedHandler{Dataset: func() (model.Dataset, error) {
			return service.ReadDataset(cfg.Sources)
		}},
		Reload: &handler.ReloadHandler{Runner: pipeline, Cache: cache},
	}, router.Options{
		JWTSecret: cfg.JWTSecret,
		Cache:     cache.Middleware(),
		RateLimit: middleware.RateLimit(config.LoadRateLimitConfig(), rdb),
	})

	go func() {
		err := queue.StartRunLogConsumer(ctx, cfg.RabbitURL, "logs")
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Warn().Err(err).Msg("run log consumer stopped")
		}
	}()

	addr := ":" + cfg.Port
	go func() {
		logging.Info().Str("addr", addr).Str("env", cfg.Env).Str("dialect", string(dialect)).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
