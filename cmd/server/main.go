package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oggyb/homies/internal/app"
	"github.com/oggyb/homies/internal/cache"
	"github.com/oggyb/homies/internal/config"
	"github.com/oggyb/homies/internal/db"
	"github.com/oggyb/homies/internal/events"
	"github.com/oggyb/homies/internal/logger"
	"github.com/oggyb/homies/internal/metrics"
	"github.com/oggyb/homies/internal/server"
	"github.com/oggyb/homies/internal/service/homies"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L() // slog.Logger pointer

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(ctx); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}
	defer redisCache.Close()

	// Init Kafka (no-op without brokers)
	publisher, err := events.NewPublisher(cfg.Kafka, log)
	if err != nil {
		log.Error("failed to init kafka producer", "err", err)
		return
	}
	defer publisher.Close()

	appCtx := app.New(cfg, database, redisCache, publisher, log)

	if cfg.Metrics.Addr != "" {
		go serveMetrics(ctx, cfg.Metrics.Addr, appCtx)
	}

	registrars := []server.Registrar{
		homies.NewRegistrar(appCtx),
	}

	if cfg.IsDevelopment() {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	log.Info("starting gRPC server", "host", cfg.GRPC.Host, "port", cfg.GRPC.Port)

	if err := server.StartGRPCServer(ctx, cfg, log, registrars...); err != nil {
		log.Error("failed to start gRPC server", "err", err)
	}
}

func serveMetrics(ctx context.Context, addr string, appCtx *app.AppContext) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	appCtx.Logger.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		appCtx.Logger.Error("metrics server failed", "err", err)
	}
}
