package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wallet_api/internal/cache"
	"wallet_api/internal/config"
	"wallet_api/internal/handlers"
	"wallet_api/internal/logging"
	"wallet_api/internal/metrics"
	"wallet_api/internal/repository"
	"wallet_api/internal/repository/memory"
	"wallet_api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	logger := logging.SetupLogger(cfg.LogLevel)

	gin.SetMode(gin.ReleaseMode)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var (
		store    service.WalletStore
		checkers []handlers.HealthChecker
	)
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		mem := memory.New()
		store = mem
		checkers = append(checkers, mem)
		logger.Warn("Using in-memory wallet store, data will not survive a restart")
	default:
		poolConfig, err := pgxpool.ParseConfig(cfg.DB.URL())
		if err != nil {
			logger.Error("failed to parse db config", "err", err)
			os.Exit(1)
		}
		poolConfig.MaxConns = int32(cfg.DB.MaxConns)
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			logger.Error("failed to connect to database", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		repo := repository.NewWalletPGRepository(pool, logger)
		if cfg.DB.AutoMigrate {
			if err := repo.Migrate(ctx); err != nil {
				logger.Error("failed to migrate database", "err", err)
				os.Exit(1)
			}
		}
		store = repo
		checkers = append(checkers, repo)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []service.Option{
		service.WithMaxRetries(cfg.MaxRetries),
		service.WithRetryDelay(cfg.RetryBaseDelay),
		service.WithMetrics(metrics.NewPrometheus(registry)),
	}
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewClient(ctx, cache.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to redis", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		opts = append(opts, service.WithCache(cache.NewWalletCache(rdb, cfg.Redis.CacheTTL)))
		checkers = append(checkers, cache.NewHealthCheck(rdb))
	}

	svc := service.NewWalletService(store, logger, opts...)
	r := handlers.NewRouter(handlers.RouterDeps{
		Service:        svc,
		HealthCheckers: checkers,
		Metrics:        promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Starting server", slog.String("port", cfg.Port), slog.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("Server forced to shutdown", "err", err)
	}
	logger.Info("Server exiting")
}
