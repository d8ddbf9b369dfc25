package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/gateway"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/repository"
	"shareit/internal/retry"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}
	logger := logging.Component(baseLogger, "gateway-main")

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
	}

	quota, cleanup := initQuota(cfg, logger)
	defer cleanup()

	client := gateway.NewBackendClient(cfg.Gateway.BackendURL, cfg.Gateway.Timeout,
		retry.FromConfig(cfg.Gateway.Retry), logging.Component(baseLogger, "backend-client"))
	srv := gateway.NewServer(cfg.Gateway, client, quota, logging.Component(baseLogger, "gateway"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// initQuota prefers Redis and falls back to process memory when Redis is
// not configured or fails at runtime.
func initQuota(cfg *config.Config, logger *zerolog.Logger) (domain.QuotaStore, func()) {
	if cfg.Gateway.UserRateLimit.Requests <= 0 {
		return nil, func() {}
	}

	memory := repository.NewMemoryQuotaRepository()
	if cfg.Redis.Address == "" {
		logger.Info().Msg("redis not configured, using in-memory quota")
		return memory, func() {}
	}

	client := repository.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := repository.Ping(pingCtx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, starting on in-memory quota")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}

	failover := repository.NewFailoverQuotaRepository(
		repository.NewRedisQuotaRepository(client), memory, logging.Component(logger, "quota"))
	if cfg.Monitoring.PrometheusEnabled {
		metrics.RegisterQuotaDegraded(failover.Degraded)
	}
	return failover, func() { _ = repository.Close(client) }
}
