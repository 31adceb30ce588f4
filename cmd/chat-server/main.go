// cmd/chat-server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"lumiere-concierge/internal/common/config"
	"lumiere-concierge/internal/common/database"
	"lumiere-concierge/internal/common/logger"
	"lumiere-concierge/internal/common/observability"
	"lumiere-concierge/internal/gateway"
	chathandler "lumiere-concierge/internal/handler/chat"
	"lumiere-concierge/internal/menu"
	"lumiere-concierge/internal/notify"
	"lumiere-concierge/internal/ratelimit"
	"lumiere-concierge/internal/reservation"
	"lumiere-concierge/internal/server"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting chat server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("chat-server")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		return err
	}, 10, 2*time.Second, zapLog, "PostgreSQL initialization")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Rate limiter (memory or Redis) ---
	var limiter chathandler.Limiter
	window := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second

	if cfg.RateLimit.Backend == "redis" {
		var rdb *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Database.Redis)
			return err
		}, 10, 2*time.Second, zapLog, "Redis initialization")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		zapLog.Info("Redis connected successfully")

		limiter = ratelimit.NewRedisLimiter(rdb.GetClient(), cfg.RateLimit.Limit, window)
	} else {
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.Limit, window)
	}

	// --- Domain wiring ---
	menuStore := menu.NewStore(pg.GetDB())
	prompts := menu.NewContextBuilder(menuStore, log)
	bookings := reservation.NewStore(pg.GetDB())
	gatewayClient := gateway.NewClient(&cfg.AIGateway, log)

	notifier, err := notify.New(ctx, &cfg.Notifications, log)
	if err != nil {
		zapLog.Fatal("notifier init failed", zap.Error(err))
	}

	handler := chathandler.NewHandler(limiter, prompts, gatewayClient, bookings, notifier, log, cfg.Server.AllowOrigin)
	srv := server.SetupRoutes(handler, obs)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		zapLog.Info("HTTP server listening", zap.String("addr", addr))
		if err := srv.Run(addr); err != nil {
			zapLog.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zapLog.Info("Shutting down...")
	if err := srv.Shutdown(30 * time.Second); err != nil {
		zapLog.Error("shutdown error", zap.Error(err))
	}
	zapLog.Info("Shutdown complete")
}
