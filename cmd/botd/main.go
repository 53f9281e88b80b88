// cmd/botd/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"abiturbot/internal/catalog"
	"abiturbot/internal/common/config"
	"abiturbot/internal/common/database"
	"abiturbot/internal/common/logger"
	"abiturbot/internal/common/observability"
	"abiturbot/internal/conversation"
	"abiturbot/internal/engine"
	"abiturbot/internal/payments"
	"abiturbot/internal/payments/click"
	"abiturbot/internal/server"
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
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting admission bot...", zap.String("version", cfg.App.Version))

	obs := observability.New("abiturbot")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Catalog ---
	cat, err := catalog.Load(cfg.Catalog.Path, log)
	if err != nil {
		zapLog.Fatal("catalog load failed", zap.Error(err))
	}

	// --- Payment Store (Redis when configured, in-memory otherwise) ---
	var payStore payments.Store
	if cfg.Database.Redis.Address != "" {
		var redis *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			// Test the connection with context
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		zapLog.Info("Redis connected successfully")
		payStore = payments.NewRedisStore(redis)
	} else {
		zapLog.Warn("Redis address not set, using in-memory payment store")
		payStore = payments.NewMemoryStore()
	}

	// --- Payment Gateway ---
	if !cfg.Payment.IsConfigured() {
		zapLog.Warn("Click credentials absent, score submissions will be rejected until configured")
	}
	gateway := click.NewClient(cfg.Payment, log)
	webhook := click.NewWebhookService(cfg.Payment, payStore, log, obs)

	// --- Conversation Engine ---
	replies := server.NewReplySink()
	conv := conversation.NewEngine(conversation.Deps{
		PaymentCfg:  cfg.Payment,
		Catalog:     cat,
		Sessions:    conversation.NewSessionStore(),
		Payments:    payStore,
		Gateway:     gateway,
		Recommender: engine.New(log),
		Renderer:    replies,
		Logger:      log,
		Obs:         obs,
	})

	// --- HTTP Server ---
	router := server.NewRouter(server.RouterConfig{
		WebhookHandler: server.NewWebhookHandler(webhook, log),
		BotHandler:     server.NewBotHandler(conv, replies),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("Admission bot stopped gracefully")
}
