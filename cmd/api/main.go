package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-phone-auth/internal/application/auth"
	"github.com/go-phone-auth/internal/application/notification"
	"github.com/go-phone-auth/internal/config"
	"github.com/go-phone-auth/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-phone-auth/internal/infrastructure/jwt"
	"github.com/go-phone-auth/internal/infrastructure/memory"
	redisinfra "github.com/go-phone-auth/internal/infrastructure/redis"
	"github.com/go-phone-auth/internal/infrastructure/sns"
	transporthttp "github.com/go-phone-auth/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	setupLogger(cfg)

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables, cfg.CodeStore == config.CodeStoreDynamo)

	codes, closeCodes, err := newCodeStore(cfg, dynamoClient)
	if err != nil {
		log.Fatalf("code store: %v", err)
	}
	defer closeCodes()

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		if cfg.IsProduction() {
			log.Fatalf("JWT provider: %v", err)
		}
		slog.Warn("JWT keys not available, using an ephemeral key pair", "error", err)
		if jwtProvider, err = jwtinfra.NewEphemeralProvider(cfg.JWTExpiry); err != nil {
			log.Fatalf("JWT provider: %v", err)
		}
	}

	// SNS SMS sender (falls back to logging outside production).
	smsSender, err := sns.NewSender(cfg)
	if err != nil {
		cause := err
		if smsSender, err = sns.FallbackSender(cfg, cause); err != nil {
			log.Fatalf("SMS sender: %v", err)
		}
		slog.Warn("SNS sender not available, codes will only be logged", "error", cause)
	}
	dispatcher := notification.NewDispatcher(smsSender, notification.Options{
		Workers:       cfg.SMSWorkers,
		QueueSize:     cfg.SMSQueueSize,
		RatePerSecond: cfg.SMSRatePerSecond,
	})

	deps := &transporthttp.Deps{
		UserRepo:    dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users, cfg.DynamoTables.PhoneNumbers),
		Codes:       codes,
		Notifier:    dispatcher,
		JWTProvider: jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "code_store", cfg.CodeStore)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
	if err := dispatcher.Close(ctx); err != nil {
		slog.Warn("sms queue not drained", "error", err)
	}
	slog.Info("server stopped")
}

func setupLogger(cfg *config.Config) {
	var h slog.Handler
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(h))
}

// newCodeStore returns the configured pending-verification backend and a
// function releasing its resources.
func newCodeStore(cfg *config.Config, dynamoClient dynamo.API) (auth.CodeStore, func(), error) {
	switch cfg.CodeStore {
	case config.CodeStoreMemory:
		s := memory.NewCodeStore(time.Minute)
		return s, s.Close, nil
	case config.CodeStoreRedis:
		client := redisinfra.NewClient(cfg)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		return redisinfra.NewCodeStore(client), func() { _ = client.Close() }, nil
	case config.CodeStoreDynamo:
		return dynamo.NewVerificationRepo(dynamoClient, cfg.DynamoTables.PendingVerifications), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown CODE_STORE %q", cfg.CodeStore)
	}
}
