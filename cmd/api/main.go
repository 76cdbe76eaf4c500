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

	"github.com/joho/godotenv"
	"github.com/shopshap/internal/application/verification"
	"github.com/shopshap/internal/config"
	"github.com/shopshap/internal/domain"
	"github.com/shopshap/internal/infrastructure/dynamo"
	jwtinfra "github.com/shopshap/internal/infrastructure/jwt"
	"github.com/shopshap/internal/infrastructure/memory"
	redisinfra "github.com/shopshap/internal/infrastructure/redis"
	"github.com/shopshap/internal/infrastructure/sns"
	transporthttp "github.com/shopshap/internal/transport/http"
	appmiddleware "github.com/shopshap/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	codes, limits, err := newStores(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}

	sender, err := sns.NewSender(ctx, cfg)
	if err != nil {
		log.Fatalf("sms gateway: %v", err)
	}
	if !sender.Configured() {
		logger.Warn("SMS gateway credentials missing; sends will fail until configured")
	}

	deps := verification.ServiceDeps{
		Codes:          verification.NewCodeStore(codes, cfg.OTPTTL, cfg.OTPMaxAttempts, nil),
		Limiter:        verification.NewRateLimiter(limits, cfg.RateLimitWindow, cfg.RateLimitMax, nil),
		Gateway:        sender,
		CodeTTL:        cfg.OTPTTL,
		GatewayTimeout: cfg.GatewayTimeout,
		Logger:         logger,
	}

	// User sync and tokens are optional; the flow works without them.
	if cfg.UserSyncEnabled {
		if client, err := dynamo.NewClient(ctx, cfg); err == nil {
			dynamo.Bootstrap(ctx, client, cfg.DynamoUsers)
			deps.UserSync = dynamo.NewUserRepo(client, cfg.DynamoUsers)
		} else {
			logger.Warn("user sync disabled", "err", err)
		}
	}
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		deps.Tokens = p
	} else {
		logger.Warn("JWT provider not available", "err", err)
	}

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		Verification: verification.NewService(deps),
		IPLimiter:    appmiddleware.NewRateLimiter(ctx, rate.Limit(cfg.IPRateLimitRPS), cfg.IPRateLimitBurst),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.GatewayTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "store", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsDevelopment() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func newStores(ctx context.Context, cfg *config.Config) (verification.Store[domain.OtpRecord], verification.Store[domain.RateLimitRecord], error) {
	switch cfg.StoreBackend {
	case "redis":
		client, err := redisinfra.NewClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return redisinfra.NewStore[domain.OtpRecord](client, "verification:code:"),
			redisinfra.NewStore[domain.RateLimitRecord](client, "verification:rate:"),
			nil
	case "memory", "":
		codes := memory.NewStore[domain.OtpRecord](nil)
		limits := memory.NewStore[domain.RateLimitRecord](nil)
		if cfg.StoreSweepInterval > 0 {
			go codes.RunSweeper(ctx, cfg.StoreSweepInterval)
			go limits.RunSweeper(ctx, cfg.StoreSweepInterval)
		}
		return codes, limits, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
