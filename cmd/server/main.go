package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blockport/trade-finance-api/internal/api"
	"github.com/blockport/trade-finance-api/internal/api/middleware"
	"github.com/blockport/trade-finance-api/internal/core/service"
	"github.com/blockport/trade-finance-api/internal/infrastructure/db/mongo"
	"github.com/blockport/trade-finance-api/internal/infrastructure/db/redis"
	"github.com/blockport/trade-finance-api/internal/infrastructure/queue"
	"github.com/blockport/trade-finance-api/internal/pkg/config"
	"github.com/blockport/trade-finance-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- MongoDB (required) ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	userRepo := mongo.NewUserRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create user indexes")
	}

	// --- Redis (optional: the rate limiter degrades in-process without it) ---
	rdb, err := redis.Connect(ctx, redis.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, rate limiting runs in-process only")
		rdb = nil
	}

	// --- Audit pipeline ---
	auditRepo := mongo.NewAuditRepository(db)
	auditSvc := service.NewAuditService(auditRepo, log)
	dispatcher := queue.NewDispatcher(cfg.Auth.AuditWorkers, auditSvc, log)
	dispatcher.Start(ctx)

	// --- Auth core ---
	hasher := service.NewPasswordHasher(cfg.Auth.BcryptCost)
	tokens := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	guard := service.NewAccountGuard(cfg.Auth.MaxLoginFails, cfg.Auth.LockoutDuration)
	authSvc := service.NewAuthService(userRepo, hasher, tokens, guard, dispatcher, log)

	e := api.NewRouter(api.RouterDeps{
		Auth:          authSvc,
		Users:         userRepo,
		Mongo:         db,
		Redis:         rdb,
		LoginLimit:    middleware.Limit{Requests: cfg.RateLimit.LoginRequests, Window: cfg.RateLimit.LoginWindow},
		RegisterLimit: middleware.Limit{Requests: cfg.RateLimit.RegisterRequests, Window: cfg.RateLimit.RegisterWindow},
		Log:           log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
