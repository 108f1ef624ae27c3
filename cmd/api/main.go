package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"

	"shoestore-api/core"
)

func main() {
	cfg, err := core.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	ctx := context.Background()

	logCloser, err := core.SetupLogging(cfg, "api.log")
	if err != nil {
		log.Fatalf("failed to setup logging: %v", err)
	}
	defer logCloser.Close()

	db, err := core.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	if err := core.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Gorilla cookie store carries the credential artifact.
	store := sessions.NewCookieStore([]byte(cfg.SessionKey))

	userRepo := core.NewPgUserRepository(db)
	hasher := core.NewBcryptHasher(cfg.BcryptCost)

	registry := prometheus.NewRegistry()
	metrics := core.NewMetrics(registry)

	var issuer core.Issuer
	var sessionStore core.SessionStore
	if cfg.AuthStrategy == core.StrategyToken {
		issuer = core.NewTokenIssuer([]byte(cfg.JWTSecret), userRepo, cfg.TokenTTL)
	} else {
		redisClient, err := core.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		defer redisClient.Close()
		sessionStore = core.NewRedisSessionStore(redisClient)
		issuer = core.NewSessionIssuer(sessionStore, userRepo, cfg.SessionTTL)
	}

	authService := core.NewAuthService(userRepo, hasher, issuer, cfg, metrics)

	if err := core.BootstrapAdmin(ctx, userRepo, hasher, cfg); err != nil {
		log.Fatalf("bootstrap admin failed: %v", err)
	}

	limiter := core.NewLoginRateLimiter(cfg.LoginRatePerMin, cfg.LoginBurst)
	defer limiter.Stop()

	router := core.NewRouter(cfg, store, core.RouterDeps{
		Auth:         authService,
		Users:        userRepo,
		Issuer:       issuer,
		Metrics:      metrics,
		Registry:     registry,
		DB:           db,
		Sessions:     sessionStore,
		LoginLimiter: limiter,
	})

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("starting api server on %s (auth strategy: %s)", addr, cfg.AuthStrategy)
	if err := router.Run(addr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
