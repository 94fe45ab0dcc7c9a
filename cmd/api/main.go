// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the NullShip auth HTTP server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Build key material, stores and the mailer.
//  7. Wire HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/nullship/internal/api"
	"github.com/taibuivan/nullship/internal/platform/config"
	"github.com/taibuivan/nullship/internal/platform/constants"
	"github.com/taibuivan/nullship/internal/platform/mailer"
	"github.com/taibuivan/nullship/internal/platform/migration"
	pgstore "github.com/taibuivan/nullship/internal/platform/postgres"
	redisstore "github.com/taibuivan/nullship/internal/platform/redis"
	"github.com/taibuivan/nullship/internal/platform/sec"
	"github.com/taibuivan/nullship/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("token_backend", cfg.TokenBackend),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Security & Delivery ────────────────────────────────────────────
	key, err := cfg.EncryptionKeyBytes()
	must(log, err, "decode encryption key")
	codec, err := sec.NewCodec(key)
	must(log, err, "initialize token codec")

	tokenService, err := sec.NewTokenService(cfg.JWTSecretKey, constants.AuthIssuer, cfg.SessionTTL)
	must(log, err, "initialize session token service")

	hasher := sec.NewHasher(cfg.BcryptCost)
	issuer, err := auth.NewSessionIssuer(hasher, tokenService)
	must(log, err, "initialize session issuer")

	tokenStores, err := auth.NewTokenStores(cfg.TokenBackend, pool, rdb)
	must(log, err, "select token backend")

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	authService := auth.NewService(auth.Dependencies{
		Credentials: auth.NewCredentialStore(pool),
		OTPs:        tokenStores.OTPs,
		ResetTokens: tokenStores.ResetTokens,
		Codec:       codec,
		Hasher:      hasher,
		Issuer:      issuer,
		Mailer:      newMailer(cfg, log),
	}, auth.Settings{
		AppName:   cfg.AppName,
		ClientURL: cfg.ClientURL,
		OTPTTL:    cfg.OTPTTL,
		ResetTTL:  cfg.ResetTokenTTL,
	})

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		CheckCache:    func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
	}, log)

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	serverCtx, stopServer := context.WithCancel(context.Background())
	defer stopServer()

	server := api.NewServer(serverCtx, cfg, log, tokenService, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService),
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	log.Info("shutting down server", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// newMailer returns the SMTP sender, or a log-only sender when no relay is
// configured, wrapped in the bounded retry policy.
func newMailer(cfg *config.Config, log *slog.Logger) mailer.Sender {
	var transport mailer.Sender = mailer.NewLog(log)
	if cfg.SMTPHost != "" {
		transport = mailer.NewSMTP(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.AppName,
			TLS:      cfg.SMTPTLS,
		})
	} else {
		log.Warn("smtp_not_configured", slog.String("fallback", "log"))
	}

	return mailer.NewRetrying(transport, cfg.EmailSendAttempts, cfg.EmailRetryInterval, log)
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
