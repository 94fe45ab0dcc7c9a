// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command sweep deletes expired OTP and reset-token records and exits.
//
// It is meant to run from cron or a scheduled job. Lookups already ignore
// expired records, so a missed run only costs storage.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/taibuivan/nullship/internal/platform/config"
	"github.com/taibuivan/nullship/internal/platform/constants"
	pgstore "github.com/taibuivan/nullship/internal/platform/postgres"
	redisstore "github.com/taibuivan/nullship/internal/platform/redis"
	"github.com/taibuivan/nullship/internal/users/auth"
)

const sweepTimeout = 2 * time.Minute

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(
		slog.String("app", constants.AppName),
		slog.String("job", "sweep"),
	)

	if err := run(log); err != nil {
		log.Error("sweep_failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	rdb, err := redisstore.NewClient(ctx, cfg.RedisURL, log)
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	stores, err := auth.NewTokenStores(cfg.TokenBackend, pool, rdb)
	if err != nil {
		return err
	}

	_, err = auth.NewSweeper(stores.OTPs, stores.ResetTokens, log).PurgeExpired(ctx)
	return err
}
