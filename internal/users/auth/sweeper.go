// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Sweeper deletes expired OTP and reset-token rows. It is a maintenance task
// run outside the request path; lookups already treat expired rows as dead.
type Sweeper struct {
	otps        ExpiredPurger
	resetTokens ExpiredPurger
	logger      *slog.Logger
	now         func() time.Time
}

// NewSweeper creates a [Sweeper] over the two token stores.
func NewSweeper(otps, resetTokens ExpiredPurger, logger *slog.Logger) *Sweeper {
	return &Sweeper{otps: otps, resetTokens: resetTokens, logger: logger, now: time.Now}
}

// SweepResult counts the rows removed by one pass.
type SweepResult struct {
	OTPs        int64
	ResetTokens int64
}

/*
PurgeExpired removes every record whose expiry is at or before the current time.

Parameters:
  - context: context.Context

Returns:
  - SweepResult: Rows removed per store
  - error: The first store failure
*/
func (sweeper *Sweeper) PurgeExpired(context context.Context) (SweepResult, error) {
	currentTime := sweeper.now()
	var result SweepResult

	removed, err := sweeper.otps.PurgeExpired(context, currentTime)
	if err != nil {
		return result, fmt.Errorf("auth_sweep_otps_failed: %w", err)
	}
	result.OTPs = removed

	removed, err = sweeper.resetTokens.PurgeExpired(context, currentTime)
	if err != nil {
		return result, fmt.Errorf("auth_sweep_reset_tokens_failed: %w", err)
	}
	result.ResetTokens = removed

	sweeper.logger.Info("expired tokens purged",
		slog.Int64("otps", result.OTPs),
		slog.Int64("reset_tokens", result.ResetTokens),
	)

	return result, nil
}
