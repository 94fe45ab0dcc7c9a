// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/nullship/internal/platform/config"
	"github.com/taibuivan/nullship/internal/platform/postgres"
)

// PurgeableOtpStore is an [OtpStore] that can also be swept.
type PurgeableOtpStore interface {
	OtpStore
	ExpiredPurger
}

// PurgeableResetTokenStore is a [ResetTokenStore] that can also be swept.
type PurgeableResetTokenStore interface {
	ResetTokenStore
	ExpiredPurger
}

// TokenStores are the OTP and reset-token stores of one backend.
type TokenStores struct {
	OTPs        PurgeableOtpStore
	ResetTokens PurgeableResetTokenStore
}

// NewTokenStores selects the token stores for TOKEN_BACKEND.
// Credentials always live in PostgreSQL.
func NewTokenStores(backend string, db postgres.DBTX, client *redis.Client) (TokenStores, error) {
	switch backend {
	case config.BackendPostgres:
		return TokenStores{OTPs: NewOtpStore(db), ResetTokens: NewResetTokenStore(db)}, nil
	case config.BackendRedis:
		return TokenStores{OTPs: NewRedisOtpStore(client), ResetTokens: NewRedisResetTokenStore(client)}, nil
	default:
		return TokenStores{}, fmt.Errorf("auth: unknown token backend %q", backend)
	}
}
