// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var redisTestNow = time.Unix(1_700_000_000, 0)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func newTestOtpStore(t *testing.T) (*miniredis.Miniredis, *RedisOtpStore) {
	t.Helper()
	mr, client := newTestRedis(t)
	store := NewRedisOtpStore(client)
	store.now = func() time.Time { return redisTestNow }
	return mr, store
}

func newTestResetStore(t *testing.T) (*miniredis.Miniredis, *RedisResetTokenStore) {
	t.Helper()
	mr, client := newTestRedis(t)
	store := NewRedisResetTokenStore(client)
	store.now = func() time.Time { return redisTestNow }
	return mr, store
}

func otpRecord(token string, purpose Purpose) OneTimeToken {
	return OneTimeToken{
		Token:     token,
		Email:     "a@x.com",
		Purpose:   purpose,
		CodeHash:  "digest-" + token,
		ExpiresAt: redisTestNow.Add(10 * time.Minute).Unix(),
	}
}

// # OTP Store

func TestRedisOtpIssueAndFind(t *testing.T) {
	mr, store := newTestOtpStore(t)
	ctx := context.Background()

	record := otpRecord("tok-1", PurposeAccountVerification)
	require.NoError(t, store.Issue(ctx, record))

	found, err := store.Find(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, record, *found)

	assert.Equal(t, 10*time.Minute+redisExpiryGrace, mr.TTL(otpKey("tok-1")))
	assert.True(t, mr.Exists(otpSubjectKey("a@x.com", PurposeAccountVerification)))
}

func TestRedisOtpFindMissing(t *testing.T) {
	_, store := newTestOtpStore(t)

	_, err := store.Find(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisOtpDestroyOnce(t *testing.T) {
	_, store := newTestOtpStore(t)
	ctx := context.Background()
	require.NoError(t, store.Issue(ctx, otpRecord("tok-1", PurposeAccountVerification)))

	removed, err := store.Destroy(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Destroy(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRedisOtpDestroyForSubject(t *testing.T) {
	_, store := newTestOtpStore(t)
	ctx := context.Background()

	require.NoError(t, store.Issue(ctx, otpRecord("tok-1", PurposeAccountVerification)))
	require.NoError(t, store.Issue(ctx, otpRecord("tok-2", PurposeAccountVerification)))
	require.NoError(t, store.Issue(ctx, otpRecord("tok-3", PurposeResetPassword)))

	removed, err := store.DestroyForSubject(ctx, "a@x.com", PurposeAccountVerification)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	_, err = store.Find(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Find(ctx, "tok-3")
	assert.NoError(t, err)

	removed, err = store.DestroyForSubject(ctx, "nobody@x.com", PurposeAccountVerification)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestRedisOtpKeysExpire(t *testing.T) {
	mr, store := newTestOtpStore(t)
	ctx := context.Background()

	record := otpRecord("tok-1", PurposeAccountVerification)
	record.ExpiresAt = redisTestNow.Add(-time.Hour).Unix()
	require.NoError(t, store.Issue(ctx, record))
	assert.Equal(t, time.Second, mr.TTL(otpKey("tok-1")))

	mr.FastForward(2 * time.Second)
	_, err := store.Find(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrNotFound)

	purged, err := store.PurgeExpired(ctx, redisTestNow)
	require.NoError(t, err)
	assert.Zero(t, purged)
}

// # Reset Token Store

func resetRecord(token string) ResetToken {
	return ResetToken{Email: "a@x.com", Token: token, ExpiresAt: redisTestNow.Add(10 * time.Minute).Unix()}
}

func TestRedisResetReplaceKeepsOneToken(t *testing.T) {
	mr, store := newTestResetStore(t)
	ctx := context.Background()

	require.NoError(t, store.Replace(ctx, resetRecord("tok-1")))
	require.NoError(t, store.Replace(ctx, resetRecord("tok-2")))

	_, err := store.FindByToken(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrNotFound)

	found, err := store.FindByToken(ctx, "tok-2")
	require.NoError(t, err)
	assert.Equal(t, resetRecord("tok-2"), *found)

	pointer, err := mr.Get(resetEmailKey("a@x.com"))
	require.NoError(t, err)
	assert.Equal(t, "tok-2", pointer)
	assert.Equal(t, 10*time.Minute+redisExpiryGrace, mr.TTL(resetTokenKey("tok-2")))
}

func TestRedisResetConsumeOnce(t *testing.T) {
	mr, store := newTestResetStore(t)
	ctx := context.Background()
	require.NoError(t, store.Replace(ctx, resetRecord("tok-1")))

	consumed, err := store.Consume(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, consumed)
	assert.False(t, mr.Exists(resetEmailKey("a@x.com")))

	consumed, err = store.Consume(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, consumed)
}

func TestRedisResetDeleteByEmail(t *testing.T) {
	mr, store := newTestResetStore(t)
	ctx := context.Background()
	require.NoError(t, store.Replace(ctx, resetRecord("tok-1")))

	require.NoError(t, store.DeleteByEmail(ctx, "a@x.com"))
	assert.False(t, mr.Exists(resetTokenKey("tok-1")))
	assert.False(t, mr.Exists(resetEmailKey("a@x.com")))

	// Idempotent.
	require.NoError(t, store.DeleteByEmail(ctx, "a@x.com"))
}

func TestNewTokenStores(t *testing.T) {
	_, client := newTestRedis(t)

	stores, err := NewTokenStores("redis", &fakeDB{}, client)
	require.NoError(t, err)
	assert.IsType(t, &RedisOtpStore{}, stores.OTPs)
	assert.IsType(t, &RedisResetTokenStore{}, stores.ResetTokens)

	stores, err = NewTokenStores("postgres", &fakeDB{}, client)
	require.NoError(t, err)
	assert.IsType(t, &PostgresOtpStore{}, stores.OTPs)
	assert.IsType(t, &PostgresResetTokenStore{}, stores.ResetTokens)

	_, err = NewTokenStores("mongo", &fakeDB{}, client)
	assert.Error(t, err)
}
