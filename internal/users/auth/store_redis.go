// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/nullship/internal/platform/constants"
)

// The scripts below follow pointers (subject set to token keys, email to the
// current token) whose names are only known at run time, so every key must
// live on one node. The stores take a [*redis.Client] rather than a
// [redis.UniversalClient] for that reason.

// redisExpiryGrace keeps a record readable for a while after it expires, so a
// late attempt is told "expired" instead of "unknown token".
const redisExpiryGrace = time.Minute

// redisTTL converts an absolute expiry into a key TTL that is always positive.
func redisTTL(expiresAt int64, now time.Time) time.Duration {
	ttl := time.Unix(expiresAt, 0).Sub(now) + redisExpiryGrace
	if ttl < time.Second {
		return time.Second
	}
	return ttl
}

// # OTP Repository

// RedisOtpStore implements [OtpStore] with one hash per token plus a set per
// (email, purpose) listing the tokens issued to it. Keys expire on their own.
type RedisOtpStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisOtpStore creates a Redis-backed [OtpStore].
func NewRedisOtpStore(client *redis.Client) *RedisOtpStore {
	return &RedisOtpStore{client: client, now: time.Now}
}

func otpKey(token string) string { return constants.RedisPrefixOTP + token }

func otpSubjectKey(email string, purpose Purpose) string {
	return constants.RedisPrefixOTPEmail + string(purpose) + ":" + email
}

/*
Issue stores the record and indexes it under its subject.

Parameters:
  - context: context.Context
  - record: OneTimeToken

Returns:
  - error: Execution errors
*/
func (repository *RedisOtpStore) Issue(context context.Context, record OneTimeToken) error {
	ttl := redisTTL(record.ExpiresAt, repository.now())
	subjectKey := otpSubjectKey(record.Email, record.Purpose)

	_, err := repository.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		pipe.HSet(context, otpKey(record.Token),
			"email", record.Email,
			"purpose", string(record.Purpose),
			"code", record.CodeHash,
			"expires_at", record.ExpiresAt,
		)
		pipe.Expire(context, otpKey(record.Token), ttl)
		pipe.SAdd(context, subjectKey, record.Token)
		pipe.Expire(context, subjectKey, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis_otp_issue_failed: %w", err)
	}
	return nil
}

// Find returns the record for token, or ErrNotFound.
func (repository *RedisOtpStore) Find(context context.Context, token string) (*OneTimeToken, error) {
	fields, err := repository.client.HGetAll(context, otpKey(token)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis_otp_find_failed: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	expiresAt, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("redis_otp_corrupt_expiry: %w", err)
	}

	return &OneTimeToken{
		Token:     token,
		Email:     fields["email"],
		Purpose:   Purpose(fields["purpose"]),
		CodeHash:  fields["code"],
		ExpiresAt: expiresAt,
	}, nil
}

// Destroy deletes the record for token. DEL is atomic, so exactly one of two
// racing callers sees true.
func (repository *RedisOtpStore) Destroy(context context.Context, token string) (bool, error) {
	removed, err := repository.client.Del(context, otpKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("redis_otp_destroy_failed: %w", err)
	}
	return removed > 0, nil
}

// destroySubjectLua deletes every token listed under a subject and the list itself.
// KEYS[1] = subject set
// ARGV[1] = token key prefix
var destroySubjectLua = redis.NewScript(`
local tokens = redis.call('SMEMBERS', KEYS[1])
local removed = 0
for _, token in ipairs(tokens) do
  removed = removed + redis.call('DEL', ARGV[1] .. token)
end
redis.call('DEL', KEYS[1])
return removed
`)

// DestroyForSubject deletes every OTP of email for purpose.
func (repository *RedisOtpStore) DestroyForSubject(context context.Context, email string, purpose Purpose) (int64, error) {
	removed, err := destroySubjectLua.Run(context, repository.client,
		[]string{otpSubjectKey(email, purpose)},
		constants.RedisPrefixOTP,
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis_otp_destroy_subject_failed: %w", err)
	}
	return removed, nil
}

// PurgeExpired implements [ExpiredPurger]. Key TTLs already do the work.
func (repository *RedisOtpStore) PurgeExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

// # Reset Token Repository

// RedisResetTokenStore implements [ResetTokenStore] with a token hash and an
// email pointer to the current token.
type RedisResetTokenStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisResetTokenStore creates a Redis-backed [ResetTokenStore].
func NewRedisResetTokenStore(client *redis.Client) *RedisResetTokenStore {
	return &RedisResetTokenStore{client: client, now: time.Now}
}

func resetTokenKey(token string) string { return constants.RedisPrefixResetToken + token }
func resetEmailKey(email string) string { return constants.RedisPrefixResetEmail + email }

// replaceResetLua swaps the reset token of an email in one step.
// KEYS[1] = email pointer, KEYS[2] = new token hash
// ARGV[1] = token key prefix, ARGV[2] = token, ARGV[3] = email,
// ARGV[4] = ttl in ms, ARGV[5] = expires_at
var replaceResetLua = redis.NewScript(`
local previous = redis.call('GET', KEYS[1])
if previous then
  redis.call('DEL', ARGV[1] .. previous)
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[4])
redis.call('HSET', KEYS[2], 'email', ARGV[3], 'expires_at', ARGV[5])
redis.call('PEXPIRE', KEYS[2], ARGV[4])
return 1
`)

/*
Replace makes record the only reset token of its email.

Parameters:
  - context: context.Context
  - record: ResetToken

Returns:
  - error: Script execution errors
*/
func (repository *RedisResetTokenStore) Replace(context context.Context, record ResetToken) error {
	ttl := redisTTL(record.ExpiresAt, repository.now())

	err := replaceResetLua.Run(context, repository.client,
		[]string{resetEmailKey(record.Email), resetTokenKey(record.Token)},
		constants.RedisPrefixResetToken,
		record.Token,
		record.Email,
		ttl.Milliseconds(),
		record.ExpiresAt,
	).Err()
	if err != nil {
		return fmt.Errorf("redis_reset_replace_failed: %w", err)
	}
	return nil
}

// FindByToken returns the reset record holding token, or ErrNotFound.
func (repository *RedisResetTokenStore) FindByToken(context context.Context, token string) (*ResetToken, error) {
	fields, err := repository.client.HGetAll(context, resetTokenKey(token)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis_reset_find_failed: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	expiresAt, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("redis_reset_corrupt_expiry: %w", err)
	}

	return &ResetToken{Email: fields["email"], Token: token, ExpiresAt: expiresAt}, nil
}

// consumeResetLua deletes a token and, if it is still current, the email pointer.
// KEYS[1] = token hash
// ARGV[1] = email pointer prefix, ARGV[2] = token
var consumeResetLua = redis.NewScript(`
local email = redis.call('HGET', KEYS[1], 'email')
if not email then
  return 0
end
redis.call('DEL', KEYS[1])
local pointer = ARGV[1] .. email
if redis.call('GET', pointer) == ARGV[2] then
  redis.call('DEL', pointer)
end
return 1
`)

// Consume deletes the record holding token and reports whether this call removed it.
func (repository *RedisResetTokenStore) Consume(context context.Context, token string) (bool, error) {
	removed, err := consumeResetLua.Run(context, repository.client,
		[]string{resetTokenKey(token)},
		constants.RedisPrefixResetEmail,
		token,
	).Int64()
	if err != nil {
		return false, fmt.Errorf("redis_reset_consume_failed: %w", err)
	}
	return removed == 1, nil
}

// deleteResetLua removes the current token of an email and its pointer.
// KEYS[1] = email pointer
// ARGV[1] = token key prefix
var deleteResetLua = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current then
  redis.call('DEL', ARGV[1] .. current)
end
return redis.call('DEL', KEYS[1])
`)

// DeleteByEmail removes the reset token of email, if any.
func (repository *RedisResetTokenStore) DeleteByEmail(context context.Context, email string) error {
	err := deleteResetLua.Run(context, repository.client,
		[]string{resetEmailKey(email)},
		constants.RedisPrefixResetToken,
	).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis_reset_delete_failed: %w", err)
	}
	return nil
}

// PurgeExpired implements [ExpiredPurger]. Key TTLs already do the work.
func (repository *RedisResetTokenStore) PurgeExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}
