// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/nullship/internal/platform/ctxutil"
	"github.com/taibuivan/nullship/internal/platform/sec"
)

/*
TestContext_RequestID verifies that Request IDs can be injected and retrieved.
*/
func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	ctx = ctxutil.WithRequestID(ctx, "test-request-id")
	assert.Equal(t, "test-request-id", ctxutil.GetRequestID(ctx))
}

/*
TestContext_Logger verifies that a custom logger can be stored in context.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))
}

/*
TestContext_Session verifies that session claims survive the context round trip.
*/
func TestContext_Session(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, ctxutil.GetSession(ctx))

	ctx = ctxutil.WithSession(ctx, &sec.SessionClaims{UserID: 7, Role: sec.RoleAdmin})
	retrieved := ctxutil.GetSession(ctx)

	if assert.NotNil(t, retrieved) {
		assert.Equal(t, int64(7), retrieved.UserID)
		assert.Equal(t, sec.RoleAdmin, retrieved.Role)
	}
}
