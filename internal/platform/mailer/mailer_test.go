// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mailer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakySender struct {
	failures int
	calls    int
}

func (sender *flakySender) Send(context.Context, string, string, string) error {
	sender.calls++
	if sender.calls <= sender.failures {
		return errors.New("421 service not available")
	}
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRetryingSenderRecovers(t *testing.T) {
	next := &flakySender{failures: 2}
	sender := NewRetrying(next, 3, 0, quietLogger())

	require.NoError(t, sender.Send(context.Background(), "a@x.com", "OTP | App", "<p>1</p>"))
	assert.Equal(t, 3, next.calls)
}

func TestRetryingSenderGivesUp(t *testing.T) {
	next := &flakySender{failures: 10}
	sender := NewRetrying(next, 3, 0, quietLogger())

	err := sender.Send(context.Background(), "a@x.com", "OTP | App", "<p>1</p>")
	assert.EqualError(t, err, "421 service not available")
	assert.Equal(t, 3, next.calls)
}

func TestRetryingSenderFailFast(t *testing.T) {
	next := &flakySender{failures: 1}
	sender := NewRetrying(next, 1, 0, quietLogger())

	assert.Error(t, sender.Send(context.Background(), "a@x.com", "s", "b"))
	assert.Equal(t, 1, next.calls)
}

func TestRetryingSenderRejectsIncompleteMessage(t *testing.T) {
	next := &flakySender{}
	sender := NewRetrying(next, 3, 0, quietLogger())

	assert.ErrorIs(t, sender.Send(context.Background(), "", "s", "b"), ErrIncompleteMessage)
	assert.Zero(t, next.calls)
}

func TestLogSender(t *testing.T) {
	sender := NewLog(quietLogger())
	assert.NoError(t, sender.Send(context.Background(), "a@x.com", "s", "b"))
	assert.ErrorIs(t, sender.Send(context.Background(), "a@x.com", "", "b"), ErrIncompleteMessage)
}

func TestRenderOTP(t *testing.T) {
	subject, body, err := RenderOTP("NullShip", "ada", "123456", "https://app.example.com/verify/abc", 10)
	require.NoError(t, err)

	assert.Equal(t, "OTP | NullShip", subject)
	assert.Contains(t, body, "Hi Ada,")
	assert.Contains(t, body, "Your OTP is 123456")
	assert.Contains(t, body, `href="https://app.example.com/verify/abc"`)
}

func TestRenderResetEscapesName(t *testing.T) {
	subject, body, err := RenderReset("NullShip", "<script>", "https://app.example.com/reset-password/abc", 10)
	require.NoError(t, err)

	assert.Equal(t, "Reset Password | NullShip", subject)
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "https://app.example.com/reset-password/abc")
}
