// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mailer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryingSender retries a failed delivery a bounded number of times with a
// fixed pause between attempts. After the last attempt the error is returned
// to the caller unchanged.
type RetryingSender struct {
	next     Sender
	attempts int
	interval time.Duration
	logger   *slog.Logger
}

// NewRetrying wraps next. attempts counts the first try, so 1 means fail-fast.
func NewRetrying(next Sender, attempts int, interval time.Duration, logger *slog.Logger) *RetryingSender {
	if attempts < 1 {
		attempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryingSender{next: next, attempts: attempts, interval: interval, logger: logger}
}

// Send implements [Sender].
func (sender *RetryingSender) Send(ctx context.Context, to, subject, html string) error {
	if err := checkMessage(to, subject, html); err != nil {
		return err
	}

	attempt := 0
	operation := func() error {
		attempt++
		err := sender.next.Send(ctx, to, subject, html)
		if errors.Is(err, ErrIncompleteMessage) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(sender.interval), uint64(sender.attempts-1)),
		ctx,
	)

	notify := func(err error, wait time.Duration) {
		sender.logger.WarnContext(ctx, "email_send_retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", sender.attempts),
			slog.Duration("wait", wait),
			slog.Any("error", err),
		)
	}

	return backoff.RetryNotify(operation, policy, notify)
}
