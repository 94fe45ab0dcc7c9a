// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mailer delivers the transactional emails of the auth flows.

Senders compose as decorators:

	sender := mailer.NewRetrying(mailer.NewSMTP(cfg), attempts, interval, logger)

Message bodies are rendered by [RenderOTP] and [RenderReset].
*/
package mailer

import (
	"context"
	"errors"
	"strings"
)

// ErrIncompleteMessage is returned before any transport is touched when a
// recipient, subject or body is missing.
var ErrIncompleteMessage = errors.New("mailer: recipient, subject and body are required")

// Sender delivers one HTML email.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

func checkMessage(to, subject, html string) error {
	if strings.TrimSpace(to) == "" || strings.TrimSpace(subject) == "" || strings.TrimSpace(html) == "" {
		return ErrIncompleteMessage
	}
	return nil
}
