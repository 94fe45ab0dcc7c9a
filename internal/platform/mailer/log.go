// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mailer

import (
	"context"
	"log/slog"
)

// LogSender writes outgoing mail to the log instead of a relay.
// Used when SMTP_HOST is unset so local setups can finish the flows.
type LogSender struct {
	logger *slog.Logger
}

// NewLog returns a [LogSender].
func NewLog(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send implements [Sender]. The body is logged at debug level because it
// carries the code.
func (sender *LogSender) Send(ctx context.Context, to, subject, html string) error {
	if err := checkMessage(to, subject, html); err != nil {
		return err
	}
	sender.logger.InfoContext(ctx, "email_logged", slog.String("to", to), slog.String("subject", subject))
	sender.logger.DebugContext(ctx, "email_logged_body", slog.String("html", html))
	return nil
}
