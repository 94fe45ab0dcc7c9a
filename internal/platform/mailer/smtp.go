// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/taibuivan/nullship/internal/platform/constants"
)

// SMTPConfig holds the outbound relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	TLS      bool
}

// SMTPSender delivers through an SMTP relay. A new connection is dialed per
// message; auth traffic is far too low to justify a pooled connection.
type SMTPSender struct {
	config SMTPConfig
}

// NewSMTP returns an [SMTPSender] for the given relay.
func NewSMTP(config SMTPConfig) *SMTPSender {
	return &SMTPSender{config: config}
}

/*
Send builds the message and hands it to the relay.

Parameters:
  - context: Bounds dialing and the SMTP conversation
  - to, subject, html: Message parts, all required

Returns:
  - error: ErrIncompleteMessage, or the wrapped transport failure
*/
func (sender *SMTPSender) Send(context context.Context, to, subject, html string) error {
	if err := checkMessage(to, subject, html); err != nil {
		return err
	}

	message := mail.NewMsg()
	if err := message.FromFormat(sender.config.FromName, sender.config.From); err != nil {
		return fmt.Errorf("mailer_smtp_from_invalid: %w", err)
	}
	if err := message.To(to); err != nil {
		return fmt.Errorf("mailer_smtp_recipient_invalid: %w", err)
	}
	message.Subject(subject)
	message.SetBodyString(mail.TypeTextHTML, html)

	client, err := mail.NewClient(sender.config.Host, sender.clientOptions()...)
	if err != nil {
		return fmt.Errorf("mailer_smtp_client_failed: %w", err)
	}

	if err := client.DialAndSendWithContext(context, message); err != nil {
		return fmt.Errorf("mailer_smtp_send_failed: %w", err)
	}

	return nil
}

func (sender *SMTPSender) clientOptions() []mail.Option {
	options := []mail.Option{
		mail.WithPort(sender.config.Port),
		mail.WithTimeout(constants.EmailSendTimeout),
	}

	if sender.config.TLS {
		options = append(options, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		options = append(options, mail.WithTLSPolicy(mail.NoTLS))
	}

	if sender.config.Username != "" {
		options = append(options,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(sender.config.Username),
			mail.WithPassword(sender.config.Password),
		)
	}

	return options
}
