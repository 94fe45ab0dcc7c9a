// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"time"
)

// # Store Errors

var (
	// ErrNotFound is returned by lookups that match no record.
	ErrNotFound = errors.New("auth: record not found")

	// ErrEmailTaken is returned by [CredentialStore.Create] on a duplicate email.
	ErrEmailTaken = errors.New("auth: email already registered")
)

// LookupOptions narrows a credential lookup by email.
type LookupOptions struct {
	// WithPasswordHash loads the digest. Without it PasswordHash is left empty.
	WithPasswordHash bool
	// OnlyActive treats blocked accounts as absent.
	OnlyActive bool
}

// # Credential Data Access

// CredentialStore owns the users table. All operations are point lookups or
// updates by a unique key.
type CredentialStore interface {

	/*
		Create persists a new credential and fills in its ID and timestamps.

		Returns:
		  - error: ErrEmailTaken on a duplicate email, or persistence failures
	*/
	Create(context context.Context, credential *Credential) error

	/*
		FindByEmail returns the credential registered under email.

		Returns:
		  - *Credential: Hydrated entity
		  - error: ErrNotFound, or database retrieval failures
	*/
	FindByEmail(context context.Context, email string, options LookupOptions) (*Credential, error)

	// FindByID returns the credential with the given ID, or ErrNotFound.
	FindByID(context context.Context, id int64) (*Credential, error)

	// ExistsByEmail reports whether any credential uses email.
	ExistsByEmail(context context.Context, email string) (bool, error)

	// UpdateIP records the address of the latest successful login.
	UpdateIP(context context.Context, id int64, ip string) error

	// UpdatePassword replaces the digest of the credential registered under email.
	UpdatePassword(context context.Context, email, passwordHash string) error

	// UpdateVerified sets the verification flag.
	UpdateVerified(context context.Context, id int64, verified bool) error
}

// # Verification Token Data Access

// OtpStore persists emailed one-time codes keyed by their encrypted token.
type OtpStore interface {

	// Issue inserts one record. It does not look at other records for the same email.
	Issue(context context.Context, record OneTimeToken) error

	// Find returns the record for token, or ErrNotFound. Expired records are still returned.
	Find(context context.Context, token string) (*OneTimeToken, error)

	/*
		Destroy deletes the record for token.

		Returns:
		  - bool: true if this call removed the record, false if it was already gone
		  - error: Persistence failures
	*/
	Destroy(context context.Context, token string) (bool, error)

	// DestroyForSubject deletes every record issued to email for purpose and returns how many went.
	DestroyForSubject(context context.Context, email string, purpose Purpose) (int64, error)
}

// ResetTokenStore persists password-reset tokens, at most one per email.
type ResetTokenStore interface {

	// Replace stores record as the only reset token of its email, in one atomic step.
	Replace(context context.Context, record ResetToken) error

	// FindByToken returns the record holding token, or ErrNotFound.
	FindByToken(context context.Context, token string) (*ResetToken, error)

	// Consume deletes the record holding token and reports whether this call removed it.
	Consume(context context.Context, token string) (bool, error)

	// DeleteByEmail removes any reset token of email. Idempotent.
	DeleteByEmail(context context.Context, email string) error
}

// # Maintenance

// ExpiredPurger is implemented by token stores that need an explicit sweep.
type ExpiredPurger interface {
	// PurgeExpired deletes records whose expiry is at or before now and returns how many went.
	PurgeExpired(context context.Context, now time.Time) (int64, error)
}
