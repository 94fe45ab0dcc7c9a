// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the credential and verification-token lifecycle.

It covers registration, login, one-time code verification and password reset,
composing the stores, the token codec, the secret hasher, the session issuer
and the mailer.

# Architecture

  - Entities: Credential, OneTimeToken, ResetToken (this file).
  - Stores: contracts in store.go, PostgreSQL and Redis implementations beside it.
  - Service: the only component that talks to every other one.
  - Handler: JSON transport over chi.
*/
package auth

import (
	"time"

	"github.com/taibuivan/nullship/internal/platform/sec"
)

// # Domain Entities

// Status is the account state stored on a credential.
type Status int

const (
	StatusBlocked Status = 0
	StatusActive  Status = 1
)

// Credential represents a registered principal.
type Credential struct {
	ID           int64     `json:"id"`
	Role         sec.Role  `json:"role_id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	IsVerified   bool      `json:"is_verified"`
	Status       Status    `json:"status"`
	LastIP       *string   `json:"ip_address,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsBlocked reports whether the account is blocked. Blocked overrides every other check.
func (credential *Credential) IsBlocked() bool {
	return credential.Status != StatusActive
}

// Claims returns the session claim bundle for the credential, without the password digest.
func (credential *Credential) Claims() sec.SessionClaims {
	return sec.SessionClaims{
		UserID:     credential.ID,
		FirstName:  credential.FirstName,
		LastName:   credential.LastName,
		Email:      credential.Email,
		Role:       credential.Role,
		Status:     int(credential.Status),
		IsVerified: credential.IsVerified,
		LastIP:     credential.LastIP,
	}
}

// OneTimeToken is a pending emailed code, keyed by its encrypted token.
type OneTimeToken struct {
	Token     string
	Email     string
	Purpose   Purpose
	CodeHash  string
	ExpiresAt int64 // unix seconds
}

// Expired reports whether the code can no longer be redeemed at now.
func (record *OneTimeToken) Expired(now time.Time) bool {
	return now.Unix() >= record.ExpiresAt
}

// ResetToken is the single pending password-reset challenge of an email.
type ResetToken struct {
	Email     string
	Token     string
	ExpiresAt int64 // unix seconds
}

// Expired reports whether the reset link can no longer be used at now.
func (record *ResetToken) Expired(now time.Time) bool {
	return now.Unix() >= record.ExpiresAt
}
