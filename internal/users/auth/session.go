// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"errors"
	"fmt"

	"github.com/taibuivan/nullship/internal/platform/sec"
)

// # Contracts

// SecretHasher hashes and verifies passwords and OTP codes. Implemented by [sec.Hasher].
type SecretHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) (bool, error)
}

// SessionSigner signs a claim bundle into a bearer credential. Implemented by [sec.TokenService].
type SessionSigner interface {
	Sign(claims sec.SessionClaims) (string, error)
}

// ErrInvalidCredentials is the only rejection [SessionIssuer.Authenticate] returns.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// Session is a signed credential and the claims it carries.
type Session struct {
	Token  string
	Claims sec.SessionClaims
}

// # Issuer

// SessionIssuer turns a verified password into a session credential.
type SessionIssuer struct {
	hasher SecretHasher
	signer SessionSigner

	// dummyDigest is verified against when there is no credential, so an
	// unknown account costs the same hash work as a wrong password.
	dummyDigest string
}

// NewSessionIssuer creates a [SessionIssuer].
func NewSessionIssuer(hasher SecretHasher, signer SessionSigner) (*SessionIssuer, error) {
	dummyDigest, err := hasher.Hash("nullship-session-placeholder")
	if err != nil {
		return nil, fmt.Errorf("auth_session_dummy_digest_failed: %w", err)
	}
	return &SessionIssuer{hasher: hasher, signer: signer, dummyDigest: dummyDigest}, nil
}

/*
Authenticate checks password against the credential and signs a session.

Description: A missing credential and a wrong password both return
ErrInvalidCredentials. The password digest never enters the claims.

Parameters:
  - credential: *Credential (may be nil)
  - password: string

Returns:
  - *Session: Signed credential
  - error: ErrInvalidCredentials, or hashing and signing failures
*/
func (issuer *SessionIssuer) Authenticate(credential *Credential, password string) (*Session, error) {
	if credential == nil {
		_, _ = issuer.hasher.Verify(password, issuer.dummyDigest)
		return nil, ErrInvalidCredentials
	}

	matched, err := issuer.hasher.Verify(password, credential.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("auth_session_verify_failed: %w", err)
	}
	if !matched {
		return nil, ErrInvalidCredentials
	}

	claims := credential.Claims()
	token, err := issuer.signer.Sign(claims)
	if err != nil {
		return nil, fmt.Errorf("auth_session_sign_failed: %w", err)
	}

	return &Session{Token: token, Claims: claims}, nil
}
