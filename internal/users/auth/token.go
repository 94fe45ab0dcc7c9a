// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Purpose tags what a verification token authorizes.
type Purpose string

const (
	PurposeAccountVerification Purpose = "account-verification"
	PurposeResetPassword       Purpose = "reset-password"
)

// ErrUnknownPurpose is returned by [ParsePurpose] for values outside the enum.
var ErrUnknownPurpose = errors.New("auth: unknown token purpose")

// ParsePurpose validates a purpose string received from a client or a token.
func ParsePurpose(value string) (Purpose, error) {
	switch purpose := Purpose(value); purpose {
	case PurposeAccountVerification, PurposeResetPassword:
		return purpose, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPurpose, value)
	}
}

// TokenCodec encrypts and decrypts token payloads. Implemented by [sec.Codec].
type TokenCodec interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(token string) (string, error)
}

// ErrMalformedSubject covers every token that does not open to a valid subject.
var ErrMalformedSubject = errors.New("auth: malformed token subject")

// TokenSubject is the plaintext inside a verification token: who it is for and
// what it authorizes. It is serialized as JSON so any email survives intact.
type TokenSubject struct {
	Email   string  `json:"email"`
	Purpose Purpose `json:"purpose"`
}

// SealSubject encrypts subject into an opaque token.
func SealSubject(codec TokenCodec, subject TokenSubject) (string, error) {
	plaintext, err := json.Marshal(subject)
	if err != nil {
		return "", fmt.Errorf("auth_token_subject_marshal_failed: %w", err)
	}

	token, err := codec.Encrypt(string(plaintext))
	if err != nil {
		return "", fmt.Errorf("auth_token_subject_encrypt_failed: %w", err)
	}

	return token, nil
}

// OpenSubject decrypts token and validates the subject inside it.
// Any failure is reported as [ErrMalformedSubject].
func OpenSubject(codec TokenCodec, token string) (TokenSubject, error) {
	plaintext, err := codec.Decrypt(token)
	if err != nil {
		return TokenSubject{}, ErrMalformedSubject
	}

	var subject TokenSubject
	if err := json.Unmarshal([]byte(plaintext), &subject); err != nil {
		return TokenSubject{}, ErrMalformedSubject
	}

	if subject.Email == "" {
		return TokenSubject{}, ErrMalformedSubject
	}
	if _, err := ParsePurpose(string(subject.Purpose)); err != nil {
		return TokenSubject{}, ErrMalformedSubject
	}

	return subject, nil
}
