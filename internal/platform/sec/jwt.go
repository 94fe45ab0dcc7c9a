// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and session token management.
//
// # Architecture
//
// This package isolates security-sensitive code (token encryption, hashing, JWT
// signing) from the domain logic. Everything here is constructed once at startup
// from immutable key material and is safe for concurrent use.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the claim bundle of a session credential.
//
// It carries the whole account record minus the password digest, so the
// middleware can authorize a request without touching storage.
type SessionClaims struct {
	jwt.RegisteredClaims

	UserID     int64   `json:"id"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Email      string  `json:"email"`
	Role       Role    `json:"role"`
	Status     int     `json:"status"`
	IsVerified bool    `json:"is_verified"`
	LastIP     *string `json:"last_ip,omitempty"`
}

// ErrInvalidSession covers every reason a bearer token is rejected.
var ErrInvalidSession = errors.New("sec: invalid session token")

// TokenService signs and verifies session credentials with HS256.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService. A zero ttl issues credentials without an exp claim.
func NewTokenService(secret, issuer string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("sec: jwt secret must not be empty")
	}
	return &TokenService{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// Sign stamps iat (and exp when a ttl is configured) and signs the claims.
func (service *TokenService) Sign(claims SessionClaims) (string, error) {
	currentTime := service.now()

	claims.Issuer = service.issuer
	claims.Subject = fmt.Sprintf("%d", claims.UserID)
	claims.IssuedAt = jwt.NewNumericDate(currentTime)
	claims.ExpiresAt = nil
	if service.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(currentTime.Add(service.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Verify checks the signature, issuer and freshness of a session token.
func (service *TokenService) Verify(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	},
		jwt.WithIssuer(service.issuer),
		jwt.WithTimeFunc(service.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}

	if !token.Valid {
		return nil, ErrInvalidSession
	}

	return claims, nil
}
