// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"
	"strings"

	"github.com/taibuivan/nullship/internal/platform/apperr"
	"github.com/taibuivan/nullship/internal/platform/constants"
	"github.com/taibuivan/nullship/internal/platform/ctxutil"
	"github.com/taibuivan/nullship/internal/platform/respond"
	"github.com/taibuivan/nullship/internal/platform/sec"
)

// StatusActive is the only account status allowed through the guards.
const StatusActive = 1

// # Messages

const (
	msgMissingToken  = "User is not authorized or token is missing."
	msgInvalidToken  = "Unauthorized."
	msgBlocked       = "User account is blocked. Please contact support for assistance."
	msgUnverified    = "Unverified user, Please verify your email."
	msgMemberOnly    = "Access denied."
	msgAdminOnly     = "Access denied! This endpoint is restricted to administrators only."
	msgBadAuthFormat = "Invalid authorization format."
)

// SessionVerifier defines the interface needed to verify tokens in middleware.
//
// Defining it here decouples the middleware from [sec.TokenService] so tests
// can inject a stub.
type SessionVerifier interface {
	Verify(tokenString string) (*sec.SessionClaims, error)
}

// Authenticate extracts and verifies the session credential from the Authorization header.
//
// # Flow
//  1. No header: request proceeds as anonymous.
//  2. Header present but not "Bearer <token>": 401.
//  3. Signature, issuer or expiry check fails: 401.
//  4. Otherwise the claims are injected into the request context.
func Authenticate(verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get(constants.HeaderAuthorization)

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				respond.Error(writer, request, apperr.Unauthorized(msgBadAuthFormat))
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			claims, err := verifier.Verify(parts[1])
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized(msgInvalidToken))
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			if recorder, ok := writer.(sessionRecorder); ok {
				recorder.recordUser(claims.UserID)
			}
			ctx := ctxutil.WithSession(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireUser admits active, verified accounts holding the User or SubUser role.
//
// Must be registered in the router AFTER [Authenticate].
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := ctxutil.GetSession(request.Context())

		switch {
		case claims == nil:
			respond.Error(writer, request, apperr.Unauthorized(msgMissingToken))
		case claims.Status != StatusActive:
			respond.Error(writer, request, apperr.Forbidden(msgBlocked))
		case !claims.IsVerified:
			respond.Error(writer, request, apperr.Forbidden(msgUnverified))
		case !claims.Role.IsMember():
			respond.Error(writer, request, apperr.Unauthorized(msgMemberOnly))
		default:
			next.ServeHTTP(writer, request)
		}
	})
}

// RequireAdmin admits active accounts holding the Admin role.
//
// Must be registered in the router AFTER [Authenticate].
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := ctxutil.GetSession(request.Context())

		switch {
		case claims == nil:
			respond.Error(writer, request, apperr.Unauthorized(msgMissingToken))
		case claims.Status != StatusActive:
			respond.Error(writer, request, apperr.Unauthorized(msgBlocked))
		case claims.Role != sec.RoleAdmin:
			respond.Error(writer, request, apperr.Forbidden(msgAdminOnly))
		default:
			next.ServeHTTP(writer, request)
		}
	})
}
