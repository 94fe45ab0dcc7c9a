// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the error vocabulary shared by the auth service and its HTTP layer.

Services return an [AppError] for every business rejection (wrong password, expired code,
blocked account) and a plain wrapped error for faults. The HTTP layer turns both into the
response envelope:

  - AppError: carries the status code and the client-safe message.
  - Anything else: mapped to [Internal] and logged with the correlation id.

Client messages are part of the public contract and must stay stable.
*/
package apperr

import (
	"errors"
	"net/http"
)

// InternalMessage is the only text a client ever sees for a server-side fault.
const InternalMessage = "Something went wrong"

// ValidationMessage heads every 422 response.
const ValidationMessage = "Validation failed."

// AppError is the canonical error type for the API.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "CONFLICT").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"message"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Errors lists the individual input problems of a VALIDATION_ERROR.
	Errors []string `json:"errors,omitempty"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] with the given client message.
func NotFound(msg string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    msg,
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       "UNAUTHORIZED",
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       "FORBIDDEN",
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 422 [AppError] listing every input problem found.
//
// Example:
//
//	apperr.ValidationError("email must be a valid email address", "password is required")
func ValidationError(problems ...string) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    ValidationMessage,
		HTTPStatus: http.StatusUnprocessableEntity,
		Errors:     problems,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited() *AppError {
	return &AppError{
		Code:       "RATE_LIMITED",
		Message:    "Too many requests, Please try again later.",
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    InternalMessage,
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Helpers

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
