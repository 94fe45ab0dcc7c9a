// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// Every response leaves through this package so that clients can rely on a
// single envelope shape: a boolean success flag, a human message, and an
// optional payload. Session responses additionally carry the role and the
// signed credential.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/taibuivan/nullship/internal/platform/apperr"
	"github.com/taibuivan/nullship/internal/platform/ctxkey"
)

// Envelope is the generic success/failure body.
type Envelope struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Data     any    `json:"data,omitempty"`
	MetaData any    `json:"meta_data,omitempty"`
}

// ValidationEnvelope is returned with HTTP 422.
type ValidationEnvelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// SessionEnvelope is returned by a successful login.
type SessionEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Role    string `json:"role"`
	Token   string `json:"token"`
	Data    any    `json:"data"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 success envelope. data may be nil.
func OK(writer http.ResponseWriter, message string, data any) {
	JSON(writer, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// Session writes the 200 response of a completed login.
func Session(writer http.ResponseWriter, message string, role string, token string, data any) {
	JSON(writer, http.StatusOK, SessionEnvelope{
		Success: true,
		Message: message,
		Role:    role,
		Token:   token,
		Data:    data,
	})
}

// Error converts any Go error into a standardized JSON API error response.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		appError = apperr.Internal(err)
	}

	// Always log 5xx errors as they indicate server-side issues.
	if appError.HTTPStatus >= 500 {
		logger := getLoggerFromContext(request)
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.String("code", appError.Code),
			slog.String("request_id", getRequestIDFromContext(request)),
			slog.Any("cause", appError.Cause),
		)
	}

	if appError.Code == "VALIDATION_ERROR" {
		problems := appError.Errors
		if problems == nil {
			problems = []string{}
		}
		JSON(writer, appError.HTTPStatus, ValidationEnvelope{
			Success: false,
			Message: appError.Message,
			Errors:  problems,
		})
		return
	}

	JSON(writer, appError.HTTPStatus, Envelope{Success: false, Message: appError.Message})
}

// getLoggerFromContext extracts the per-request logger.
func getLoggerFromContext(request *http.Request) *slog.Logger {
	if logger, ok := request.Context().Value(ctxkey.KeyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// getRequestIDFromContext extracts the X-Request-ID for log correlation.
func getRequestIDFromContext(request *http.Request) string {
	if id, ok := request.Context().Value(ctxkey.KeyRequestID).(string); ok {
		return id
	}
	return ""
}
