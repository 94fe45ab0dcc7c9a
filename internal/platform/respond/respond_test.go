// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/nullship/internal/platform/apperr"
)

func decode(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func TestOK(t *testing.T) {
	recorder := httptest.NewRecorder()
	OK(recorder, "Password updated successfully.", nil)

	body := decode(t, recorder)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Password updated successfully.", body["message"])
	assert.NotContains(t, body, "data")
}

func TestErrorHidesInternalCause(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	Error(recorder, request, errors.New("dial tcp: connection refused"))

	body := decode(t, recorder)
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, apperr.InternalMessage, body["message"])
}

func TestErrorValidationEnvelope(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/", nil)

	Error(recorder, request, apperr.ValidationError("email is required"))

	body := decode(t, recorder)
	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	assert.Equal(t, []any{"email is required"}, body["errors"])
}

func TestSession(t *testing.T) {
	recorder := httptest.NewRecorder()
	Session(recorder, "User logged in successfully.", "USER", "jwt", map[string]string{"email": "a@b.c"})

	body := decode(t, recorder)
	assert.Equal(t, "USER", body["role"])
	assert.Equal(t, "jwt", body["token"])
}
