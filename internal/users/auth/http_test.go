// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/nullship/internal/platform/middleware"
	"github.com/taibuivan/nullship/internal/platform/sec"
	"github.com/taibuivan/nullship/pkg/pointer"
)

func newTestRouter(f *fixture) http.Handler {
	handler := NewHandler(f.service)

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(f.tokens))
	router.Mount("/api/auth", handler.Routes())
	router.Mount("/api/otp", handler.OTPRoutes())
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path, body string, headers ...string) (int, map[string]any) {
	t.Helper()

	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		request.Header.Set(headers[i], headers[i+1])
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	return recorder.Code, decoded
}

func TestRegisterEndpoint(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f)

	status, body := doJSON(t, router, http.MethodPost, "/api/auth/register",
		`{"first_name":"ada","last_name":"Lovelace","email":"a@x.com","password":"pw12345678"}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, MsgRegistered, body["message"])
	assert.Equal(t, 1, f.otps.count())
}

func TestRegisterEndpointValidation(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f)

	status, body := doJSON(t, router, http.MethodPost, "/api/auth/register",
		`{"first_name":"ada","last_name":"Lovelace","email":"not-an-email","password":"short"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, false, body["success"])
	assert.Len(t, body["errors"], 2)
	assert.Zero(t, f.otps.count())
}

func TestRegisterEndpointBadJSON(t *testing.T) {
	f := newFixture(t)

	status, body := doJSON(t, newTestRouter(f), http.MethodPost, "/api/auth/register", `{"email":`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, false, body["success"])
}

func TestLoginEndpointSession(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "a@x.com", "pw12345678", true, StatusActive)

	status, body := doJSON(t, newTestRouter(f), http.MethodPost, "/api/auth/login",
		`{"email":"a@x.com","password":"pw12345678"}`, "X-Real-IP", "203.0.113.5")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, MsgUserLoggedIn, body["message"])
	assert.Equal(t, "USER", body["role"])
	assert.NotEmpty(t, body["token"])

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a@x.com", data["email"])
	assert.NotContains(t, data, "password")
	assert.NotContains(t, data, "PasswordHash")

	assert.Equal(t, "203.0.113.5", pointer.Val(f.credentials.get("a@x.com").LastIP))
}

func TestLoginEndpointAdminMessage(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "root@x.com", "pw12345678", true, StatusActive)
	require.NoError(t, f.credentials.update(
		func(row *Credential) bool { return row.Email == "root@x.com" },
		func(row *Credential) { row.Role = sec.RoleAdmin },
	))

	status, body := doJSON(t, newTestRouter(f), http.MethodPost, "/api/auth/login",
		`{"email":"root@x.com","password":"pw12345678"}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, MsgAdminLoggedIn, body["message"])
	assert.Equal(t, "ADMIN", body["role"])
}

func TestLoginEndpointPending(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "a@x.com", "pw12345678", false, StatusActive)

	status, body := doJSON(t, newTestRouter(f), http.MethodPost, "/api/auth/login",
		`{"email":"a@x.com","password":"pw12345678"}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, MsgVerifyPending, body["message"])
	assert.NotContains(t, body, "token")
}

func TestLoginEndpointBlocked(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "a@x.com", "pw12345678", true, StatusBlocked)

	status, body := doJSON(t, newTestRouter(f), http.MethodPost, "/api/auth/login",
		`{"email":"a@x.com","password":"pw12345678"}`)

	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, MsgAccountBlocked, body["message"])
}

func TestVerifyAndResendEndpoints(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f)
	record := registerPending(t, f)

	status, body := doJSON(t, router, http.MethodPost, "/api/otp/resend", `{"token":"`+record.Token+`"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, MsgOTPResent, body["message"])

	fresh := f.otps.only(t)

	status, body = doJSON(t, router, http.MethodPost, "/api/otp/verify",
		`{"email":"a@x.com","token":"`+fresh.Token+`","otp":"000000","type":"account-verification"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, MsgOTPInvalid, body["message"])

	status, body = doJSON(t, router, http.MethodPost, "/api/otp/verify",
		`{"email":"a@x.com","token":"`+fresh.Token+`","otp":"`+testCode+`","type":"account-verification"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, MsgOTPVerified, body["message"])
	assert.True(t, f.credentials.get("a@x.com").IsVerified)
}

func TestVerifyEndpointUnknownTypeIsMismatch(t *testing.T) {
	f := newFixture(t)
	record := registerPending(t, f)

	status, body := doJSON(t, newTestRouter(f), http.MethodPost, "/api/otp/verify",
		`{"email":"a@x.com","token":"`+record.Token+`","otp":"`+testCode+`","type":"admin"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, MsgTokenMismatch, body["message"])
	assert.Equal(t, 1, f.otps.count())
}

func TestPasswordLengthLimitEndpoints(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f)
	long := strings.Repeat("p", 80)

	status, body := doJSON(t, router, http.MethodPost, "/api/auth/register",
		`{"first_name":"ada","last_name":"Lovelace","email":"new@x.com","password":"`+long+`"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Len(t, body["errors"], 1)
	assert.Nil(t, f.credentials.get("new@x.com"))

	record := forgotToken(t, f)

	status, body = doJSON(t, router, http.MethodPost, "/api/auth/reset-password",
		`{"token":"`+record.Token+`","password":"`+long+`"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Len(t, body["errors"], 1)
	assert.Contains(t, f.resets.rows, "a@x.com")
}

func TestPasswordRecoveryEndpoints(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f)
	f.seedUser(t, "a@x.com", "pw12345678", true, StatusActive)

	status, body := doJSON(t, router, http.MethodPost, "/api/auth/forgot-password", `{"email":"nobody@x.com"}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, MsgEmailUnknown, body["message"])

	status, body = doJSON(t, router, http.MethodPost, "/api/auth/forgot-password", `{"email":"a@x.com"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, MsgResetLinkSent, body["message"])

	token := f.resets.rows["a@x.com"].Token

	status, body = doJSON(t, router, http.MethodPost, "/api/auth/reset-password",
		`{"token":"`+token+`","password":"brand-new-pass"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, MsgPasswordUpdated, body["message"])

	status, body = doJSON(t, router, http.MethodPost, "/api/auth/reset-password",
		`{"token":"`+token+`","password":"brand-new-pass"}`)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, MsgResetInvalid, body["message"])
}

func TestMeEndpoint(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f)
	f.seedUser(t, "a@x.com", "pw12345678", true, StatusActive)

	_, login := doJSON(t, router, http.MethodPost, "/api/auth/login", `{"email":"a@x.com","password":"pw12345678"}`)
	token, ok := login["token"].(string)
	require.True(t, ok)

	status, body := doJSON(t, router, http.MethodGet, "/api/auth/me", "", "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, MsgSessionRetrieved, body["message"])

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a@x.com", data["email"])

	status, _ = doJSON(t, router, http.MethodGet, "/api/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}
