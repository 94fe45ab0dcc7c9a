// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/nullship/internal/platform/middleware"
	requestutil "github.com/taibuivan/nullship/internal/platform/request"
	"github.com/taibuivan/nullship/internal/platform/respond"
	"github.com/taibuivan/nullship/internal/platform/sec"
	"github.com/taibuivan/nullship/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the authentication and OTP HTTP endpoints.
//
// It is a thin transport layer: input shape is validated here, every business
// rule lives in [Service].
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns the router mounted at /api/auth.
//
// # Endpoints
//   - POST /register        : Creates an unverified account and emails a code.
//   - POST /login           : Authenticates and returns a session credential.
//   - POST /forgot-password : Emails a password reset link.
//   - POST /reset-password  : Sets a new password from a reset link.
//   - GET  /me              : Returns the claims of the current session.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/me", handler.me)
	})

	return router
}

// OTPRoutes returns the router mounted at /api/otp.
func (handler *Handler) OTPRoutes() chi.Router {
	router := chi.NewRouter()
	router.Post("/verify", handler.verifyOTP)
	router.Post("/resend", handler.resendOTP)
	return router
}

// # Request Payloads

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
	OTP   string `json:"otp"`
	Type  string `json:"type"`
}

type resendOTPRequest struct {
	Token string `json:"token"`
}

/*
Register creates an unverified account.

POST /api/auth/register

Response:
  - 200: Success: Account created, code emailed
  - 409: ErrConflict: Email already registered
  - 422: Validation failure
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldFirstName, input.FirstName).
		Required(FieldLastName, input.LastName).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, PasswordMinLength).
		MaxBytes(FieldPassword, input.Password, PasswordMaxBytes)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	_, err := handler.authService.Register(request.Context(), RegisterInput{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Password:  input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, MsgRegistered, nil)
}

/*
Login authenticates an account.

POST /api/auth/login

Response:
  - 200: Session envelope, or a pending message for unverified accounts
  - 401: Bad credentials
  - 403: Blocked account
  - 404: Unknown email
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
		IP:       requestutil.ClientIP(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if result.Pending {
		respond.OK(writer, MsgVerifyPending, nil)
		return
	}

	message := MsgUserLoggedIn
	if result.Credential.Role == sec.RoleAdmin {
		message = MsgAdminLoggedIn
	}

	respond.Session(writer, message, result.Credential.Role.String(), result.Session.Token, result.Credential)
}

/*
ForgotPassword emails a reset link.

POST /api/auth/forgot-password

Response:
  - 200: Success: Link sent
  - 409: ErrConflict: Email unknown
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ForgotPassword(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, MsgResetLinkSent, nil)
}

/*
ResetPassword completes the password recovery flow.

POST /api/auth/reset-password

Response:
  - 200: Success: Password updated
  - 401: Link expired
  - 403: Invalid token
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldToken, input.Token).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, PasswordMinLength).
		MaxBytes(FieldPassword, input.Password, PasswordMaxBytes)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), input.Token, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, MsgPasswordUpdated, nil)
}

/*
VerifyOTP redeems an emailed code.

POST /api/otp/verify

Response:
  - 200: Success: Code accepted
  - 401: Unknown, mismatched, expired, wrong or already used code
*/
func (handler *Handler) verifyOTP(writer http.ResponseWriter, request *http.Request) {
	var input verifyOTPRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldToken, input.Token).
		Required(FieldOTP, input.OTP).
		Required(FieldType, input.Type)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.authService.VerifyOTP(request.Context(), VerifyOTPInput{
		Email: input.Email,
		Token: input.Token,
		OTP:   input.OTP,
		Type:  input.Type,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, MsgOTPVerified, nil)
}

/*
ResendOTP replaces a pending code with a new one.

POST /api/otp/resend

Response:
  - 200: Success: New code emailed
  - 401: Unknown token, or the account is gone or blocked
*/
func (handler *Handler) resendOTP(writer http.ResponseWriter, request *http.Request) {
	var input resendOTPRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldToken, input.Token)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if _, err := handler.authService.ResendOTP(request.Context(), input.Token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, MsgOTPResent, nil)
}

// me returns the claims of the authenticated caller.
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredSession(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, MsgSessionRetrieved, claims)
}
