// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/nullship/internal/platform/apperr"
	"github.com/taibuivan/nullship/internal/platform/ctxutil"
	"github.com/taibuivan/nullship/internal/platform/mailer"
	"github.com/taibuivan/nullship/internal/platform/sec"
	"github.com/taibuivan/nullship/internal/platform/validate"
	"github.com/taibuivan/nullship/pkg/pointer"
)

// # Contracts & Types

// Dependencies are the collaborators of [Service]. Now and NewCode default to
// the wall clock and a random six digit code.
type Dependencies struct {
	Credentials CredentialStore
	OTPs        OtpStore
	ResetTokens ResetTokenStore
	Codec       TokenCodec
	Hasher      SecretHasher
	Issuer      *SessionIssuer
	Mailer      mailer.Sender

	Now     func() time.Time
	NewCode func() (string, error)
}

// Settings are the static values used to build emails and expiries.
type Settings struct {
	AppName   string
	ClientURL string
	OTPTTL    time.Duration
	ResetTTL  time.Duration
}

// Service orchestrates registration, login, OTP verification and password reset.
//
// It holds no mutable state of its own; every workflow relies on the stores
// for atomicity, so one Service is shared by all requests.
type Service struct {
	credentials CredentialStore
	otps        OtpStore
	resetTokens ResetTokenStore
	codec       TokenCodec
	hasher      SecretHasher
	issuer      *SessionIssuer
	mailer      mailer.Sender
	settings    Settings

	now     func() time.Time
	newCode func() (string, error)
}

// NewService constructs a [Service].
func NewService(deps Dependencies, settings Settings) *Service {
	if settings.OTPTTL <= 0 {
		settings.OTPTTL = DefaultOTPTTL
	}
	if settings.ResetTTL <= 0 {
		settings.ResetTTL = DefaultResetTokenTTL
	}

	service := &Service{
		credentials: deps.Credentials,
		otps:        deps.OTPs,
		resetTokens: deps.ResetTokens,
		codec:       deps.Codec,
		hasher:      deps.Hasher,
		issuer:      deps.Issuer,
		mailer:      deps.Mailer,
		settings:    settings,
		now:         deps.Now,
		newCode:     deps.NewCode,
	}

	if service.now == nil {
		service.now = time.Now
	}
	if service.newCode == nil {
		service.newCode = func() (string, error) { return sec.NewOTP(sec.OTPDigits) }
	}

	return service
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

/*
Register persists an unverified account and emails it a verification code.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *Credential: Created entity, without its digest
  - error: Validation if the password is too long, Conflict if the email exists, or storage and email faults
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*Credential, error) {

	exists, err := service.credentials.ExistsByEmail(context, input.Email)
	if err != nil {
		return nil, fmt.Errorf("auth_service_register_lookup_failed: %w", err)
	}
	if exists {
		return nil, apperr.Conflict(MsgEmailTaken)
	}

	if err := checkPassword(input.Password); err != nil {
		return nil, err
	}

	passwordHash, err := service.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_register_hash_failed: %w", err)
	}

	credential := &Credential{
		Role:         sec.RoleUser,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: passwordHash,
		IsVerified:   false,
		Status:       StatusActive,
	}

	// A concurrent registration can win between the check and the insert.
	if err := service.credentials.Create(context, credential); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, apperr.Conflict(MsgEmailTaken)
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	if _, err := service.IssueOTP(context, credential.Email, credential.FirstName, PurposeAccountVerification); err != nil {
		return nil, err
	}

	credential.PasswordHash = ""
	return credential, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
	IP       string
}

// LoginResult is either a pending verification or an established session.
type LoginResult struct {
	// Pending is set when the account is unverified and a new code was emailed.
	Pending    bool
	Session    *Session
	Credential *Credential
}

/*
Login authenticates an account and issues a session credential.

Description: Unknown emails are NotFound and blocked accounts Forbidden. An
unverified account gets a fresh code and no session, whatever the password.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginResult: Pending marker or session
  - error: NotFound, Forbidden, Unauthorized, or storage faults
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginResult, error) {

	credential, err := service.credentials.FindByEmail(context, input.Email, LookupOptions{WithPasswordHash: true})
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound(MsgUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	// Blocked wins over every other state.
	if credential.IsBlocked() {
		return nil, apperr.Forbidden(MsgAccountBlocked)
	}

	if !credential.IsVerified {
		if _, err := service.IssueOTP(context, credential.Email, credential.FirstName, PurposeAccountVerification); err != nil {
			return nil, err
		}
		return &LoginResult{Pending: true}, nil
	}

	session, err := service.issuer.Authenticate(credential, input.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		return nil, apperr.Unauthorized(MsgBadCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("auth_service_login_session_failed: %w", err)
	}

	if input.IP != "" {
		if err := service.credentials.UpdateIP(context, credential.ID, input.IP); err != nil {
			return nil, fmt.Errorf("auth_service_login_update_ip_failed: %w", err)
		}
		credential.LastIP = pointer.To(input.IP)
	}

	credential.PasswordHash = ""
	return &LoginResult{Session: session, Credential: credential}, nil
}

// # One-Time Codes

/*
IssueOTP emails a fresh code for purpose and returns the token that keys it.

Description: Earlier codes of the same email and purpose are destroyed first,
so at most one stays live. The record is stored before the email goes out, and
a send failure is returned to the caller.

Parameters:
  - context: context.Context
  - email: string
  - firstName: string (greeting only)
  - purpose: Purpose

Returns:
  - string: Encrypted token
  - error: Storage, crypto or email faults
*/
func (service *Service) IssueOTP(context context.Context, email, firstName string, purpose Purpose) (string, error) {

	code, err := service.newCode()
	if err != nil {
		return "", fmt.Errorf("auth_service_otp_generate_failed: %w", err)
	}

	codeHash, err := service.hasher.Hash(code)
	if err != nil {
		return "", fmt.Errorf("auth_service_otp_hash_failed: %w", err)
	}

	token, err := SealSubject(service.codec, TokenSubject{Email: email, Purpose: purpose})
	if err != nil {
		return "", fmt.Errorf("auth_service_otp_seal_failed: %w", err)
	}

	if _, err := service.otps.DestroyForSubject(context, email, purpose); err != nil {
		return "", fmt.Errorf("auth_service_otp_supersede_failed: %w", err)
	}

	record := OneTimeToken{
		Token:     token,
		Email:     email,
		Purpose:   purpose,
		CodeHash:  codeHash,
		ExpiresAt: service.now().Add(service.settings.OTPTTL).Unix(),
	}
	if err := service.otps.Issue(context, record); err != nil {
		return "", fmt.Errorf("auth_service_otp_issue_failed: %w", err)
	}

	subject, body, err := mailer.RenderOTP(
		service.settings.AppName,
		firstName,
		code,
		service.settings.ClientURL+"/verify/"+token,
		minutes(service.settings.OTPTTL),
	)
	if err != nil {
		return "", fmt.Errorf("auth_service_otp_render_failed: %w", err)
	}

	if err := service.mailer.Send(context, email, subject, body); err != nil {
		return "", fmt.Errorf("auth_service_otp_send_failed: %w", err)
	}

	return token, nil
}

// VerifyOTPInput is a code submission.
type VerifyOTPInput struct {
	Email string
	Token string
	OTP   string
	Type  string
}

/*
VerifyOTP redeems a code once and applies the side effect of its purpose.

Description: A token opened for another email or purpose is rejected without
being destroyed. The record is consumed before the side effect, so of two
racing verifications only one succeeds.

Parameters:
  - context: context.Context
  - input: VerifyOTPInput

Returns:
  - error: Unauthorized, NotFound, or storage faults
*/
func (service *Service) VerifyOTP(context context.Context, input VerifyOTPInput) error {

	record, err := service.otps.Find(context, input.Token)
	if errors.Is(err, ErrNotFound) {
		return apperr.Unauthorized(MsgTokenUnknown)
	}
	if err != nil {
		return fmt.Errorf("auth_service_verify_lookup_failed: %w", err)
	}

	subject, err := OpenSubject(service.codec, input.Token)
	if err != nil ||
		subject.Email != input.Email ||
		string(subject.Purpose) != input.Type ||
		subject.Email != record.Email ||
		subject.Purpose != record.Purpose {
		return apperr.Unauthorized(MsgTokenMismatch)
	}

	if record.Expired(service.now()) {
		return apperr.Unauthorized(MsgOTPExpired)
	}

	matched, err := service.hasher.Verify(input.OTP, record.CodeHash)
	if err != nil {
		return fmt.Errorf("auth_service_verify_compare_failed: %w", err)
	}
	if !matched {
		return apperr.Unauthorized(MsgOTPInvalid)
	}

	consumed, err := service.otps.Destroy(context, input.Token)
	if err != nil {
		return fmt.Errorf("auth_service_verify_consume_failed: %w", err)
	}
	if !consumed {
		service.logger(context).Info("otp consumed concurrently", slog.String("purpose", string(subject.Purpose)))
		return apperr.Unauthorized(MsgTokenSuperseded)
	}

	switch subject.Purpose {
	case PurposeAccountVerification:
		credential, err := service.credentials.FindByEmail(context, subject.Email, LookupOptions{})
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound(MsgUserNotFound)
		}
		if err != nil {
			return fmt.Errorf("auth_service_verify_user_lookup_failed: %w", err)
		}
		if err := service.credentials.UpdateVerified(context, credential.ID, true); err != nil {
			return fmt.Errorf("auth_service_verify_update_failed: %w", err)
		}
	case PurposeResetPassword:
		// Proving control of the mailbox is the whole effect.
	}

	return nil
}

/*
ResendOTP destroys a pending code and emails a new one with the same purpose.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - string: The new token
  - error: Unauthorized, or storage and email faults
*/
func (service *Service) ResendOTP(context context.Context, token string) (string, error) {

	_, err := service.otps.Find(context, token)
	if errors.Is(err, ErrNotFound) {
		return "", apperr.Unauthorized(MsgTokenUnknown)
	}
	if err != nil {
		return "", fmt.Errorf("auth_service_resend_lookup_failed: %w", err)
	}

	subject, err := OpenSubject(service.codec, token)
	if err != nil {
		return "", apperr.Unauthorized(MsgTokenMismatch)
	}

	if _, err := service.otps.Destroy(context, token); err != nil {
		return "", fmt.Errorf("auth_service_resend_destroy_failed: %w", err)
	}

	credential, err := service.credentials.FindByEmail(context, subject.Email, LookupOptions{OnlyActive: true})
	if errors.Is(err, ErrNotFound) {
		return "", apperr.Unauthorized(MsgResendNoUser)
	}
	if err != nil {
		return "", fmt.Errorf("auth_service_resend_user_lookup_failed: %w", err)
	}

	return service.IssueOTP(context, credential.Email, credential.FirstName, subject.Purpose)
}

// # Password Recovery

/*
ForgotPassword replaces the reset token of email and emails the reset link.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: Conflict if the email is unknown, or storage and email faults
*/
func (service *Service) ForgotPassword(context context.Context, email string) error {

	credential, err := service.credentials.FindByEmail(context, email, LookupOptions{})
	if errors.Is(err, ErrNotFound) {
		return apperr.Conflict(MsgEmailUnknown)
	}
	if err != nil {
		return fmt.Errorf("auth_service_forgot_lookup_failed: %w", err)
	}

	token, err := SealSubject(service.codec, TokenSubject{Email: credential.Email, Purpose: PurposeResetPassword})
	if err != nil {
		return fmt.Errorf("auth_service_forgot_seal_failed: %w", err)
	}

	record := ResetToken{
		Email:     credential.Email,
		Token:     token,
		ExpiresAt: service.now().Add(service.settings.ResetTTL).Unix(),
	}
	if err := service.resetTokens.Replace(context, record); err != nil {
		return fmt.Errorf("auth_service_forgot_store_failed: %w", err)
	}

	subject, body, err := mailer.RenderReset(
		service.settings.AppName,
		credential.FirstName,
		service.settings.ClientURL+"/reset-password/"+token,
		minutes(service.settings.ResetTTL),
	)
	if err != nil {
		return fmt.Errorf("auth_service_forgot_render_failed: %w", err)
	}

	if err := service.mailer.Send(context, credential.Email, subject, body); err != nil {
		return fmt.Errorf("auth_service_forgot_send_failed: %w", err)
	}

	return nil
}

/*
ResetPassword sets a new password for the owner of a reset token.

Description: Every token that does not open to a live reset-password subject
of an existing account is Forbidden. Only expiry is Unauthorized.

Parameters:
  - context: context.Context
  - token: string
  - password: string

Returns:
  - error: Validation, Forbidden, Unauthorized, or storage faults
*/
func (service *Service) ResetPassword(context context.Context, token, password string) error {

	if err := checkPassword(password); err != nil {
		return err
	}

	record, err := service.resetTokens.FindByToken(context, token)
	if errors.Is(err, ErrNotFound) {
		return apperr.Forbidden(MsgResetInvalid)
	}
	if err != nil {
		return fmt.Errorf("auth_service_reset_lookup_failed: %w", err)
	}

	if record.Expired(service.now()) {
		return apperr.Unauthorized(MsgResetExpired)
	}

	subject, err := OpenSubject(service.codec, token)
	if err != nil || subject.Email != record.Email || subject.Purpose != PurposeResetPassword {
		return apperr.Forbidden(MsgResetInvalid)
	}

	exists, err := service.credentials.ExistsByEmail(context, subject.Email)
	if err != nil {
		return fmt.Errorf("auth_service_reset_user_lookup_failed: %w", err)
	}
	if !exists {
		return apperr.Forbidden(MsgResetInvalid)
	}

	// The digest is computed before the token is spent.
	passwordHash, err := service.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("auth_service_reset_hash_failed: %w", err)
	}

	consumed, err := service.resetTokens.Consume(context, token)
	if err != nil {
		return fmt.Errorf("auth_service_reset_consume_failed: %w", err)
	}
	if !consumed {
		return apperr.Forbidden(MsgResetInvalid)
	}

	if err := service.credentials.UpdatePassword(context, subject.Email, passwordHash); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.Forbidden(MsgResetInvalid)
		}
		return fmt.Errorf("auth_service_reset_update_failed: %w", err)
	}

	return nil
}

// # Helpers

// checkPassword rejects passwords the hasher cannot digest, so callers
// that skip the HTTP validator still get a 422 instead of a fault.
func checkPassword(password string) error {
	validator := &validate.Validator{}
	return validator.MaxBytes(FieldPassword, password, PasswordMaxBytes).Err()
}

func (service *Service) logger(context context.Context) *slog.Logger {
	return ctxutil.GetLogger(context).With(slog.String("component", "auth"))
}

func minutes(ttl time.Duration) int {
	return int(ttl / time.Minute)
}
