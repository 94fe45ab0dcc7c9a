// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # Token Lifetimes

const (
	// DefaultOTPTTL is how long an emailed code stays redeemable.
	DefaultOTPTTL = 10 * time.Minute

	// DefaultResetTokenTTL is how long a reset link stays usable.
	DefaultResetTokenTTL = 10 * time.Minute

	// PasswordMinLength applies to registration and reset.
	PasswordMinLength = 8

	// PasswordMaxBytes is the longest input bcrypt accepts.
	PasswordMaxBytes = 72
)

// # Client Messages
//
// These strings are part of the public API and are matched by clients.

const (
	MsgRegistered       = "Your account has been created successfully. An OTP has been sent to your email, Please verify your account."
	MsgEmailTaken       = "Email already exist."
	MsgUserNotFound     = "User does not exist."
	MsgAccountBlocked   = "Account is blocked, Please contact support."
	MsgVerifyPending    = "An OTP has been sent to your email, Please verify your account."
	MsgAdminLoggedIn    = "Admin logged in successfully."
	MsgUserLoggedIn     = "User logged in successfully."
	MsgBadCredentials   = "Invalid credentials, Please try again."
	MsgEmailUnknown     = "Email do not exist."
	MsgResetLinkSent    = "Reset password link has been to your email."
	MsgResetInvalid     = "Invalid token."
	MsgResetExpired     = "Reset password link expired."
	MsgPasswordUpdated  = "Password updated successfully."
	MsgTokenMismatch    = "Access denied, Invalid token."
	MsgOTPExpired       = "OTP expired."
	MsgOTPInvalid       = "Invalid OTP, Please try again."
	MsgTokenUnknown     = "Invalid Token, Please try again."
	MsgTokenSuperseded  = "Token is no longer valid."
	MsgOTPVerified      = "OTP verified successfully."
	MsgResendNoUser     = "User does not exist or is blocked."
	MsgOTPResent        = "An OTP has been resent to your email."
	MsgSessionRetrieved = "Session retrieved successfully."
)

// # Field Identifiers

const (
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldEmail     = "email"
	FieldPassword  = "password"
	FieldToken     = "token"
	FieldOTP       = "otp"
	FieldType      = "type"
)
