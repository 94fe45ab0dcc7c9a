// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// ResetPasswordsTable represents the 'reset_passwords' table
type ResetPasswordsTable struct {
	Table     string
	Email     string
	Token     string
	ExpiresAt string
	CreatedAt string
}

// ResetPasswords is the schema definition for reset_passwords
var ResetPasswords = ResetPasswordsTable{
	Table:     "reset_passwords",
	Email:     "email",
	Token:     "token",
	ExpiresAt: "expires_at",
	CreatedAt: "created_at",
}
