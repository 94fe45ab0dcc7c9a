// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// OTPsTable represents the 'otps' table
type OTPsTable struct {
	Table     string
	Token     string
	Email     string
	Purpose   string
	Code      string
	ExpiresAt string
	CreatedAt string
}

// OTPs is the schema definition for otps
var OTPs = OTPsTable{
	Table:     "otps",
	Token:     "token",
	Email:     "email",
	Purpose:   "purpose",
	Code:      "code",
	ExpiresAt: "expires_at",
	CreatedAt: "created_at",
}
