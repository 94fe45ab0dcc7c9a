// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// Role is the authorization level stored on a credential. Values match the
// numeric codes persisted in the users table.
type Role int

const (
	// Unrestricted system access
	RoleAdmin Role = 1

	// Default role for self-registered accounts
	RoleUser Role = 2

	// Account created on behalf of a User
	RoleSubUser Role = 3

	// Can publish blog content
	RoleBlogger Role = 4
)

var roleNames = map[Role]string{
	RoleAdmin:   "ADMIN",
	RoleUser:    "USER",
	RoleSubUser: "SUB_USER",
	RoleBlogger: "BLOGGER",
}

// String returns the upper-case role name, or "UNKNOWN".
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "UNKNOWN"
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// IsMember reports whether r may use member endpoints (User or SubUser).
func (r Role) IsMember() bool {
	return r == RoleUser || r == RoleSubUser
}
