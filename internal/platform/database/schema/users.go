// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns of the auth database, so SQL
// built in the stores never repeats a raw identifier.
package schema

import "strings"

// UsersTable represents the 'users' table
type UsersTable struct {
	Table      string
	ID         string
	RoleID     string
	FirstName  string
	LastName   string
	Email      string
	Password   string
	IsVerified string
	Status     string
	IPAddress  string
	CreatedAt  string
	UpdatedAt  string
}

// Users is the schema definition for users
var Users = UsersTable{
	Table:      "users",
	ID:         "id",
	RoleID:     "role_id",
	FirstName:  "first_name",
	LastName:   "last_name",
	Email:      "email",
	Password:   "password",
	IsVerified: "is_verified",
	Status:     "status",
	IPAddress:  "ip_address",
	CreatedAt:  "created_at",
	UpdatedAt:  "updated_at",
}

// Columns returns all standard column names in scan order
func (t UsersTable) Columns() []string {
	return []string{
		t.ID, t.RoleID, t.FirstName, t.LastName, t.Email, t.Password,
		t.IsVerified, t.Status, t.IPAddress, t.CreatedAt, t.UpdatedAt,
	}
}

// SelectList joins [UsersTable.Columns] for a SELECT clause.
func (t UsersTable) SelectList() string {
	return strings.Join(t.Columns(), ", ")
}
