// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taibuivan/nullship/internal/platform/database/schema"
	"github.com/taibuivan/nullship/internal/platform/dberr"
	"github.com/taibuivan/nullship/internal/platform/postgres"
	"github.com/taibuivan/nullship/internal/platform/sec"
)

// # Credential Repository

// PostgresCredentialStore implements [CredentialStore] over the users table.
type PostgresCredentialStore struct {
	db postgres.DBTX
}

// NewCredentialStore creates a PostgreSQL implementation of [CredentialStore].
func NewCredentialStore(db postgres.DBTX) *PostgresCredentialStore {
	return &PostgresCredentialStore{db: db}
}

var (
	usersTable  = schema.Users
	otpsTable   = schema.OTPs
	resetsTable = schema.ResetPasswords
)

/*
Create persists a new credential.

Parameters:
  - context: context.Context
  - credential: *Credential (ID and timestamps are filled in on success)

Returns:
  - error: ErrEmailTaken, or database failures
*/
func (repository *PostgresCredentialStore) Create(context context.Context, credential *Credential) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s, %s, %s`,
		usersTable.Table,
		usersTable.RoleID, usersTable.FirstName, usersTable.LastName, usersTable.Email, usersTable.Password, usersTable.IsVerified, usersTable.Status,
		usersTable.ID, usersTable.CreatedAt, usersTable.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		int(credential.Role),
		credential.FirstName,
		credential.LastName,
		credential.Email,
		credential.PasswordHash,
		credential.IsVerified,
		int(credential.Status),
	).Scan(&credential.ID, &credential.CreatedAt, &credential.UpdatedAt)

	if err != nil {
		err = dberr.Wrap(err, "postgres_credential_create_failed")
		if errors.Is(err, dberr.ErrDuplicate) {
			return ErrEmailTaken
		}
		return err
	}

	return nil
}

/*
FindByEmail retrieves a credential by its unique email.

Parameters:
  - context: context.Context
  - email: string
  - options: LookupOptions

Returns:
  - *Credential: Hydrated entity
  - error: ErrNotFound or database errors
*/
func (repository *PostgresCredentialStore) FindByEmail(context context.Context, email string, options LookupOptions) (*Credential, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, usersTable.SelectList(), usersTable.Table, usersTable.Email)
	if options.OnlyActive {
		query += fmt.Sprintf(` AND %s = %d`, usersTable.Status, StatusActive)
	}

	credential, err := repository.scanOne(context, query, email)
	if err != nil {
		return nil, err
	}

	if !options.WithPasswordHash {
		credential.PasswordHash = ""
	}
	return credential, nil
}

// FindByID retrieves a credential by primary key. The password digest is never loaded.
func (repository *PostgresCredentialStore) FindByID(context context.Context, id int64) (*Credential, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, usersTable.SelectList(), usersTable.Table, usersTable.ID)

	credential, err := repository.scanOne(context, query, id)
	if err != nil {
		return nil, err
	}
	credential.PasswordHash = ""
	return credential, nil
}

// ExistsByEmail reports whether a credential uses email.
func (repository *PostgresCredentialStore) ExistsByEmail(context context.Context, email string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`, usersTable.Table, usersTable.Email)

	var exists bool
	if err := repository.db.QueryRow(context, query, email).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "postgres_credential_exists_failed")
	}
	return exists, nil
}

// UpdateIP records the caller address of the latest login.
func (repository *PostgresCredentialStore) UpdateIP(context context.Context, id int64, ip string) error {
	return repository.update(context, "postgres_credential_update_ip_failed", usersTable.IPAddress, ip, usersTable.ID, id)
}

// UpdatePassword replaces the password digest of the credential registered under email.
func (repository *PostgresCredentialStore) UpdatePassword(context context.Context, email, passwordHash string) error {
	return repository.update(context, "postgres_credential_update_password_failed", usersTable.Password, passwordHash, usersTable.Email, email)
}

// UpdateVerified sets the verification flag.
func (repository *PostgresCredentialStore) UpdateVerified(context context.Context, id int64, verified bool) error {
	return repository.update(context, "postgres_credential_update_verified_failed", usersTable.IsVerified, verified, usersTable.ID, id)
}

func (repository *PostgresCredentialStore) scanOne(context context.Context, query string, argument any) (*Credential, error) {
	var (
		credential Credential
		role       int
		status     int
	)

	err := repository.db.QueryRow(context, query, argument).Scan(
		&credential.ID,
		&role,
		&credential.FirstName,
		&credential.LastName,
		&credential.Email,
		&credential.PasswordHash,
		&credential.IsVerified,
		&status,
		&credential.LastIP,
		&credential.CreatedAt,
		&credential.UpdatedAt,
	)
	if err != nil {
		err = dberr.Wrap(err, "postgres_credential_find_failed")
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	credential.Role = sec.Role(role)
	credential.Status = Status(status)
	return &credential, nil
}

// update sets one column on the row matched by key and fails with ErrNotFound if none matched.
func (repository *PostgresCredentialStore) update(context context.Context, action, column string, value any, key string, keyValue any) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = NOW() WHERE %s = $2`, usersTable.Table, column, usersTable.UpdatedAt, key)

	tag, err := repository.db.Exec(context, query, value, keyValue)
	if err != nil {
		return dberr.Wrap(err, action)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// # OTP Repository

// PostgresOtpStore implements [OtpStore] and [ExpiredPurger] over the otps table.
type PostgresOtpStore struct {
	db postgres.DBTX
}

// NewOtpStore creates a PostgreSQL implementation of [OtpStore].
func NewOtpStore(db postgres.DBTX) *PostgresOtpStore {
	return &PostgresOtpStore{db: db}
}

// Issue inserts one OTP record.
func (repository *PostgresOtpStore) Issue(context context.Context, record OneTimeToken) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)`,
		otpsTable.Table, otpsTable.Token, otpsTable.Email, otpsTable.Purpose, otpsTable.Code, otpsTable.ExpiresAt,
	)

	if _, err := repository.db.Exec(context, query,
		record.Token, record.Email, string(record.Purpose), record.CodeHash, record.ExpiresAt,
	); err != nil {
		return dberr.Wrap(err, "postgres_otp_issue_failed")
	}
	return nil
}

// Find returns the OTP record for token.
func (repository *PostgresOtpStore) Find(context context.Context, token string) (*OneTimeToken, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s FROM %s WHERE %s = $1`,
		otpsTable.Token, otpsTable.Email, otpsTable.Purpose, otpsTable.Code, otpsTable.ExpiresAt, otpsTable.Table, otpsTable.Token,
	)

	var (
		record  OneTimeToken
		purpose string
	)
	err := repository.db.QueryRow(context, query, token).Scan(
		&record.Token, &record.Email, &purpose, &record.CodeHash, &record.ExpiresAt,
	)
	if err != nil {
		err = dberr.Wrap(err, "postgres_otp_find_failed")
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	record.Purpose = Purpose(purpose)
	return &record, nil
}

// Destroy deletes the record for token and reports whether it existed.
func (repository *PostgresOtpStore) Destroy(context context.Context, token string) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, otpsTable.Table, otpsTable.Token)

	tag, err := repository.db.Exec(context, query, token)
	if err != nil {
		return false, dberr.Wrap(err, "postgres_otp_destroy_failed")
	}
	return tag.RowsAffected() > 0, nil
}

// DestroyForSubject deletes every OTP of email for purpose.
func (repository *PostgresOtpStore) DestroyForSubject(context context.Context, email string, purpose Purpose) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`, otpsTable.Table, otpsTable.Email, otpsTable.Purpose)

	tag, err := repository.db.Exec(context, query, email, string(purpose))
	if err != nil {
		return 0, dberr.Wrap(err, "postgres_otp_destroy_subject_failed")
	}
	return tag.RowsAffected(), nil
}

// PurgeExpired implements [ExpiredPurger].
func (repository *PostgresOtpStore) PurgeExpired(context context.Context, now time.Time) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s <= $1`, otpsTable.Table, otpsTable.ExpiresAt)

	tag, err := repository.db.Exec(context, query, now.Unix())
	if err != nil {
		return 0, dberr.Wrap(err, "postgres_otp_purge_failed")
	}
	return tag.RowsAffected(), nil
}

// # Reset Token Repository

// PostgresResetTokenStore implements [ResetTokenStore] and [ExpiredPurger]
// over the reset_passwords table, whose primary key is the email.
type PostgresResetTokenStore struct {
	db postgres.DBTX
}

// NewResetTokenStore creates a PostgreSQL implementation of [ResetTokenStore].
func NewResetTokenStore(db postgres.DBTX) *PostgresResetTokenStore {
	return &PostgresResetTokenStore{db: db}
}

/*
Replace upserts the reset token of an email.

Description: A single statement keyed by email, so two concurrent requests
for the same address leave exactly one row behind (the later writer wins).

Parameters:
  - context: context.Context
  - record: ResetToken

Returns:
  - error: Persistence failures
*/
func (repository *PostgresResetTokenStore) Replace(context context.Context, record ResetToken) error {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s)
		VALUES ($1, $2, $3)
		ON CONFLICT (%[2]s) DO UPDATE
		SET %[3]s = EXCLUDED.%[3]s, %[4]s = EXCLUDED.%[4]s, %[5]s = NOW()`,
		resetsTable.Table, resetsTable.Email, resetsTable.Token, resetsTable.ExpiresAt, resetsTable.CreatedAt,
	)

	if _, err := repository.db.Exec(context, query, record.Email, record.Token, record.ExpiresAt); err != nil {
		return dberr.Wrap(err, "postgres_reset_replace_failed")
	}
	return nil
}

// FindByToken returns the reset record holding token.
func (repository *PostgresResetTokenStore) FindByToken(context context.Context, token string) (*ResetToken, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s = $1`,
		resetsTable.Email, resetsTable.Token, resetsTable.ExpiresAt, resetsTable.Table, resetsTable.Token,
	)

	var record ResetToken
	err := repository.db.QueryRow(context, query, token).Scan(&record.Email, &record.Token, &record.ExpiresAt)
	if err != nil {
		err = dberr.Wrap(err, "postgres_reset_find_failed")
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// Consume deletes the record holding token and reports whether it existed.
func (repository *PostgresResetTokenStore) Consume(context context.Context, token string) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, resetsTable.Table, resetsTable.Token)

	tag, err := repository.db.Exec(context, query, token)
	if err != nil {
		return false, dberr.Wrap(err, "postgres_reset_consume_failed")
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteByEmail removes the reset record of email, if any.
func (repository *PostgresResetTokenStore) DeleteByEmail(context context.Context, email string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, resetsTable.Table, resetsTable.Email)

	if _, err := repository.db.Exec(context, query, email); err != nil {
		return dberr.Wrap(err, "postgres_reset_delete_failed")
	}
	return nil
}

// PurgeExpired implements [ExpiredPurger].
func (repository *PostgresResetTokenStore) PurgeExpired(context context.Context, now time.Time) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s <= $1`, resetsTable.Table, resetsTable.ExpiresAt)

	tag, err := repository.db.Exec(context, query, now.Unix())
	if err != nil {
		return 0, dberr.Wrap(err, "postgres_reset_purge_failed")
	}
	return tag.RowsAffected(), nil
}
