// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/nullship/internal/platform/sec"
)

// # In-Memory Stores

type memCredentials struct {
	mu     sync.Mutex
	nextID int64
	rows   map[string]*Credential
}

func newMemCredentials() *memCredentials {
	return &memCredentials{rows: map[string]*Credential{}}
}

func (store *memCredentials) Create(_ context.Context, credential *Credential) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.rows[credential.Email]; ok {
		return ErrEmailTaken
	}
	store.nextID++
	credential.ID = store.nextID
	row := *credential
	store.rows[credential.Email] = &row
	return nil
}

func (store *memCredentials) FindByEmail(_ context.Context, email string, options LookupOptions) (*Credential, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	row, ok := store.rows[email]
	if !ok || (options.OnlyActive && row.IsBlocked()) {
		return nil, ErrNotFound
	}
	found := *row
	if !options.WithPasswordHash {
		found.PasswordHash = ""
	}
	return &found, nil
}

func (store *memCredentials) FindByID(_ context.Context, id int64) (*Credential, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, row := range store.rows {
		if row.ID == id {
			found := *row
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (store *memCredentials) ExistsByEmail(_ context.Context, email string) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	_, ok := store.rows[email]
	return ok, nil
}

func (store *memCredentials) UpdateIP(_ context.Context, id int64, ip string) error {
	return store.update(func(row *Credential) bool { return row.ID == id }, func(row *Credential) { row.LastIP = &ip })
}

func (store *memCredentials) UpdatePassword(_ context.Context, email, passwordHash string) error {
	return store.update(func(row *Credential) bool { return row.Email == email }, func(row *Credential) { row.PasswordHash = passwordHash })
}

func (store *memCredentials) UpdateVerified(_ context.Context, id int64, verified bool) error {
	return store.update(func(row *Credential) bool { return row.ID == id }, func(row *Credential) { row.IsVerified = verified })
}

func (store *memCredentials) update(match func(*Credential) bool, apply func(*Credential)) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, row := range store.rows {
		if match(row) {
			apply(row)
			return nil
		}
	}
	return ErrNotFound
}

// get returns the stored row, digest included.
func (store *memCredentials) get(email string) *Credential {
	store.mu.Lock()
	defer store.mu.Unlock()
	row, ok := store.rows[email]
	if !ok {
		return nil
	}
	found := *row
	return &found
}

type memOTPs struct {
	mu   sync.Mutex
	rows map[string]OneTimeToken

	// lostRace makes Destroy report that another caller removed the row first.
	lostRace bool
}

func newMemOTPs() *memOTPs {
	return &memOTPs{rows: map[string]OneTimeToken{}}
}

func (store *memOTPs) Issue(_ context.Context, record OneTimeToken) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.rows[record.Token] = record
	return nil
}

func (store *memOTPs) Find(_ context.Context, token string) (*OneTimeToken, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	record, ok := store.rows[token]
	if !ok {
		return nil, ErrNotFound
	}
	return &record, nil
}

func (store *memOTPs) Destroy(_ context.Context, token string) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	_, ok := store.rows[token]
	delete(store.rows, token)
	if store.lostRace {
		return false, nil
	}
	return ok, nil
}

func (store *memOTPs) DestroyForSubject(_ context.Context, email string, purpose Purpose) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	var removed int64
	for token, record := range store.rows {
		if record.Email == email && record.Purpose == purpose {
			delete(store.rows, token)
			removed++
		}
	}
	return removed, nil
}

func (store *memOTPs) only(t *testing.T) OneTimeToken {
	t.Helper()
	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.rows, 1)
	for _, record := range store.rows {
		return record
	}
	return OneTimeToken{}
}

func (store *memOTPs) count() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.rows)
}

type memResets struct {
	mu   sync.Mutex
	rows map[string]ResetToken
}

func newMemResets() *memResets {
	return &memResets{rows: map[string]ResetToken{}}
}

func (store *memResets) Replace(_ context.Context, record ResetToken) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.rows[record.Email] = record
	return nil
}

func (store *memResets) FindByToken(_ context.Context, token string) (*ResetToken, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, record := range store.rows {
		if record.Token == token {
			found := record
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (store *memResets) Consume(_ context.Context, token string) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for email, record := range store.rows {
		if record.Token == token {
			delete(store.rows, email)
			return true, nil
		}
	}
	return false, nil
}

func (store *memResets) DeleteByEmail(_ context.Context, email string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.rows, email)
	return nil
}

// # Collaborators

type sentMail struct {
	To, Subject, Body string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (sender *recordingMailer) Send(_ context.Context, to, subject, html string) error {
	sender.mu.Lock()
	defer sender.mu.Unlock()
	if sender.err != nil {
		return sender.err
	}
	sender.sent = append(sender.sent, sentMail{To: to, Subject: subject, Body: html})
	return nil
}

func (sender *recordingMailer) last(t *testing.T) sentMail {
	t.Helper()
	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.NotEmpty(t, sender.sent)
	return sender.sent[len(sender.sent)-1]
}

type fakeClock struct {
	mu      sync.Mutex
	current time.Time
}

func (clock *fakeClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.current
}

func (clock *fakeClock) Advance(d time.Duration) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.current = clock.current.Add(d)
}

// # Fixture

const testCode = "123456"

type fixture struct {
	service     *Service
	credentials *memCredentials
	otps        *memOTPs
	resets      *memResets
	mailer      *recordingMailer
	clock       *fakeClock
	codec       *sec.Codec
	hasher      *sec.Hasher
	tokens      *sec.TokenService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	codec, err := sec.NewCodec(bytes.Repeat([]byte{0x42}, 32))
	require.NoError(t, err)

	tokens, err := sec.NewTokenService("test-secret", "nullship.test", time.Hour)
	require.NoError(t, err)

	hasher := sec.NewHasher(bcrypt.MinCost)
	issuer, err := NewSessionIssuer(hasher, tokens)
	require.NoError(t, err)

	f := &fixture{
		credentials: newMemCredentials(),
		otps:        newMemOTPs(),
		resets:      newMemResets(),
		mailer:      &recordingMailer{},
		clock:       &fakeClock{current: time.Unix(1_700_000_000, 0)},
		codec:       codec,
		hasher:      hasher,
		tokens:      tokens,
	}

	f.service = NewService(Dependencies{
		Credentials: f.credentials,
		OTPs:        f.otps,
		ResetTokens: f.resets,
		Codec:       codec,
		Hasher:      hasher,
		Issuer:      issuer,
		Mailer:      f.mailer,
		Now:         f.clock.Now,
		NewCode:     func() (string, error) { return testCode, nil },
	}, Settings{
		AppName:   "NullShip",
		ClientURL: "https://app.example.com",
		OTPTTL:    DefaultOTPTTL,
		ResetTTL:  DefaultResetTokenTTL,
	})

	return f
}

// seedUser stores an account with the given password and state.
func (f *fixture) seedUser(t *testing.T, email, password string, verified bool, status Status) *Credential {
	t.Helper()
	digest, err := f.hasher.Hash(password)
	require.NoError(t, err)

	credential := &Credential{
		Role:         sec.RoleUser,
		FirstName:    "ada",
		LastName:     "Lovelace",
		Email:        email,
		PasswordHash: digest,
		IsVerified:   verified,
		Status:       status,
	}
	require.NoError(t, f.credentials.Create(context.Background(), credential))
	return credential
}
