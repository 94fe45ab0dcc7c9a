// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher is the adaptive one-way hash used for both passwords and OTP codes.
type Hasher struct {
	cost int
}

// NewHasher returns a bcrypt hasher. Out-of-range costs fall back to [bcrypt.DefaultCost].
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the salted digest of secret.
func (hasher *Hasher) Hash(secret string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(secret), hasher.cost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash secret: %w", err)
	}
	return string(hashedBytes), nil
}

// Verify reports whether secret matches digest.
//
// A mismatch is (false, nil). A digest that is not a bcrypt hash at all is a
// storage fault and comes back as an error.
func (hasher *Hasher) Verify(secret, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("sec: failed to compare digest: %w", err)
	}
}
