// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrMalformedToken is returned by [Codec.Decrypt] for any input it cannot open.
// Callers treat it as "invalid token" and never surface the detail.
var ErrMalformedToken = errors.New("sec: malformed token")

// Codec turns short strings into opaque, recoverable hex tokens.
//
// # Format
//
// hex(nonce || ciphertext || tag) using AES-256-GCM. Every call draws a fresh
// nonce, so encrypting the same plaintext twice yields different tokens, and any
// tampering is detected when opening.
type Codec struct {
	aead cipher.AEAD
}

/*
NewCodec builds a Codec from a 32-byte AES-256 key.

Parameters:
  - key: []byte (exactly 32 bytes)

Returns:
  - *Codec: Ready to use, safe for concurrent calls
  - error: If the key length is wrong
*/
func NewCodec(key []byte) (*Codec, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("sec: codec key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to create gcm: %w", err)
	}

	return &Codec{aead: aead}, nil
}

// Encrypt seals plaintext under a random nonce and returns the hex token.
func (codec *Codec) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, codec.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("sec: failed to read nonce: %w", err)
	}

	sealed := codec.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(sealed), nil
}

// Decrypt opens a token produced by [Codec.Encrypt].
func (codec *Codec) Decrypt(token string) (string, error) {
	raw, err := hex.DecodeString(token)
	if err != nil {
		return "", ErrMalformedToken
	}

	nonceSize := codec.aead.NonceSize()
	if len(raw) < nonceSize+codec.aead.Overhead() {
		return "", ErrMalformedToken
	}

	plaintext, err := codec.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", ErrMalformedToken
	}

	return string(plaintext), nil
}
