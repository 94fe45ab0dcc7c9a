// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(fill byte) []byte {
	return bytes.Repeat([]byte{fill}, 32)
}

func TestCodecRoundTrip(t *testing.T) {
	codec, err := NewCodec(testKey(7))
	require.NoError(t, err)

	for _, plaintext := range []string{
		"a@x.com,account-verification",
		`{"email":"we,ird@x.com","purpose":"reset-password"}`,
		"",
		"ünïcödé",
	} {
		token, err := codec.Encrypt(plaintext)
		require.NoError(t, err)

		decoded, err := codec.Decrypt(token)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decoded)
	}
}

func TestCodecUsesFreshNonce(t *testing.T) {
	codec, err := NewCodec(testKey(7))
	require.NoError(t, err)

	first, err := codec.Encrypt("a@x.com")
	require.NoError(t, err)
	second, err := codec.Encrypt("a@x.com")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestCodecRejectsGarbage(t *testing.T) {
	codec, err := NewCodec(testKey(7))
	require.NoError(t, err)

	token, err := codec.Encrypt("a@x.com")
	require.NoError(t, err)

	tampered := []byte(token)
	if tampered[len(tampered)-1] == '0' {
		tampered[len(tampered)-1] = '1'
	} else {
		tampered[len(tampered)-1] = '0'
	}

	for _, input := range []string{"", "zz", "abcd", string(tampered)} {
		_, err := codec.Decrypt(input)
		assert.ErrorIs(t, err, ErrMalformedToken, input)
	}
}

func TestCodecWrongKey(t *testing.T) {
	sender, err := NewCodec(testKey(1))
	require.NoError(t, err)
	receiver, err := NewCodec(testKey(2))
	require.NoError(t, err)

	token, err := sender.Encrypt("a@x.com")
	require.NoError(t, err)

	_, err = receiver.Decrypt(token)
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestNewCodecKeyLength(t *testing.T) {
	_, err := NewCodec([]byte("short"))
	assert.Error(t, err)
}
