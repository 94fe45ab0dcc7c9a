// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// OTPDigits is the length of every emailed verification code.
const OTPDigits = 6

// NewOTP returns a uniformly random numeric code of the given length.
func NewOTP(digits int) (string, error) {
	if digits < 4 || digits > 10 {
		return "", fmt.Errorf("sec: invalid otp length %d", digits)
	}

	var builder strings.Builder
	builder.Grow(digits)

	ten := big.NewInt(10)
	for range digits {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("sec: failed to draw otp digit: %w", err)
		}
		builder.WriteByte(byte('0' + n.Int64()))
	}

	return builder.String(), nil
}
