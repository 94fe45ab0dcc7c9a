// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate provides a chainable Validator that collects input problems
// before returning a single [apperr.AppError].
//
// # Architecture
//
// Handlers run the Validator on decoded payloads before any service method is
// called, so the service layer can assume its inputs are shape-valid.
package validate

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/taibuivan/nullship/internal/platform/apperr"
)

// ErrInvalidJSON is returned when the request body cannot be decoded.
var ErrInvalidJSON = apperr.ValidationError("payload must be a valid JSON object.")

// Validator collects input problems via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []string
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add("%s is required.", field)
	}
	return v
}

// MinLen fails if a non-empty value has fewer than min characters.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if count := utf8.RuneCountInString(value); count > 0 && count < min {
		v.add("%s must be at least %d characters (current length: %d characters).", field, min, count)
	}
	return v
}

// MaxBytes fails if the UTF-8 encoding of value is longer than max bytes.
// Use it where the limit is set by an encoder rather than by a column.
func (v *Validator) MaxBytes(field, value string, max int) *Validator {
	if size := len(value); size > max {
		v.add("%s must not be more than %d bytes (current size: %d bytes).", field, max, size)
	}
	return v
}

// Email fails if a non-empty value is not a bare RFC 5322 address.
func (v *Validator) Email(field, value string) *Validator {
	if value == "" {
		return v
	}
	address, err := mail.ParseAddress(value)
	if err != nil || address.Address != value {
		v.add("%s must be a valid email address.", field)
	}
	return v
}

// Custom adds a failure with a custom message if the condition is true.
func (v *Validator) Custom(failed bool, message string) *Validator {
	if failed {
		v.errs = append(v.errs, message)
	}
	return v
}

// Err returns a VALIDATION_ERROR [apperr.AppError] if any rules failed,
// or nil if all rules passed.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError(v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

func (v *Validator) add(format string, args ...any) {
	v.errs = append(v.errs, fmt.Sprintf(format, args...))
}
