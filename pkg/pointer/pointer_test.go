// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pointer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToCopies(t *testing.T) {
	value := "203.0.113.1"
	p := To(value)
	value = "changed"

	assert.Equal(t, "203.0.113.1", *p)
}

func TestVal(t *testing.T) {
	assert.Equal(t, "", Val[string](nil))
	assert.Equal(t, 42, Val(To(42)))
}
