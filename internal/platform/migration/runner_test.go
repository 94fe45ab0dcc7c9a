// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPgx5URL(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@db:5432/nullship":   "pgx5://u:p@db:5432/nullship",
		"postgresql://u:p@db:5432/nullship": "pgx5://u:p@db:5432/nullship",
		"pgx5://db/nullship":                "pgx5://db/nullship",
		"host=db dbname=nullship":           "host=db dbname=nullship",
	}

	for input, expected := range cases {
		assert.Equal(t, expected, pgx5URL(input), input)
	}
}
