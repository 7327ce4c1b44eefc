// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package key

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name       string
		positional []any
		keyword    map[string]any
		want       string
	}{
		{
			name: "no arguments",
			want: "",
		},
		{
			name:       "positional only",
			positional: []any{3, "a", true, nil},
			want:       `[3,"a",true,null]`,
		},
		{
			name:    "keyword only",
			keyword: map[string]any{"x": 3},
			want:    `{"x":3}`,
		},
		{
			name:       "both",
			positional: []any{"shot"},
			keyword:    map[string]any{"relations": true},
			want:       `[["shot"],{"relations":true}]`,
		},
		{
			name:    "keyword order does not matter",
			keyword: map[string]any{"b": 2, "a": 1, "c": 3},
			want:    `{"a":1,"b":2,"c":3}`,
		},
		{
			name:       "nested values",
			positional: []any{[]any{1, 2}, map[string]any{"z": []string{"q"}, "y": 1.5}},
			want:       `[[1,2],{"y":1.5,"z":["q"]}]`,
		},
		{
			name:       "empty keyword map is ignored",
			positional: []any{1},
			keyword:    map[string]any{},
			want:       `[1]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Derive(tt.positional, tt.keyword)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveTime(t *testing.T) {
	require := require.New(t)

	at := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	got, err := Derive([]any{at}, nil)
	require.NoError(err)
	require.Equal(`["2024-03-01T12:30:00Z"]`, got)
}

func TestDerivePositionalDiffersFromKeyword(t *testing.T) {
	require := require.New(t)

	pos, err := Derive([]any{3}, nil)
	require.NoError(err)
	kw, err := Derive(nil, map[string]any{"x": 3})
	require.NoError(err)
	require.NotEqual(pos, kw)
}

// The encodings are untagged; this collision is kept as-is.
func TestDeriveMixedCollision(t *testing.T) {
	require := require.New(t)

	mixed, err := Derive([]any{1}, map[string]any{"a": 1})
	require.NoError(err)
	positional, err := Derive([]any{[]any{1}, map[string]any{"a": 1}}, nil)
	require.NoError(err)
	require.Equal(mixed, positional)
}

type node struct {
	Next *node
}

func TestDeriveUnserializable(t *testing.T) {
	cyclic := &node{}
	cyclic.Next = cyclic

	tests := []struct {
		name       string
		positional []any
		keyword    map[string]any
	}{
		{name: "channel", positional: []any{make(chan int)}},
		{name: "func", keyword: map[string]any{"fn": func() {}}},
		{name: "complex", positional: []any{complex(1, 2)}},
		{name: "cyclic pointer", positional: []any{cyclic}},
		{name: "nan", positional: []any{math.NaN()}},
		{name: "inf", keyword: map[string]any{"x": math.Inf(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Derive(tt.positional, tt.keyword)
			assert.ErrorIs(t, err, ErrUnserializable)
		})
	}
}

func TestDigest(t *testing.T) {
	require := require.New(t)

	require.Equal(Digest(`[1]`), Digest(`[1]`))
	require.NotEqual(Digest(`[1]`), Digest(`[2]`))
}
