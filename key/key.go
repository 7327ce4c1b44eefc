// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package key derives canonical lookup keys from call arguments.
package key

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spaolacci/murmur3"
)

// ErrUnserializable is returned when an argument has no canonical encoding.
var ErrUnserializable = errors.New("argument is not serializable")

// Derive returns the canonical key for a call.
//
// A call without arguments maps to the empty string. Keyword-only and
// positional-only calls encode the mapping or the sequence on its own; a call
// with both encodes the pair [positional, keyword]. Map keys are emitted in
// sorted order, so equal arguments always produce equal keys.
//
// The encodings are not tagged, so a positional call whose arguments look
// like [seq, map] derives the same key as a mixed call. Callers that need the
// two to differ should not rely on Derive alone.
func Derive(positional []any, keyword map[string]any) (string, error) {
	var v any
	switch {
	case len(positional) == 0 && len(keyword) == 0:
		return "", nil
	case len(positional) == 0:
		v = keyword
	case len(keyword) == 0:
		v = positional
	default:
		v = []any{positional, keyword}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnserializable, err)
	}
	return string(b), nil
}

// Digest returns a short fingerprint of k for logging.
func Digest(k string) uint64 {
	return murmur3.Sum64([]byte(k))
}
