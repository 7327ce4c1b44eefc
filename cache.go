// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package memo memoizes read functions behind a size and time bounded cache.
//
// Every wrapped function owns its own store and policy. A Manager tracks all
// functions wrapped against it and holds the switch that turns caching on or
// off for all of them at once.
package memo

import (
	"errors"
	"time"
)

const (
	// DefaultMaxSize is the number of entries kept per function.
	DefaultMaxSize = 300
	// DefaultExpire is how long an entry stays fresh.
	DefaultExpire = 120 * time.Second
)

var (
	ErrDuplicateName = errors.New("function name already registered")
	ErrNilManager    = errors.New("nil manager")
	ErrNilLoader     = errors.New("nil loader")
	ErrCopierType    = errors.New("copier does not match the value type")
)

// Controller is the control surface shared by every memoized function.
type Controller interface {
	// Name returns the name the function was registered under.
	Name() string

	// SetExpire changes the time to live. Zero means entries never expire.
	SetExpire(expire time.Duration)

	// SetMaxSize changes the entry limit. Zero or less means unbounded.
	SetMaxSize(maxSize int)

	// Enable turns caching on for this function.
	Enable()

	// Disable turns caching off for this function.
	Disable()

	// Clear removes all entries. Policy and statistics are kept.
	Clear()

	// Info returns a snapshot of policy, statistics and size.
	Info() Info
}

// Info is a snapshot of one function's cache.
type Info struct {
	Name        string        `json:"name"`
	Enabled     bool          `json:"enabled"`
	Expire      time.Duration `json:"expire"`
	MaxSize     int           `json:"maxsize"`
	Hits        uint64        `json:"hits"`
	Misses      uint64        `json:"misses"`
	ExpiredHits uint64        `json:"expired_hits"`
	Evictions   uint64        `json:"evictions"`
	CurrentSize int           `json:"current_size"`
}
