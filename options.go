// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memo

import (
	"time"

	"github.com/apex/log"
)

type settings struct {
	maxSize  int
	expire   time.Duration
	disabled bool
	now      func() time.Time
	copier   any
}

func defaultSettings() settings {
	return settings{
		maxSize: DefaultMaxSize,
		expire:  DefaultExpire,
		now:     time.Now,
	}
}

// Option configures a function at wrap time.
type Option func(*settings)

// WithMaxSize sets the entry limit. Zero or less means unbounded.
func WithMaxSize(maxSize int) Option {
	return func(s *settings) { s.maxSize = maxSize }
}

// WithExpire sets the time to live. Zero means entries never expire.
func WithExpire(expire time.Duration) Option {
	return func(s *settings) { s.expire = expire }
}

// WithDisabled wraps the function with caching turned off locally.
func WithDisabled() Option {
	return func(s *settings) { s.disabled = true }
}

// WithClock replaces time.Now for write stamps and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCopier replaces the default reflective deep copy. The copier must
// return a value sharing no mutable state with its input, and V must match
// the wrapped function's value type or Wrap fails with ErrCopierType.
func WithCopier[V any](copier func(V) V) Option {
	return func(s *settings) {
		if copier != nil {
			s.copier = copier
		}
	}
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithEnabled sets the initial state of the global switch.
func WithEnabled(enabled bool) ManagerOption {
	return func(m *Manager) { m.enabled.Store(enabled) }
}

// WithLogger sets the logger used by the manager and its functions.
func WithLogger(logger log.Interface) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.log = logger
		}
	}
}
