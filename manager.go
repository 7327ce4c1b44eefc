// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memo

import (
	"sync"
	"sync/atomic"

	"github.com/apex/log"
)

// Manager owns the registry of memoized functions and the global switch.
//
// Caching is active for a call only when both the manager and the function
// are enabled. A new Manager starts disabled unless WithEnabled(true) is given.
type Manager struct {
	enabled atomic.Bool
	log     log.Interface

	mu    sync.RWMutex
	funcs []Controller
	names map[string]struct{}
}

// NewManager creates an empty manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		log:   log.Log,
		names: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Enable turns caching on for every registered function. Function-local
// switches, entries and statistics are untouched.
func (m *Manager) Enable() {
	m.enabled.Store(true)
	m.log.Info("cache enabled")
}

// Disable makes every registered function call straight through.
func (m *Manager) Disable() {
	m.enabled.Store(false)
	m.log.Info("cache disabled")
}

// Enabled reports the state of the global switch.
func (m *Manager) Enabled() bool {
	return m.enabled.Load()
}

// ClearAll empties the store of every registered function.
func (m *Manager) ClearAll() {
	funcs := m.Funcs()
	for _, f := range funcs {
		f.Clear()
	}
	m.log.WithField("funcs", len(funcs)).Info("cleared all caches")
}

// Logger returns the logger the manager and its functions write to.
func (m *Manager) Logger() log.Interface {
	return m.log
}

// Funcs returns the registered functions in registration order.
func (m *Manager) Funcs() []Controller {
	m.mu.RLock()
	defer m.mu.RUnlock()

	funcs := make([]Controller, len(m.funcs))
	copy(funcs, m.funcs)
	return funcs
}

// Lookup returns the function registered under name.
func (m *Manager) Lookup(name string) (Controller, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, f := range m.funcs {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}

// Infos returns a snapshot of every registered function.
func (m *Manager) Infos() []Info {
	funcs := m.Funcs()
	infos := make([]Info, 0, len(funcs))
	for _, f := range funcs {
		infos = append(infos, f.Info())
	}
	return infos
}

func (m *Manager) register(name string, f Controller) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.names[name]; ok {
		return ErrDuplicateName
	}
	m.names[name] = struct{}{}
	m.funcs = append(m.funcs, f)
	return nil
}
