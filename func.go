// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memo

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apex/log"
	"github.com/huandu/go-clone"
	"golang.org/x/sync/singleflight"

	"github.com/luxfi/memo/key"
	"github.com/luxfi/memo/lru"
)

var _ Controller = (*Func[struct{}])(nil)

// Loader computes the value for a call on a miss.
type Loader[V any] func(ctx context.Context, args Args) (V, error)

type stats struct {
	hits        uint64
	misses      uint64
	expiredHits uint64
	evictions   uint64
}

// Func is a memoized Loader.
//
// Stored values are deep copies of what the loader returned, and every call
// receives its own copy, so callers may mutate results freely.
type Func[V any] struct {
	name    string
	fn      Loader[V]
	manager *Manager
	log     log.Interface
	now     func() time.Time
	copier  func(V) V
	enabled atomic.Bool
	flight  singleflight.Group

	mu         sync.Mutex
	store      *lru.Store[V]
	expire     time.Duration
	maxSize    int
	stats      stats
	generation uint64
}

// result boxes a loaded value so singleflight can share nil interfaces.
type result[V any] struct {
	value V
}

// Wrap memoizes fn and registers it with m under name.
func Wrap[V any](m *Manager, name string, fn Loader[V], opts ...Option) (*Func[V], error) {
	if m == nil {
		return nil, ErrNilManager
	}
	if fn == nil {
		return nil, ErrNilLoader
	}

	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	copier := deepCopy[V]
	if s.copier != nil {
		c, ok := s.copier.(func(V) V)
		if !ok {
			var zero V
			return nil, fmt.Errorf("%w: %T cannot copy %T", ErrCopierType, s.copier, zero)
		}
		copier = c
	}

	f := &Func[V]{
		name:    name,
		fn:      fn,
		manager: m,
		log:     m.log.WithField("func", name),
		now:     s.now,
		copier:  copier,
		store:   lru.NewStore[V](),
		expire:  s.expire,
		maxSize: s.maxSize,
	}
	f.enabled.Store(!s.disabled)

	if err := m.register(name, f); err != nil {
		return nil, fmt.Errorf("%w: %q", err, name)
	}
	return f, nil
}

// MustWrap is like Wrap but panics on error.
func MustWrap[V any](m *Manager, name string, fn Loader[V], opts ...Option) *Func[V] {
	f, err := Wrap(m, name, fn, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// Call returns the value for args, from the cache when possible.
//
// Loader errors are returned as is and nothing is stored for the call.
// Arguments that cannot be encoded into a key fail with key.ErrUnserializable.
func (f *Func[V]) Call(ctx context.Context, args Args) (V, error) {
	if !f.active() {
		return f.fn(ctx, args)
	}

	k, err := key.Derive(args.Positional, args.Keyword)
	if err != nil {
		var zero V
		return zero, err
	}

	f.mu.Lock()
	e, ok := f.store.Get(k)
	switch {
	case ok && f.expired(e.Written):
		f.stats.expiredHits++
		f.mu.Unlock()
		f.log.WithField("key_hash", key.Digest(k)).Debug("expired hit")
		return f.load(ctx, k, args)
	case ok:
		f.stats.hits++
		v := f.copy(e.Value)
		f.mu.Unlock()
		return v, nil
	default:
		f.stats.misses++
		f.mu.Unlock()
		return f.load(ctx, k, args)
	}
}

// Get is shorthand for Call with positional arguments.
func (f *Func[V]) Get(ctx context.Context, positional ...any) (V, error) {
	return f.Call(ctx, Positional(positional...))
}

func (f *Func[V]) active() bool {
	return f.manager.Enabled() && f.enabled.Load()
}

// expired must be called with mu held.
func (f *Func[V]) expired(written time.Time) bool {
	return f.expire > 0 && f.now().After(written.Add(f.expire))
}

// load runs the loader once per key for concurrent callers, stores a copy
// and hands each caller another one.
//
// The shared loader ignores cancellation of the caller that started it. Each
// caller stops waiting when its own ctx is done.
func (f *Func[V]) load(ctx context.Context, k string, args Args) (V, error) {
	f.mu.Lock()
	gen := f.generation
	f.mu.Unlock()

	// Loads started before a Clear must not be joined by calls made after it.
	flightKey := strconv.FormatUint(gen, 10) + "|" + k
	loadCtx := context.WithoutCancel(ctx)
	ch := f.flight.DoChan(flightKey, func() (any, error) {
		v, err := f.fn(loadCtx, args)
		if err != nil {
			return nil, err
		}
		f.insert(k, v, gen)
		return &result[V]{value: v}, nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return zero, r.Err
		}
		return f.copy(r.Val.(*result[V]).value), nil
	}
}

func (f *Func[V]) insert(k string, v V, gen uint64) {
	stored := f.copy(v)

	f.mu.Lock()
	defer f.mu.Unlock()

	if gen != f.generation {
		f.log.WithField("key_hash", key.Digest(k)).Debug("cleared during load, not storing")
		return
	}

	f.store.Put(k, stored, f.now())
	if evicted, ok := f.store.EvictIfOver(f.maxSize); ok {
		f.stats.evictions++
		f.log.WithFields(log.Fields{
			"key_hash": key.Digest(evicted.Key),
			"size":     f.store.Len(),
		}).Debug("evicted oldest entry")
	}
}

func (f *Func[V]) copy(v V) V {
	return f.copier(v)
}

func deepCopy[V any](v V) V {
	c, ok := clone.Clone(v).(V)
	if !ok {
		// Only a nil interface value clones to nil.
		var zero V
		return zero
	}
	return c
}

// Name returns the registered name.
func (f *Func[V]) Name() string {
	return f.name
}

// SetExpire changes the time to live, effective on the next call.
func (f *Func[V]) SetExpire(expire time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expire = expire
}

// SetMaxSize changes the entry limit, effective on the next insert.
func (f *Func[V]) SetMaxSize(maxSize int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.maxSize = maxSize
}

func (f *Func[V]) Enable() {
	f.enabled.Store(true)
}

func (f *Func[V]) Disable() {
	f.enabled.Store(false)
}

// Clear removes every entry. Loads in flight when Clear is called do not
// store their result.
func (f *Func[V]) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()

	keys := f.store.Keys()
	hashes := make([]uint64, len(keys))
	for i, k := range keys {
		hashes[i] = key.Digest(k)
	}

	f.store.Flush()
	f.generation++
	f.log.WithFields(log.Fields{
		"entries":    len(keys),
		"key_hashes": hashes,
	}).Debug("cleared")
}

func (f *Func[V]) Info() Info {
	f.mu.Lock()
	defer f.mu.Unlock()

	return Info{
		Name:        f.name,
		Enabled:     f.enabled.Load(),
		Expire:      f.expire,
		MaxSize:     f.maxSize,
		Hits:        f.stats.hits,
		Misses:      f.stats.misses,
		ExpiredHits: f.stats.expiredHits,
		Evictions:   f.stats.evictions,
		CurrentSize: f.store.Len(),
	}
}
