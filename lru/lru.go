// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package lru provides the write-ordered entry store behind memoized functions.
package lru

import (
	"container/list"
	"time"
)

// Entry is a stored value and the time it was last written.
type Entry[V any] struct {
	Key     string
	Value   V
	Written time.Time
}

// Store maps keys to entries and evicts by least recent write.
//
// Reads never change recency. Overwriting a key refreshes its write time but
// keeps its original position in iteration order, which only matters for
// breaking ties between equal write times.
//
// Store is not safe for concurrent use.
type Store[V any] struct {
	elements map[string]*list.Element
	order    *list.List
}

// NewStore creates an empty store.
func NewStore[V any]() *Store[V] {
	return &Store[V]{
		elements: make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Put inserts or overwrites the entry for key.
func (s *Store[V]) Put(key string, value V, at time.Time) {
	if elem, ok := s.elements[key]; ok {
		e := elem.Value.(*Entry[V])
		e.Value = value
		e.Written = at
		return
	}

	e := &Entry[V]{Key: key, Value: value, Written: at}
	s.elements[key] = s.order.PushBack(e)
}

// Get returns the entry for key, if it exists.
func (s *Store[V]) Get(key string) (Entry[V], bool) {
	if elem, ok := s.elements[key]; ok {
		return *elem.Value.(*Entry[V]), true
	}
	return Entry[V]{}, false
}

// EvictIfOver removes the least recently written entry when the store holds
// more than maxSize entries. At most one entry is removed per call. A
// maxSize of zero or less never evicts.
func (s *Store[V]) EvictIfOver(maxSize int) (Entry[V], bool) {
	if maxSize <= 0 || s.order.Len() <= maxSize {
		return Entry[V]{}, false
	}

	oldest := s.order.Front()
	for elem := oldest.Next(); elem != nil; elem = elem.Next() {
		if elem.Value.(*Entry[V]).Written.Before(oldest.Value.(*Entry[V]).Written) {
			oldest = elem
		}
	}

	e := oldest.Value.(*Entry[V])
	s.removeElement(oldest)
	return *e, true
}

// Flush removes all entries.
func (s *Store[V]) Flush() {
	s.elements = make(map[string]*list.Element)
	s.order.Init()
}

// Len returns the number of entries.
func (s *Store[V]) Len() int {
	return s.order.Len()
}

// Keys returns the stored keys in insertion order.
func (s *Store[V]) Keys() []string {
	keys := make([]string, 0, s.order.Len())
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		keys = append(keys, elem.Value.(*Entry[V]).Key)
	}
	return keys
}

func (s *Store[V]) removeElement(elem *list.Element) {
	e := elem.Value.(*Entry[V])
	delete(s.elements, e.Key)
	s.order.Remove(elem)
}
