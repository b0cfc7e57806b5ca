// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

// Package events implements small typed publish/subscribe feeds used to fan
// out state changes (network state, subscription status, badge count,
// session snapshots) to an arbitrary number of listeners.
//
// Callbacks run synchronously on the publisher's goroutine, in subscription
// order, so a single-goroutine publisher gives listeners strictly ordered
// delivery. Callbacks must not block.
package events

import "sync"

// Feed is a plain publish/subscribe fan-out with no retained value.
type Feed[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(T)
	order  []int
}

// NewFeed constructs an empty Feed.
func NewFeed[T any]() *Feed[T] {
	return &Feed[T]{subs: make(map[int]func(T))}
}

// Subscribe registers fn and returns its cancel function. Cancel is
// idempotent; calling it twice is safe.
func (f *Feed[T]) Subscribe(fn func(T)) (cancel func()) {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = fn
	f.order = append(f.order, id)
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

// Publish delivers v to every current subscriber.
func (f *Feed[T]) Publish(v T) {
	for _, fn := range f.snapshot() {
		fn(v)
	}
}

// Len returns the current subscriber count.
func (f *Feed[T]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// snapshot copies the live callbacks in subscription order so Publish can
// run them without holding the lock (a callback may subscribe or cancel).
func (f *Feed[T]) snapshot() []func(T) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fns := make([]func(T), 0, len(f.subs))
	for _, id := range f.order {
		if fn, ok := f.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	return fns
}

// StateFeed is a Feed that additionally retains the latest value. A new
// subscriber immediately receives the current value before Subscribe
// returns, then one callback per subsequent publication.
type StateFeed[T comparable] struct {
	mu     sync.Mutex
	cur    T
	nextID int
	subs   map[int]func(T)
	order  []int
}

// NewStateFeed constructs a StateFeed holding initial.
func NewStateFeed[T comparable](initial T) *StateFeed[T] {
	return &StateFeed[T]{cur: initial, subs: make(map[int]func(T))}
}

// Current returns the retained value.
func (f *StateFeed[T]) Current() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cur
}

// Subscribe registers fn, synchronously delivers the current value to it,
// and returns the cancel function.
func (f *StateFeed[T]) Subscribe(fn func(T)) (cancel func()) {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = fn
	f.order = append(f.order, id)
	cur := f.cur
	f.mu.Unlock()

	fn(cur)

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

// Set stores v and notifies subscribers only when the value actually
// changed. Duplicate sets are coalesced, which is what deduplicates noisy
// same-state platform events for listeners.
func (f *StateFeed[T]) Set(v T) {
	f.mu.Lock()
	if f.cur == v {
		f.mu.Unlock()
		return
	}
	f.cur = v
	fns := f.lockedSnapshot()
	f.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Publish stores v and notifies subscribers unconditionally, duplicate or
// not. Used where every operation must be observable even when the
// resulting state is unchanged.
func (f *StateFeed[T]) Publish(v T) {
	f.mu.Lock()
	f.cur = v
	fns := f.lockedSnapshot()
	f.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Len returns the current subscriber count.
func (f *StateFeed[T]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *StateFeed[T]) lockedSnapshot() []func(T) {
	fns := make([]func(T), 0, len(f.subs))
	for _, id := range f.order {
		if fn, ok := f.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	return fns
}
