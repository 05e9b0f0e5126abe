// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"sync"
)

// Memo holds a single lazily computed value for the lifetime of the process,
// or until Invalidate is called.
//
// Callers are serialized while a value is being computed, so compute runs at
// most once per lifetime. Errors are returned to the caller but not cached.
type Memo[T any] struct {
	mu    sync.Mutex
	value T
	valid bool
}

// NewMemo creates an empty Memo.
func NewMemo[T any]() *Memo[T] {
	return &Memo[T]{}
}

// GetOrCompute returns the cached value, computing and storing it first if
// the cache is empty.
func (m *Memo[T]) GetOrCompute(ctx context.Context, compute func(context.Context) (T, error)) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.valid {
		return m.value, nil
	}

	v, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	m.value = v
	m.valid = true
	return v, nil
}

// Invalidate drops the cached value.
func (m *Memo[T]) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T
	m.value = zero
	m.valid = false
}

// cached reports whether a value is currently held.
func (m *Memo[T]) cached() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.valid
}
