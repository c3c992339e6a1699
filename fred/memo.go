package fred

import (
	"context"
	"sync"
	"sync/atomic"
)

// memo holds a value computed at most once. A failed computation stores
// nothing, so the next caller starts over. The zero value is ready to use.
type memo[T any] struct {
	init sync.Once
	sem  chan struct{}
	done atomic.Bool
	val  T
}

// slot returns the one-slot semaphore guarding compute
func (m *memo[T]) slot() chan struct{} {
	m.init.Do(func() {
		m.sem = make(chan struct{}, 1)
	})
	return m.sem
}

// get returns the stored value, running compute under the slot if none is stored.
// Callers that arrive while compute runs wait for it, or give up when ctx ends.
func (m *memo[T]) get(ctx context.Context, compute func(context.Context) (T, error)) (T, error) {
	if m.done.Load() {
		return m.val, nil
	}

	sem := m.slot()

	var zero T
	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	defer func() { <-sem }()

	// Another caller may have filled it while we waited
	if m.done.Load() {
		return m.val, nil
	}

	v, err := compute(ctx)
	if err != nil {
		return zero, err
	}

	m.val = v
	m.done.Store(true)
	return v, nil
}

// loaded reports whether a value is stored
func (m *memo[T]) loaded() bool {
	return m.done.Load()
}
