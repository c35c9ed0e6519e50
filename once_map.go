package qrwlock

import (
	"context"
	"sync"
)

// OnceMap is a map of keys to once-initialized values: concurrent
// callers asking for the same key that isn't present yet race to run
// its initializer exactly once, while callers asking for different
// keys never block each other. The map's own mutex is only ever held
// long enough to look up or insert a *AsyncOnceCell pointer, never
// across a key's init function, so one slow initializer never stalls
// unrelated keys. Grounded on the original's async_hash_map_once.rs /
// hash_map_once.rs.
type OnceMap[K comparable, V any] struct {
	name string
	mu   sync.Mutex
	m    map[K]*AsyncOnceCell[V]
	sink Sink
}

// NewOnceMap creates an empty, named once-map.
func NewOnceMap[K comparable, V any](name string) *OnceMap[K, V] {
	return &OnceMap[K, V]{name: name, m: make(map[K]*AsyncOnceCell[V]), sink: DefaultSink}
}

func (m *OnceMap[K, V]) cellFor(key K) *AsyncOnceCell[V] {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.m[key]
	if !ok {
		c = NewAsyncOnceCell[V](m.name)
		m.m[key] = c
	}
	return c
}

// Get returns key's value if it has already been initialized.
func (m *OnceMap[K, V]) Get(key K) (V, bool) {
	m.mu.Lock()
	c, ok := m.m[key]
	m.mu.Unlock()
	if !ok {
		var zero V
		return zero, false
	}
	return c.Get()
}

// GetOrInit returns key's value, running f to produce one if it isn't
// already present. Like AsyncOnceCell.GetOrTryInit, a failed f does not
// consume the opportunity.
func (m *OnceMap[K, V]) GetOrInit(ctx context.Context, key K, f func(context.Context) (V, error)) (V, error) {
	return m.cellFor(key).GetOrTryInit(ctx, f)
}

// Insert sets key's value outright, replacing any value already there.
// It takes the key's init lock like an initializer does, so an
// initializer still waiting for that lock finds the value present and
// does not run. Returns the previous value, if any.
func (m *OnceMap[K, V]) Insert(ctx context.Context, key K, val V) (V, bool, error) {
	return m.cellFor(key).Swap(ctx, val)
}

// Remove drops key entirely, returning the value it held if any.
func (m *OnceMap[K, V]) Remove(ctx context.Context, key K) (V, bool, error) {
	m.mu.Lock()
	c, ok := m.m[key]
	delete(m.m, key)
	m.mu.Unlock()
	if !ok {
		var zero V
		return zero, false, nil
	}
	return c.Take(ctx)
}

// Clear drops every key.
func (m *OnceMap[K, V]) Clear() {
	m.mu.Lock()
	m.m = make(map[K]*AsyncOnceCell[V])
	m.mu.Unlock()
}

// Drain removes and returns every key currently holding an initialized
// value. Keys with a pending (not-yet-initialized) cell are left in
// place.
func (m *OnceMap[K, V]) Drain() map[K]V {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[K]V)
	for k, c := range m.m {
		if v, ok := c.Get(); ok {
			out[k] = v
			delete(m.m, k)
		}
	}
	return out
}

// Len returns the number of keys currently tracked, initialized or not.
func (m *OnceMap[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.m)
}
