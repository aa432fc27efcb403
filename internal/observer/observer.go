// Package observer provides a listener registry that is safe to modify from
// inside a notification.
package observer

import "sync"

// Registry holds listeners for values of type T.
type Registry[T any] struct {
	entries []entry[T]
	nextID  uint64
	mu      sync.Mutex
}

type entry[T any] struct {
	fn func(T)
	id uint64
}

// Subscribe adds fn and returns a function that removes it again. Calling
// the returned function more than once has no effect.
func (r *Registry[T]) Subscribe(fn func(T)) (cancel func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.entries = append(r.entries, entry[T]{fn: fn, id: id})

	return func() { r.remove(id) }
}

func (r *Registry[T]) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return
		}
	}
}

// Notify calls every listener registered at the time of the call, in
// subscription order. Listeners added or removed during the broadcast take
// effect from the next one.
func (r *Registry[T]) Notify(v T) {
	r.mu.Lock()
	snapshot := make([]entry[T], len(r.entries))
	copy(snapshot, r.entries)
	r.mu.Unlock()

	for _, e := range snapshot {
		e.fn(v)
	}
}

// Len returns the number of registered listeners.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
