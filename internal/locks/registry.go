// Package locks provides the per-room mutex registry.
//
// Every mutating room operation is serialized on its room's mutex. Merges
// hold both rooms' mutexes, always acquired in lexicographic room ID order
// so that two concurrent merges over overlapping pairs cannot deadlock.
package locks

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
)

// Registry hands out one mutex per room ID on demand.
type Registry struct {
	locks *xsync.Map[string, *sync.Mutex]
}

// New creates an empty lock registry.
//
// Returns:
//   - *Registry: Initialized registry
func New() *Registry {
	return &Registry{locks: xsync.NewMap[string, *sync.Mutex]()}
}

// Lock acquires the mutex for id, creating it on first use.
//
// Returns:
//   - func(): Releases the mutex
func (r *Registry) Lock(id string) func() {
	mu, _ := r.locks.LoadOrStore(id, &sync.Mutex{})
	mu.Lock()

	return mu.Unlock
}

// LockPair acquires both mutexes in lexicographic ID order.
//
// Locking in a globally consistent order is what makes concurrent merges
// over overlapping room pairs deadlock-free.
//
// Returns:
//   - func(): Releases both mutexes
func (r *Registry) LockPair(a, b string) func() {
	if a == b {
		return r.Lock(a)
	}
	if a > b {
		a, b = b, a
	}

	unlockA := r.Lock(a)
	unlockB := r.Lock(b)

	return func() {
		unlockB()
		unlockA()
	}
}

// Forget drops the mutex for id.
//
// Call only after the room is closed and no goroutine can still request
// its lock.
func (r *Registry) Forget(id string) {
	r.locks.Delete(id)
}
