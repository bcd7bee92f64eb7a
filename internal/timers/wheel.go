// Package timers provides the per-room debounce timer wheel.
package timers

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
)

// Wheel schedules at most one pending callback per key.
//
// Scheduling a key that already has a pending timer replaces (cancels) the
// previous one — this is the debounce discipline: any new join/leave on a
// room cancels and reschedules its pending transition. A replaced or
// cancelled timer never invokes its callback, so a fire can never observe
// membership older than the schedule that armed it. Callbacks still
// recompute state at fire time; the wheel only guarantees the cancel
// semantics.
//
// All methods are safe for concurrent use.
type Wheel struct {
	entries *xsync.Map[string, *entry]
	gen     atomic.Uint64
	wg      sync.WaitGroup
	stopped atomic.Bool
}

type entry struct {
	gen   uint64
	kind  string
	timer *time.Timer
}

// New creates an empty timer wheel.
//
// Returns:
//   - *Wheel: Initialized wheel
func New() *Wheel {
	return &Wheel{entries: xsync.NewMap[string, *entry]()}
}

// Schedule arms (or re-arms) the timer for key.
//
// Any previously pending timer for the same key is cancelled first. The
// callback runs on its own goroutine and receives the kind it was armed
// with.
//
// Parameters:
//   - key: Timer identity (room ID)
//   - kind: Opaque label handed back to the callback ("split", "merge")
//   - delay: Debounce delay
//   - fn: Callback invoked if the timer fires without being replaced
func (w *Wheel) Schedule(key, kind string, delay time.Duration, fn func(kind string)) {
	if w.stopped.Load() {
		return
	}

	e := &entry{gen: w.gen.Add(1), kind: kind}
	e.timer = time.AfterFunc(delay, func() {
		w.fire(key, e, fn)
	})

	if old, loaded := w.entries.LoadAndStore(key, e); loaded {
		old.timer.Stop()
	}
}

// fire runs the callback if the entry is still the current one for key.
//
// Ownership, the stopped check, and the WaitGroup increment all happen
// inside the Compute critical section. Stop flips the stopped flag before
// ranging over the entries, so a fire either registers with the WaitGroup
// before Stop's final Wait or observes the flag and bails; a callback can
// never start after Stop has returned.
func (w *Wheel) fire(key string, e *entry, fn func(kind string)) {
	owned := false
	w.entries.Compute(key, func(old *entry, loaded bool) (*entry, xsync.ComputeOp) {
		if loaded && old.gen == e.gen && !w.stopped.Load() {
			owned = true
			w.wg.Add(1)

			return nil, xsync.DeleteOp
		}

		return old, xsync.CancelOp
	})
	if !owned {
		// Replaced by a newer schedule, cancelled, or the wheel stopped.
		return
	}

	defer w.wg.Done()
	fn(e.kind)
}

// Cancel stops any pending timer for key.
//
// Returns:
//   - bool: true if a pending timer was cancelled
func (w *Wheel) Cancel(key string) bool {
	e, loaded := w.entries.LoadAndDelete(key)
	if loaded {
		e.timer.Stop()
	}

	return loaded
}

// Pending returns the kind of the pending timer for key, if any.
//
// Returns:
//   - string: The armed kind ("" when none)
//   - bool: true if a timer is pending
func (w *Wheel) Pending(key string) (string, bool) {
	e, ok := w.entries.Load(key)
	if !ok {
		return "", false
	}

	return e.kind, true
}

// Stop cancels all pending timers and waits for in-flight callbacks.
//
// The wheel accepts no further schedules after Stop.
func (w *Wheel) Stop() {
	w.stopped.Store(true)
	w.entries.Range(func(key string, e *entry) bool {
		e.timer.Stop()
		w.entries.Delete(key)

		return true
	})
	w.wg.Wait()
}
