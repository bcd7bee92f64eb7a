// Package eventlog provides the bounded in-memory scaling audit log.
package eventlog

import (
	"sync"

	"github.com/vibehut/huddle/types"
)

// Log is an append-only ring buffer of scaling events.
//
// Once the capacity is reached the oldest events are overwritten. Appended
// timestamps are forced monotonically non-decreasing so readers can rely
// on event order.
type Log struct {
	mu   sync.Mutex
	buf  []types.ScalingEvent
	next int
	size int
}

// New creates an event log with the given capacity.
//
// Parameters:
//   - capacity: Maximum retained events; values < 1 fall back to 1
//
// Returns:
//   - *Log: Empty event log
func New(capacity int) *Log {
	if capacity < 1 {
		capacity = 1
	}

	return &Log{buf: make([]types.ScalingEvent, capacity)}
}

// Append records an event, evicting the oldest when full.
//
// If the event's timestamp precedes the most recently appended one, it is
// bumped up to match, preserving the monotonic-timestamp invariant.
func (l *Log) Append(ev types.ScalingEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.size > 0 {
		lastIdx := (l.next - 1 + len(l.buf)) % len(l.buf)
		if last := l.buf[lastIdx].Timestamp; ev.Timestamp.Before(last) {
			ev.Timestamp = last
		}
	}

	l.buf[l.next] = ev
	l.next = (l.next + 1) % len(l.buf)
	if l.size < len(l.buf) {
		l.size++
	}
}

// Snapshot returns the retained events, oldest first.
//
// Returns:
//   - []types.ScalingEvent: Copy of the buffered events
func (l *Log) Snapshot() []types.ScalingEvent {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]types.ScalingEvent, 0, l.size)
	start := (l.next - l.size + len(l.buf)) % len(l.buf)
	for i := 0; i < l.size; i++ {
		out = append(out, l.buf[(start+i)%len(l.buf)])
	}

	return out
}

// Len returns the number of retained events.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.size
}
