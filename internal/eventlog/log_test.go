package eventlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vibehut/huddle/types"
)

func TestLog(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	ev := func(reason string, ts time.Time) types.ScalingEvent {
		return types.ScalingEvent{Type: types.EventCreate, Reason: reason, Timestamp: ts}
	}

	t.Run("append and snapshot in order", func(t *testing.T) {
		l := New(8)
		require.Equal(t, 0, l.Len())

		l.Append(ev("a", base))
		l.Append(ev("b", base.Add(time.Second)))
		l.Append(ev("c", base.Add(2*time.Second)))

		snap := l.Snapshot()
		require.Len(t, snap, 3)
		require.Equal(t, "a", snap[0].Reason)
		require.Equal(t, "c", snap[2].Reason)
		require.Equal(t, 3, l.Len())
	})

	t.Run("evicts oldest when full", func(t *testing.T) {
		l := New(3)
		for i, reason := range []string{"a", "b", "c", "d", "e"} {
			l.Append(ev(reason, base.Add(time.Duration(i)*time.Second)))
		}

		snap := l.Snapshot()
		require.Len(t, snap, 3)
		require.Equal(t, "c", snap[0].Reason)
		require.Equal(t, "d", snap[1].Reason)
		require.Equal(t, "e", snap[2].Reason)
	})

	t.Run("timestamps forced monotonic", func(t *testing.T) {
		l := New(8)
		l.Append(ev("late", base.Add(time.Minute)))
		l.Append(ev("early", base))

		snap := l.Snapshot()
		require.Equal(t, snap[0].Timestamp, snap[1].Timestamp)
		require.False(t, snap[1].Timestamp.Before(snap[0].Timestamp))
	})

	t.Run("capacity floor of one", func(t *testing.T) {
		l := New(0)
		l.Append(ev("a", base))
		l.Append(ev("b", base.Add(time.Second)))

		snap := l.Snapshot()
		require.Len(t, snap, 1)
		require.Equal(t, "b", snap[0].Reason)
	})

	t.Run("snapshot is a copy", func(t *testing.T) {
		l := New(4)
		l.Append(ev("a", base))

		snap := l.Snapshot()
		snap[0].Reason = "mutated"
		require.Equal(t, "a", l.Snapshot()[0].Reason)
	})
}
