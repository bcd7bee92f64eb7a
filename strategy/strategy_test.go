package strategy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vibehut/huddle/types"
)

func room(n int) types.Room {
	r := types.Room{ID: "room-1", HostID: "u0", Revision: 3}
	for i := 0; i < n; i++ {
		r.Participants = append(r.Participants, fmt.Sprintf("u%d", i))
	}

	return r
}

// requireValidPartition checks the invariants every strategy must uphold:
// the two groups are a disjoint cover of the participants, sizes differ by
// at most one, and the host stays in the keep group.
func requireValidPartition(t *testing.T, r types.Room, keep, move []string) {
	t.Helper()

	require.NotEmpty(t, keep)
	require.NotEmpty(t, move)
	require.Len(t, append(append([]string(nil), keep...), move...), len(r.Participants))
	require.ElementsMatch(t, r.Participants, append(append([]string(nil), keep...), move...))
	require.LessOrEqual(t, abs(len(keep)-len(move)), 1)
	require.Contains(t, keep, r.HostID)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}

func TestBalancedRandom(t *testing.T) {
	s := NewBalancedRandom()

	t.Run("too few participants", func(t *testing.T) {
		for _, n := range []int{0, 1} {
			_, _, err := s.Partition(room(n), nil)
			require.ErrorIs(t, err, types.ErrInvalidPartition)
		}
	})

	t.Run("balanced groups with host kept", func(t *testing.T) {
		for n := 2; n <= 12; n++ {
			r := room(n)
			keep, move, err := s.Partition(r, nil)
			require.NoError(t, err)
			requireValidPartition(t, r, keep, move)
		}
	})

	t.Run("deterministic for identical room state", func(t *testing.T) {
		r := room(8)

		keep1, move1, err := s.Partition(r, nil)
		require.NoError(t, err)
		keep2, move2, err := s.Partition(r, nil)
		require.NoError(t, err)

		require.Equal(t, keep1, keep2)
		require.Equal(t, move1, move2)
	})

	t.Run("valid across revisions", func(t *testing.T) {
		// Each revision reseeds the shuffle; every reseeded partition must
		// still uphold the group invariants.
		for rev := uint64(0); rev < 10; rev++ {
			r := room(8)
			r.Revision = rev

			keep, move, err := s.Partition(r, nil)
			require.NoError(t, err)
			requireValidPartition(t, r, keep, move)
		}
	})
}

func TestVibeAware(t *testing.T) {
	s := NewVibeAware()

	vibe := func(v float64) types.VibeVector {
		vec := make(types.VibeVector, types.VibeDimensions)
		for i := range vec {
			vec[i] = v
		}

		return vec
	}

	t.Run("too few participants", func(t *testing.T) {
		_, _, err := s.Partition(room(1), nil)
		require.ErrorIs(t, err, types.ErrInvalidPartition)
	})

	t.Run("separates two vibe clusters", func(t *testing.T) {
		r := room(8)
		var members []types.UserPresence
		for i, id := range r.Participants {
			v := vibe(0.1)
			if i >= 4 {
				v = vibe(0.9)
			}
			members = append(members, types.UserPresence{ID: id, Vibe: v})
		}

		keep, move, err := s.Partition(r, members)
		require.NoError(t, err)
		requireValidPartition(t, r, keep, move)

		// The host's low-vibe cluster keeps the room; the high-vibe cluster
		// moves out together.
		require.ElementsMatch(t, []string{"u0", "u1", "u2", "u3"}, keep)
		require.ElementsMatch(t, []string{"u4", "u5", "u6", "u7"}, move)
	})

	t.Run("falls back without vibe data", func(t *testing.T) {
		r := room(6)

		keep, move, err := s.Partition(r, nil)
		require.NoError(t, err)
		requireValidPartition(t, r, keep, move)
	})

	t.Run("falls back below four members", func(t *testing.T) {
		r := room(3)
		var members []types.UserPresence
		for _, id := range r.Participants {
			members = append(members, types.UserPresence{ID: id, Vibe: vibe(0.5)})
		}

		keep, move, err := s.Partition(r, members)
		require.NoError(t, err)
		requireValidPartition(t, r, keep, move)
	})

	t.Run("members without vibes pad the smaller group", func(t *testing.T) {
		r := room(7)
		var members []types.UserPresence
		for i, id := range r.Participants {
			if i >= 5 {
				// Two participants with no profile data.
				members = append(members, types.UserPresence{ID: id})
				continue
			}
			v := vibe(0.1)
			if i >= 3 {
				v = vibe(0.9)
			}
			members = append(members, types.UserPresence{ID: id, Vibe: v})
		}

		keep, move, err := s.Partition(r, members)
		require.NoError(t, err)
		requireValidPartition(t, r, keep, move)
	})

	t.Run("identical vibes still balance", func(t *testing.T) {
		r := room(8)
		var members []types.UserPresence
		for _, id := range r.Participants {
			members = append(members, types.UserPresence{ID: id, Vibe: vibe(0.5)})
		}

		keep, move, err := s.Partition(r, members)
		require.NoError(t, err)
		requireValidPartition(t, r, keep, move)
		require.Len(t, keep, 4)
		require.Len(t, move, 4)
	})
}
