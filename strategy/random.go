package strategy

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/vibehut/huddle/types"
	"github.com/zeebo/xxh3"
)

// BalancedRandom partitions a room by shuffling its participants and
// splitting the shuffle in half.
type BalancedRandom struct{}

var _ types.PartitionStrategy = (*BalancedRandom)(nil)

// NewBalancedRandom creates a new balanced random strategy.
//
// The shuffle is seeded from the room ID and revision, so repeated calls
// against the same room state produce the same partition. Group sizes
// differ by at most one and the host always stays in the retained group.
//
// Returns:
//   - *BalancedRandom: Initialized strategy
func NewBalancedRandom() *BalancedRandom {
	return &BalancedRandom{}
}

// Partition divides the room's participants into two balanced groups.
//
// Parameters:
//   - room: The room being split
//   - members: Presence snapshots (unused by this strategy)
//
// Returns:
//   - keep: Participants keeping the original room, host included
//   - move: Participants moving to the new room
//   - err: Wraps types.ErrInvalidPartition when fewer than two participants
func (s *BalancedRandom) Partition(room types.Room, _ []types.UserPresence) (keep, move []string, err error) {
	ids := append([]string(nil), room.Participants...)
	if len(ids) < 2 {
		return nil, nil, fmt.Errorf("%w: room %s has %d participants", types.ErrInvalidPartition, room.ID, len(ids))
	}

	rng := seededRNG(room)
	rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})

	half := (len(ids) + 1) / 2
	keep = ids[:half]
	move = ids[half:]

	ensureHostKept(room.HostID, keep, move)

	return keep, move, nil
}

// seededRNG builds a deterministic RNG from the room's identity and
// revision, so the same oversized state always partitions the same way.
func seededRNG(room types.Room) *rand.Rand {
	h := xxh3.HashString128(room.ID + "#" + strconv.FormatUint(room.Revision, 10))

	return rand.New(rand.NewPCG(h.Hi, h.Lo))
}

// ensureHostKept swaps the host into the keep group if the shuffle placed
// it in the move group.
func ensureHostKept(hostID string, keep, move []string) {
	for i, id := range move {
		if id != hostID {
			continue
		}
		move[i], keep[0] = keep[0], move[i]

		return
	}
}
