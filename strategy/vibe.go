package strategy

import (
	"math"

	"github.com/vibehut/huddle/types"
)

// vibeAwareMinMembers is the room size below which vibe clustering is not
// worth it and the balanced random fallback is used instead.
const vibeAwareMinMembers = 4

// VibeAware partitions a room by vibe-vector clustering.
//
// The two most vibe-distant participants become seeds; everyone else joins
// the seed their vibe is closer to, subject to a balance cap. Rooms with
// fewer than four participants, or without vibe data for at least four of
// them, fall back to BalancedRandom.
type VibeAware struct {
	fallback *BalancedRandom
}

var _ types.PartitionStrategy = (*VibeAware)(nil)

// NewVibeAware creates a new vibe-aware strategy.
//
// Returns:
//   - *VibeAware: Initialized strategy with a BalancedRandom fallback
func NewVibeAware() *VibeAware {
	return &VibeAware{fallback: NewBalancedRandom()}
}

// Partition divides the room's participants into two vibe-coherent groups.
//
// Parameters:
//   - room: The room being split
//   - members: Presence snapshots; participants without a usable vibe
//     vector are distributed to keep group sizes balanced
//
// Returns:
//   - keep: Participants keeping the original room, host included
//   - move: Participants moving to the new room
//   - err: Wraps types.ErrInvalidPartition when fewer than two participants
func (s *VibeAware) Partition(room types.Room, members []types.UserPresence) (keep, move []string, err error) {
	vibes := make(map[string]types.VibeVector, len(members))
	for _, m := range members {
		if m.Vibe.Valid() && room.HasParticipant(m.ID) {
			vibes[m.ID] = m.Vibe
		}
	}

	if len(room.Participants) < vibeAwareMinMembers || len(vibes) < vibeAwareMinMembers {
		return s.fallback.Partition(room, members)
	}

	seedA, seedB := farthestPair(room.Participants, vibes)

	groupA := []string{seedA}
	groupB := []string{seedB}
	limit := (len(room.Participants) + 1) / 2

	var unplaced []string
	for _, id := range room.Participants {
		if id == seedA || id == seedB {
			continue
		}
		vibe, ok := vibes[id]
		if !ok {
			unplaced = append(unplaced, id)
			continue
		}

		toA := vibeDistance(vibe, vibes[seedA]) <= vibeDistance(vibe, vibes[seedB])
		switch {
		case toA && len(groupA) < limit:
			groupA = append(groupA, id)
		case !toA && len(groupB) < limit:
			groupB = append(groupB, id)
		case len(groupA) < limit:
			groupA = append(groupA, id)
		default:
			groupB = append(groupB, id)
		}
	}

	// Participants without vibe data pad whichever side is smaller.
	for _, id := range unplaced {
		if len(groupA) <= len(groupB) {
			groupA = append(groupA, id)
		} else {
			groupB = append(groupB, id)
		}
	}

	// The group holding the host keeps the original room.
	keep, move = groupA, groupB
	for _, id := range groupB {
		if id == room.HostID {
			keep, move = groupB, groupA
			break
		}
	}

	return keep, move, nil
}

// farthestPair returns the two participant IDs with the largest vibe
// distance. Participant order breaks ties, keeping the result
// deterministic.
func farthestPair(ids []string, vibes map[string]types.VibeVector) (string, string) {
	var (
		bestA, bestB string
		bestDist     = -1.0
	)
	for i, a := range ids {
		va, ok := vibes[a]
		if !ok {
			continue
		}
		for _, b := range ids[i+1:] {
			vb, ok := vibes[b]
			if !ok {
				continue
			}
			if d := vibeDistance(va, vb); d > bestDist {
				bestDist = d
				bestA, bestB = a, b
			}
		}
	}

	return bestA, bestB
}

// vibeDistance returns the Euclidean distance between two vibe vectors.
func vibeDistance(a, b types.VibeVector) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}

	return math.Sqrt(sum)
}
