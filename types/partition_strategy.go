package types

// PartitionStrategy decides how an oversized room's participants are
// divided during a split.
//
// Strategies are pure: they never touch stores or timers, so a smarter
// clustering strategy can be swapped in without touching the controller.
//
// Contract:
//   - Both returned groups must be non-empty.
//   - keep ∪ move must equal the room's participant set, with no overlap.
//   - The room's host must be placed in keep so the original room retains
//     its host.
//   - Given identical inputs, the partition must be deterministic.
type PartitionStrategy interface {
	// Partition divides the room's participants into the group that keeps
	// the original room (keep) and the group that moves to the new room
	// (move).
	//
	// Parameters:
	//   - room: The room being split (read-only)
	//   - members: Presence snapshots for participants; may be missing
	//     entries for users whose presence has expired
	//
	// Returns:
	//   - keep: User IDs staying in the original room (includes the host)
	//   - move: User IDs moving to the new room
	//   - err: ErrInvalidPartition when no non-empty two-way split exists
	Partition(room Room, members []UserPresence) (keep, move []string, err error)
}
