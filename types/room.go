package types

import (
	"slices"
	"time"
)

// RoomState represents the lifecycle state of a room.
//
// States follow a defined progression:
//
//	RoomActive → RoomPendingSplit → RoomActive (split executed or abandoned)
//	RoomActive → RoomPendingMerge → RoomActive (merge executed or cancelled)
//	any state → RoomClosed (emptied or absorbed by a merge)
//
// RoomClosed is terminal.
type RoomState int

const (
	// RoomActive indicates normal operation within size bounds.
	RoomActive RoomState = iota

	// RoomPendingSplit indicates the room is oversized and a debounced
	// split timer is armed.
	RoomPendingSplit

	// RoomPendingMerge indicates the room is undersized and a debounced
	// merge timer is armed.
	RoomPendingMerge

	// RoomClosed indicates the room has emptied or was absorbed by a merge.
	RoomClosed
)

// String returns the string representation of the state.
func (s RoomState) String() string {
	switch s {
	case RoomActive:
		return "Active"
	case RoomPendingSplit:
		return "PendingSplit"
	case RoomPendingMerge:
		return "PendingMerge"
	case RoomClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Room is an ephemeral, bounded-size conversation group.
//
// A room is created on first user placement, mutated by join/leave/split/
// merge operations, and logically closed (never physically deleted) when it
// empties or is absorbed by a merge.
type Room struct {
	// ID uniquely identifies the room.
	ID string `json:"id"`

	// HostID is the current host. Always a member of Participants while the
	// room is active and non-empty.
	HostID string `json:"hostId"`

	// Participants is the unique set of member user IDs. Size stays within
	// [0, MaxSize] in steady state and may transiently exceed MaxSize (up
	// to CriticalSize) before a split resolves it.
	Participants []string `json:"participants"`

	// Location is the room's membership centroid.
	Location LatLng `json:"location"`

	// RadiusKm is the discovery radius the room was formed at.
	RadiusKm float64 `json:"radiusKm"`

	// VibeScore is the aggregate vibe of the room in [0, 1].
	VibeScore float64 `json:"vibeScore"`

	// ActivityLevel is the room's activity level in [0, 1].
	ActivityLevel float64 `json:"activityLevel"`

	// Topics is the room's topic tag set (at most five tags).
	Topics []string `json:"topics"`

	// State is the room's lifecycle state.
	State RoomState `json:"state"`

	// CreatedAt is when the room was created.
	CreatedAt time.Time `json:"createdAt"`

	// LastActivityAt is updated on every membership change.
	LastActivityAt time.Time `json:"lastActivityAt"`

	// ParentRoomID links a room produced by a split to its origin.
	// Weak, non-owning reference kept for audit only.
	ParentRoomID string `json:"parentRoomId,omitempty"`

	// MergedIntoID links a closed room to the room that absorbed it.
	// The target room is always active at the time the link is written.
	MergedIntoID string `json:"mergedIntoId,omitempty"`

	// Revision is the store revision used for optimistic writes. Zero for
	// rooms that have never been persisted.
	Revision uint64 `json:"-"`
}

// Size returns the number of participants.
func (r *Room) Size() int {
	return len(r.Participants)
}

// IsActive reports whether the room is in any non-closed state.
func (r *Room) IsActive() bool {
	return r.State != RoomClosed
}

// HasParticipant reports whether the user is a member of the room.
func (r *Room) HasParticipant(userID string) bool {
	return slices.Contains(r.Participants, userID)
}

// AddParticipant adds the user to the room if not already present.
//
// Returns:
//   - bool: true if the user was added, false if already a member
func (r *Room) AddParticipant(userID string) bool {
	if r.HasParticipant(userID) {
		return false
	}
	r.Participants = append(r.Participants, userID)

	return true
}

// RemoveParticipant removes the user from the room.
//
// Returns:
//   - bool: true if the user was removed, false if not a member
func (r *Room) RemoveParticipant(userID string) bool {
	idx := slices.Index(r.Participants, userID)
	if idx < 0 {
		return false
	}
	r.Participants = slices.Delete(r.Participants, idx, idx+1)

	return true
}

// Touch updates the last-activity timestamp.
func (r *Room) Touch(now time.Time) {
	r.LastActivityAt = now
}

// Clone returns a deep copy of the room.
//
// Stores hand out clones so callers can mutate freely before writing back.
func (r *Room) Clone() *Room {
	cp := *r
	cp.Participants = slices.Clone(r.Participants)
	cp.Topics = slices.Clone(r.Topics)

	return &cp
}
