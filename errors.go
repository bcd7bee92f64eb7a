package huddle

import "github.com/vibehut/huddle/types"

// Sentinel errors returned by the Controller.
//
// These alias the definitions in the types subpackage so internal packages
// can reference them without importing the root package.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrRoomStoreRequired is returned when the room store is nil.
	ErrRoomStoreRequired = types.ErrRoomStoreRequired

	// ErrPresenceStoreRequired is returned when the presence store is nil.
	ErrPresenceStoreRequired = types.ErrPresenceStoreRequired

	// ErrAlreadyStarted is returned when Start is called on an already running controller.
	ErrAlreadyStarted = types.ErrAlreadyStarted

	// ErrNotStarted is returned when operations require a started controller.
	ErrNotStarted = types.ErrNotStarted

	// ErrRoomClosed is returned when an operation targets a closed room.
	ErrRoomClosed = types.ErrRoomClosed

	// ErrNotParticipant is returned when leaving a room the user is not a member of.
	ErrNotParticipant = types.ErrNotParticipant

	// ErrRoomNotFound is returned when a room does not exist.
	ErrRoomNotFound = types.ErrRoomNotFound

	// ErrPreconditionStale is returned when room state changed between read and write.
	ErrPreconditionStale = types.ErrPreconditionStale

	// ErrInvalidPartition is returned when a split would produce an empty group.
	ErrInvalidPartition = types.ErrInvalidPartition

	// ErrIncompatibleMerge is returned when no merge candidate meets the threshold.
	ErrIncompatibleMerge = types.ErrIncompatibleMerge
)
