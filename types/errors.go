package types

import "errors"

// Sentinel errors for the huddle library.
//
// These errors provide type-safe error checking using errors.Is() and
// errors.As(). All components should use these sentinel errors for known
// error conditions and wrap external errors with context using
// fmt.Errorf("%s: %w", msg, err).
//
// Nothing in this taxonomy is fatal to the process: every failure mode
// degrades to "do nothing this cycle" plus an audit entry.

// Controller errors - Public API errors returned by the Controller.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrRoomStoreRequired is returned when the room store is nil.
	ErrRoomStoreRequired = errors.New("room store is required")

	// ErrPresenceStoreRequired is returned when the presence store is nil.
	ErrPresenceStoreRequired = errors.New("presence store is required")

	// ErrAlreadyStarted is returned when Start is called on an already
	// running controller.
	ErrAlreadyStarted = errors.New("controller already started")

	// ErrNotStarted is returned when operations require a started
	// controller.
	ErrNotStarted = errors.New("controller not started")

	// ErrRoomClosed is returned when an operation targets a closed room.
	ErrRoomClosed = errors.New("room is closed")

	// ErrNotParticipant is returned when leaving a room the user is not a
	// member of.
	ErrNotParticipant = errors.New("user is not a participant of the room")
)

// Scaling errors - Recoverable conditions inside split/merge transitions.
var (
	// ErrTransientQuery indicates the external store was unreachable.
	// Discovery degrades to an empty result set instead of propagating it.
	ErrTransientQuery = errors.New("transient store query failure")

	// ErrPreconditionStale indicates room state changed between read and
	// write. The operation is abandoned; the next cycle re-evaluates.
	ErrPreconditionStale = errors.New("room precondition is stale")

	// ErrInvalidPartition indicates a split would produce an empty side.
	// The split is skipped and the room stays oversized until a meaningful
	// split exists.
	ErrInvalidPartition = errors.New("partition would produce an empty group")

	// ErrIncompatibleMerge indicates no merge candidate met the
	// compatibility threshold. The pending merge is cancelled; this is not
	// an error condition for callers.
	ErrIncompatibleMerge = errors.New("no compatible merge candidate")
)

// Store errors - Returned by RoomStore/PresenceStore implementations.
var (
	// ErrRoomNotFound is returned when a room does not exist in the store.
	ErrRoomNotFound = errors.New("room not found")
)
