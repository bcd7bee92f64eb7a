package types

import "context"

// Hooks defines callbacks for Controller lifecycle events.
//
// All hooks are optional and called asynchronously in background goroutines
// to avoid blocking room operations. Hooks receive the controller's
// lifecycle context, which is cancelled during shutdown.
//
// Hook execution behavior:
//   - Hooks run concurrently and may not complete before Stop() returns
//   - Hook errors are logged but don't fail controller operations
//
// Best practices for hook implementation:
//   - Complete quickly (< 1 second recommended)
//   - Respect context cancellation
//   - Make hooks idempotent (may be called multiple times)
type Hooks struct {
	// OnRoomCreated is called after a new room is persisted.
	OnRoomCreated func(ctx context.Context, room Room) error

	// OnRoomStateChanged is called when a room transitions between
	// lifecycle states.
	OnRoomStateChanged func(ctx context.Context, roomID string, from, to RoomState) error

	// OnScalingEvent is called for every audit event the controller
	// records.
	OnScalingEvent func(ctx context.Context, event ScalingEvent) error

	// OnError is called when a recoverable error occurs.
	OnError func(ctx context.Context, err error) error
}
