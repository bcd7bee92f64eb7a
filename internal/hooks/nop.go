// Package hooks provides the default no-op hook implementations.
package hooks

import (
	"context"

	"github.com/vibehut/huddle/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default implementation used when no custom hooks are
// provided, eliminating the need for nil checks throughout the codebase.
type NopHooks struct{}

// NewNop creates a new no-op hooks implementation.
//
// Returns:
//   - types.Hooks: Hooks with no-op implementations
func NewNop() types.Hooks {
	h := &NopHooks{}
	return types.Hooks{
		OnRoomCreated:      h.OnRoomCreated,
		OnRoomStateChanged: h.OnRoomStateChanged,
		OnScalingEvent:     h.OnScalingEvent,
		OnError:            h.OnError,
	}
}

// OnRoomCreated is a no-op implementation.
func (h *NopHooks) OnRoomCreated(ctx context.Context, room types.Room) error {
	return nil
}

// OnRoomStateChanged is a no-op implementation.
func (h *NopHooks) OnRoomStateChanged(ctx context.Context, roomID string, from, to types.RoomState) error {
	return nil
}

// OnScalingEvent is a no-op implementation.
func (h *NopHooks) OnScalingEvent(ctx context.Context, event types.ScalingEvent) error {
	return nil
}

// OnError is a no-op implementation.
func (h *NopHooks) OnError(ctx context.Context, err error) error {
	return nil
}
