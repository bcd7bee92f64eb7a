package types

import (
	"context"
	"time"
)

// PresenceStore is the read contract against the external presence
// subsystem.
//
// The core only ever reads transient snapshots; heartbeat writes are owned
// by the excluded presence service. Implementations must apply both the
// geospatial filter and the heartbeat freshness filter.
type PresenceStore interface {
	// QueryActiveUsers returns presence snapshots for users within radiusKm
	// of center whose last heartbeat is within heartbeatThreshold.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - center: Query center
	//   - radiusKm: Great-circle radius in kilometers
	//   - heartbeatThreshold: Maximum heartbeat age
	//
	// Returns:
	//   - []UserPresence: Matching snapshots (order unspecified)
	//   - error: Transient query failure; callers degrade, never crash
	QueryActiveUsers(ctx context.Context, center LatLng, radiusKm float64, heartbeatThreshold time.Duration) ([]UserPresence, error)

	// GetPresences returns snapshots for the given user IDs. Users without
	// a live presence record are silently omitted from the result.
	GetPresences(ctx context.Context, ids []string) ([]UserPresence, error)
}

// RoomStore is the persistence contract for rooms.
//
// Implementations provide at-least read-your-writes consistency and
// optimistic concurrency: PutRoom must fail with ErrPreconditionStale when
// the stored revision no longer matches the revision the caller read.
type RoomStore interface {
	// GetRoom fetches a room by ID.
	//
	// Returns:
	//   - *Room: The room (a private copy the caller may mutate)
	//   - error: ErrRoomNotFound if the room does not exist
	GetRoom(ctx context.Context, id string) (*Room, error)

	// PutRoom persists the room, checking its Revision against the stored
	// revision. On success the room's Revision is advanced in place.
	//
	// Returns:
	//   - error: ErrPreconditionStale on a lost write race
	PutRoom(ctx context.Context, room *Room) error

	// ListActiveRoomsNear returns active (non-closed) rooms whose centroid
	// lies within radiusKm of center.
	ListActiveRoomsNear(ctx context.Context, center LatLng, radiusKm float64) ([]Room, error)
}

// Notifier delivers scaling notifications to users.
//
// Delivery is fire-and-forget: implementations should be fast and callers
// must never let a delivery failure abort a scaling operation.
type Notifier interface {
	// Notify sends a notification of the given kind to a user.
	Notify(ctx context.Context, userID string, kind NotifyKind, payload []byte) error
}
