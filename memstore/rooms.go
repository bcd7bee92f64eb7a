package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/vibehut/huddle/types"
)

// RoomStore is an in-memory implementation of types.RoomStore with
// optimistic concurrency.
//
// Every stored room carries a revision. PutRoom succeeds only when the
// caller's revision matches the stored one, mirroring the compare-and-swap
// contract of the NATS-backed store.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*types.Room
}

// Compile-time assertion that RoomStore implements types.RoomStore.
var _ types.RoomStore = (*RoomStore)(nil)

// NewRoomStore creates an empty in-memory room store.
//
// Returns:
//   - *RoomStore: Initialized store
func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[string]*types.Room)}
}

// GetRoom fetches a room by ID.
//
// Returns:
//   - *types.Room: A private copy the caller may mutate
//   - error: types.ErrRoomNotFound when absent
func (s *RoomStore) GetRoom(ctx context.Context, id string) (*types.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %s: %w", id, types.ErrRoomNotFound)
	}

	return room.Clone(), nil
}

// PutRoom persists the room with a revision check.
//
// A room with Revision 0 must not already exist; otherwise the revision
// must match the stored one. On success the stored revision advances and
// room.Revision is updated in place.
//
// Returns:
//   - error: types.ErrPreconditionStale on a lost write race
func (s *RoomStore) PutRoom(ctx context.Context, room *types.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.rooms[room.ID]
	switch {
	case !exists && room.Revision != 0:
		return fmt.Errorf("room %s vanished: %w", room.ID, types.ErrPreconditionStale)
	case exists && stored.Revision != room.Revision:
		return fmt.Errorf("room %s revision %d != %d: %w",
			room.ID, room.Revision, stored.Revision, types.ErrPreconditionStale)
	}

	room.Revision++
	s.rooms[room.ID] = room.Clone()

	return nil
}

// ListActiveRoomsNear returns non-closed rooms within radiusKm of center.
func (s *RoomStore) ListActiveRoomsNear(ctx context.Context, center types.LatLng, radiusKm float64) ([]types.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Room, 0)
	for _, room := range s.rooms {
		if !room.IsActive() {
			continue
		}
		if center.DistanceKm(room.Location) > radiusKm {
			continue
		}
		out = append(out, *room.Clone())
	}

	return out, nil
}
