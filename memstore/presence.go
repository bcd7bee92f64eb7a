package memstore

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/vibehut/huddle/types"
)

// PresenceStore is an in-memory implementation of types.PresenceStore.
//
// Heartbeat writes normally belong to an external presence service; the
// Upsert and Remove methods stand in for it here.
type PresenceStore struct {
	mu    sync.RWMutex
	users map[string]types.UserPresence
	now   func() time.Time
}

// Compile-time assertion that PresenceStore implements types.PresenceStore.
var _ types.PresenceStore = (*PresenceStore)(nil)

// NewPresenceStore creates an empty in-memory presence store.
//
// Returns:
//   - *PresenceStore: Initialized store
func NewPresenceStore() *PresenceStore {
	return &PresenceStore{
		users: make(map[string]types.UserPresence),
		now:   time.Now,
	}
}

// SetNowFunc overrides the store's clock. Test helper.
func (s *PresenceStore) SetNowFunc(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Upsert stores a presence snapshot, stamping LastHeartbeat with the
// store's clock when unset.
func (s *PresenceStore) Upsert(p types.UserPresence) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.LastHeartbeat.IsZero() {
		p.LastHeartbeat = s.now()
	}
	p.Interests = slices.Clone(p.Interests)
	p.Vibe = slices.Clone(p.Vibe)
	s.users[p.ID] = p
}

// Remove deletes a user's presence record.
func (s *PresenceStore) Remove(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
}

// QueryActiveUsers returns fresh presences within radiusKm of center.
func (s *PresenceStore) QueryActiveUsers(ctx context.Context, center types.LatLng, radiusKm float64, heartbeatThreshold time.Duration) ([]types.UserPresence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	out := make([]types.UserPresence, 0)
	for _, p := range s.users {
		if !p.ActiveAt(now, heartbeatThreshold) {
			continue
		}
		if center.DistanceKm(p.Location) > radiusKm {
			continue
		}
		out = append(out, p)
	}

	return out, nil
}

// GetPresences returns snapshots for the given IDs, omitting users without
// a presence record.
func (s *PresenceStore) GetPresences(ctx context.Context, ids []string) ([]types.UserPresence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.UserPresence, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.users[id]; ok {
			out = append(out, p)
		}
	}

	return out, nil
}
