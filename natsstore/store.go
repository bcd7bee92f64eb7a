package natsstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/vibehut/huddle/internal/kvutil"
	"github.com/vibehut/huddle/types"
)

// Default bucket and subject names.
const (
	DefaultPresenceBucket = "huddle-presence"
	DefaultRoomBucket     = "huddle-rooms"
	DefaultNotifyPrefix   = "huddle.notify"
)

// Config holds settings for the NATS-backed store.
type Config struct {
	// PresenceBucket is the KV bucket holding presence snapshots.
	// Defaults to DefaultPresenceBucket.
	PresenceBucket string

	// RoomBucket is the KV bucket holding rooms.
	// Defaults to DefaultRoomBucket.
	RoomBucket string

	// PresenceTTL expires presence records server-side. Set it to the
	// controller's heartbeat threshold. Zero disables expiry.
	PresenceTTL time.Duration

	// NotifyPrefix is the subject prefix for user notifications.
	// Defaults to DefaultNotifyPrefix.
	NotifyPrefix string

	// Replicas is the KV bucket replication factor. Defaults to 1.
	Replicas int
}

func (c *Config) setDefaults() {
	if c.PresenceBucket == "" {
		c.PresenceBucket = DefaultPresenceBucket
	}
	if c.RoomBucket == "" {
		c.RoomBucket = DefaultRoomBucket
	}
	if c.NotifyPrefix == "" {
		c.NotifyPrefix = DefaultNotifyPrefix
	}
	if c.Replicas <= 0 {
		c.Replicas = 1
	}
}

// Store implements types.PresenceStore, types.RoomStore, and
// types.Notifier on top of NATS JetStream.
type Store struct {
	nc         *nats.Conn
	presenceKV jetstream.KeyValue
	roomKV     jetstream.KeyValue
	prefix     string
}

// Compile-time assertions.
var (
	_ types.PresenceStore = (*Store)(nil)
	_ types.RoomStore     = (*Store)(nil)
	_ types.Notifier      = (*Store)(nil)
)

// New connects the store to NATS, creating its KV buckets if needed.
//
// Parameters:
//   - ctx: Context for bucket creation
//   - nc: Established NATS connection
//   - cfg: Store configuration (zero value uses defaults)
//
// Returns:
//   - *Store: Ready-to-use store
//   - error: Bucket creation failure
func New(ctx context.Context, nc *nats.Conn, cfg Config) (*Store, error) {
	cfg.setDefaults()

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	presenceKV, err := kvutil.EnsureBucket(ctx, js, jetstream.KeyValueConfig{
		Bucket:   cfg.PresenceBucket,
		TTL:      cfg.PresenceTTL,
		Replicas: cfg.Replicas,
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure presence bucket: %w", err)
	}

	roomKV, err := kvutil.EnsureBucket(ctx, js, jetstream.KeyValueConfig{
		Bucket:   cfg.RoomBucket,
		Replicas: cfg.Replicas,
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure room bucket: %w", err)
	}

	return &Store{
		nc:         nc,
		presenceKV: presenceKV,
		roomKV:     roomKV,
		prefix:     cfg.NotifyPrefix,
	}, nil
}

// UpsertPresence writes a presence snapshot.
//
// Heartbeat writes belong to the presence service in production; this is
// exposed for tests, examples, and co-located deployments.
func (s *Store) UpsertPresence(ctx context.Context, p types.UserPresence) error {
	if p.LastHeartbeat.IsZero() {
		p.LastHeartbeat = time.Now()
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal presence for %s: %w", p.ID, err)
	}

	if _, err := s.presenceKV.Put(ctx, p.ID, data); err != nil {
		return fmt.Errorf("failed to put presence for %s: %w", p.ID, err)
	}

	return nil
}

// QueryActiveUsers returns fresh presences within radiusKm of center.
//
// Bucket TTL already expires most stale records; the heartbeat threshold
// is still applied here for records the server has not reaped yet.
func (s *Store) QueryActiveUsers(ctx context.Context, center types.LatLng, radiusKm float64, heartbeatThreshold time.Duration) ([]types.UserPresence, error) {
	lister, err := s.presenceKV.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return []types.UserPresence{}, nil
		}

		return nil, fmt.Errorf("failed to list presence keys: %w", err)
	}

	now := time.Now()
	out := make([]types.UserPresence, 0)
	for key := range lister.Keys() {
		entry, err := s.presenceKV.Get(ctx, key)
		if err != nil {
			if errors.Is(err, jetstream.ErrKeyNotFound) {
				// Expired between list and get.
				continue
			}

			return nil, fmt.Errorf("failed to get presence %s: %w", key, err)
		}

		var p types.UserPresence
		if err := json.Unmarshal(entry.Value(), &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal presence %s: %w", key, err)
		}

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
// a live record.
func (s *Store) GetPresences(ctx context.Context, ids []string) ([]types.UserPresence, error) {
	out := make([]types.UserPresence, 0, len(ids))
	for _, id := range ids {
		entry, err := s.presenceKV.Get(ctx, id)
		if err != nil {
			if errors.Is(err, jetstream.ErrKeyNotFound) {
				continue
			}

			return nil, fmt.Errorf("failed to get presence %s: %w", id, err)
		}

		var p types.UserPresence
		if err := json.Unmarshal(entry.Value(), &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal presence %s: %w", id, err)
		}
		out = append(out, p)
	}

	return out, nil
}

// GetRoom fetches a room by ID.
//
// The KV entry revision is carried on the returned room and checked again
// by PutRoom.
func (s *Store) GetRoom(ctx context.Context, id string) (*types.Room, error) {
	entry, err := s.roomKV.Get(ctx, id)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, fmt.Errorf("room %s: %w", id, types.ErrRoomNotFound)
		}

		return nil, fmt.Errorf("failed to get room %s: %w", id, err)
	}

	var room types.Room
	if err := json.Unmarshal(entry.Value(), &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room %s: %w", id, err)
	}
	room.Revision = entry.Revision()

	return &room, nil
}

// PutRoom persists the room with a revision check.
//
// A room with Revision 0 is created atomically; otherwise the write uses
// Update with the room's revision, so a concurrent writer surfaces as
// types.ErrPreconditionStale.
func (s *Store) PutRoom(ctx context.Context, room *types.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room %s: %w", room.ID, err)
	}

	var revision uint64
	if room.Revision == 0 {
		revision, err = s.roomKV.Create(ctx, room.ID, data)
		if err != nil {
			if errors.Is(err, jetstream.ErrKeyExists) {
				return fmt.Errorf("room %s already exists: %w", room.ID, types.ErrPreconditionStale)
			}

			return fmt.Errorf("failed to create room %s: %w", room.ID, err)
		}
	} else {
		revision, err = s.roomKV.Update(ctx, room.ID, data, room.Revision)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("failed to update room %s: %w", room.ID, err)
			}

			// Update only fails on a revision mismatch once the connection
			// and context are healthy.
			return fmt.Errorf("room %s: %w: %w", room.ID, types.ErrPreconditionStale, err)
		}
	}
	room.Revision = revision

	return nil
}

// ListActiveRoomsNear returns non-closed rooms within radiusKm of center.
func (s *Store) ListActiveRoomsNear(ctx context.Context, center types.LatLng, radiusKm float64) ([]types.Room, error) {
	lister, err := s.roomKV.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return []types.Room{}, nil
		}

		return nil, fmt.Errorf("failed to list room keys: %w", err)
	}

	out := make([]types.Room, 0)
	for key := range lister.Keys() {
		room, err := s.GetRoom(ctx, key)
		if err != nil {
			if errors.Is(err, types.ErrRoomNotFound) {
				continue
			}

			return nil, err
		}

		if !room.IsActive() {
			continue
		}
		if center.DistanceKm(room.Location) > radiusKm {
			continue
		}
		out = append(out, *room)
	}

	return out, nil
}

// Notify publishes the notification on <prefix>.<kind>.<userID>.
func (s *Store) Notify(_ context.Context, userID string, kind types.NotifyKind, payload []byte) error {
	subject := fmt.Sprintf("%s.%s.%s", s.prefix, kind, userID)
	if err := s.nc.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish notification on %s: %w", subject, err)
	}

	return nil
}
