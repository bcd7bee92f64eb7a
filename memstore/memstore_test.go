package memstore

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vibehut/huddle/types"
)

var taipei = types.LatLng{Lat: 25.033, Lng: 121.565}

func TestRoomStore_GetPut(t *testing.T) {
	s := NewRoomStore()
	ctx := t.Context()

	t.Run("missing room", func(t *testing.T) {
		_, err := s.GetRoom(ctx, "nope")
		require.ErrorIs(t, err, types.ErrRoomNotFound)
	})

	t.Run("roundtrip advances revision", func(t *testing.T) {
		room := &types.Room{ID: "room-1", HostID: "alice", Participants: []string{"alice"}}

		require.NoError(t, s.PutRoom(ctx, room))
		require.Equal(t, uint64(1), room.Revision)

		got, err := s.GetRoom(ctx, "room-1")
		require.NoError(t, err)
		require.Equal(t, "alice", got.HostID)
		require.Equal(t, uint64(1), got.Revision)
	})

	t.Run("get returns a private copy", func(t *testing.T) {
		got, err := s.GetRoom(ctx, "room-1")
		require.NoError(t, err)

		got.Participants = append(got.Participants, "mallory")

		again, err := s.GetRoom(ctx, "room-1")
		require.NoError(t, err)
		require.Equal(t, []string{"alice"}, again.Participants)
	})
}

func TestRoomStore_OptimisticConcurrency(t *testing.T) {
	ctx := t.Context()

	t.Run("create of existing room is stale", func(t *testing.T) {
		s := NewRoomStore()
		require.NoError(t, s.PutRoom(ctx, &types.Room{ID: "room-1"}))

		err := s.PutRoom(ctx, &types.Room{ID: "room-1"})
		require.ErrorIs(t, err, types.ErrPreconditionStale)
	})

	t.Run("update with nonzero revision of missing room is stale", func(t *testing.T) {
		s := NewRoomStore()
		err := s.PutRoom(ctx, &types.Room{ID: "room-1", Revision: 3})
		require.ErrorIs(t, err, types.ErrPreconditionStale)
	})

	t.Run("lost write race is stale", func(t *testing.T) {
		s := NewRoomStore()
		require.NoError(t, s.PutRoom(ctx, &types.Room{ID: "room-1"}))

		a, err := s.GetRoom(ctx, "room-1")
		require.NoError(t, err)
		b, err := s.GetRoom(ctx, "room-1")
		require.NoError(t, err)

		a.HostID = "alice"
		require.NoError(t, s.PutRoom(ctx, a))

		b.HostID = "bob"
		err = s.PutRoom(ctx, b)
		require.ErrorIs(t, err, types.ErrPreconditionStale)

		// The loser re-reads and retries cleanly.
		b, err = s.GetRoom(ctx, "room-1")
		require.NoError(t, err)
		require.Equal(t, "alice", b.HostID)
		b.HostID = "bob"
		require.NoError(t, s.PutRoom(ctx, b))
	})
}

func TestRoomStore_ListActiveRoomsNear(t *testing.T) {
	s := NewRoomStore()
	ctx := t.Context()

	require.NoError(t, s.PutRoom(ctx, &types.Room{ID: "near", Location: taipei}))
	require.NoError(t, s.PutRoom(ctx, &types.Room{
		ID:       "far",
		Location: types.LatLng{Lat: taipei.Lat + 1, Lng: taipei.Lng},
	}))
	require.NoError(t, s.PutRoom(ctx, &types.Room{ID: "closed", Location: taipei, State: types.RoomClosed}))

	rooms, err := s.ListActiveRoomsNear(ctx, taipei, 15)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	require.Equal(t, "near", rooms[0].ID)

	// A wide enough radius picks up the far room too.
	rooms, err = s.ListActiveRoomsNear(ctx, taipei, 200)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
}

func TestPresenceStore(t *testing.T) {
	ctx := t.Context()

	t.Run("query filters stale heartbeats", func(t *testing.T) {
		s := NewPresenceStore()
		now := time.Now()
		s.SetNowFunc(func() time.Time { return now })

		s.Upsert(types.UserPresence{ID: "fresh", Location: taipei, LastHeartbeat: now})
		s.Upsert(types.UserPresence{ID: "stale", Location: taipei, LastHeartbeat: now.Add(-2 * time.Minute)})

		users, err := s.QueryActiveUsers(ctx, taipei, 10, 90*time.Second)
		require.NoError(t, err)
		require.Len(t, users, 1)
		require.Equal(t, "fresh", users[0].ID)
	})

	t.Run("query filters by distance", func(t *testing.T) {
		s := NewPresenceStore()
		s.Upsert(types.UserPresence{ID: "near", Location: taipei})
		s.Upsert(types.UserPresence{
			ID:       "far",
			Location: types.LatLng{Lat: taipei.Lat + 1, Lng: taipei.Lng},
		})

		users, err := s.QueryActiveUsers(ctx, taipei, 10, time.Minute)
		require.NoError(t, err)
		require.Len(t, users, 1)
		require.Equal(t, "near", users[0].ID)
	})

	t.Run("upsert stamps missing heartbeat", func(t *testing.T) {
		s := NewPresenceStore()
		s.Upsert(types.UserPresence{ID: "alice", Location: taipei})

		users, err := s.GetPresences(ctx, []string{"alice"})
		require.NoError(t, err)
		require.Len(t, users, 1)
		require.False(t, users[0].LastHeartbeat.IsZero())
	})

	t.Run("get presences omits missing users", func(t *testing.T) {
		s := NewPresenceStore()
		s.Upsert(types.UserPresence{ID: "alice", Location: taipei})

		users, err := s.GetPresences(ctx, []string{"alice", "ghost"})
		require.NoError(t, err)
		require.Len(t, users, 1)
	})

	t.Run("remove", func(t *testing.T) {
		s := NewPresenceStore()
		s.Upsert(types.UserPresence{ID: "alice", Location: taipei})
		s.Remove("alice")

		users, err := s.GetPresences(ctx, []string{"alice"})
		require.NoError(t, err)
		require.Empty(t, users)
	})
}

func TestNotifier(t *testing.T) {
	ctx := t.Context()

	t.Run("records deliveries", func(t *testing.T) {
		n := NewNotifier()
		require.NoError(t, n.Notify(ctx, "alice", types.NotifySplit, []byte(`{"roomId":"room-2"}`)))
		require.NoError(t, n.Notify(ctx, "bob", types.NotifyMerge, nil))

		sent := n.Sent()
		require.Len(t, sent, 2)
		require.Equal(t, "alice", sent[0].UserID)
		require.Equal(t, types.NotifySplit, sent[0].Kind)
		require.Equal(t, types.NotifyMerge, sent[1].Kind)
	})

	t.Run("injected failure", func(t *testing.T) {
		n := NewNotifier()
		boom := errors.New("boom")
		n.FailWith(boom)

		require.ErrorIs(t, n.Notify(ctx, "alice", types.NotifySplit, nil), boom)
		require.Empty(t, n.Sent())

		n.FailWith(nil)
		require.NoError(t, n.Notify(ctx, "alice", types.NotifySplit, nil))
	})
}
