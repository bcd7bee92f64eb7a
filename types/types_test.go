package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLatLngDistanceKm(t *testing.T) {
	taipei := LatLng{Lat: 25.033, Lng: 121.565}
	kaohsiung := LatLng{Lat: 22.627, Lng: 120.301}

	t.Run("zero distance to itself", func(t *testing.T) {
		require.Equal(t, 0.0, taipei.DistanceKm(taipei))
	})

	t.Run("known city pair", func(t *testing.T) {
		// Taipei to Kaohsiung is roughly 296 km.
		d := taipei.DistanceKm(kaohsiung)
		require.InDelta(t, 296, d, 5)
	})

	t.Run("symmetric", func(t *testing.T) {
		require.Equal(t, taipei.DistanceKm(kaohsiung), kaohsiung.DistanceKm(taipei))
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		a := LatLng{Lat: 0, Lng: 0}
		b := LatLng{Lat: 1, Lng: 0}
		require.InDelta(t, 111.2, a.DistanceKm(b), 0.5)
	})
}

func TestLatLngMidpoint(t *testing.T) {
	a := LatLng{Lat: 10, Lng: 20}
	b := LatLng{Lat: 20, Lng: 40}

	mid := a.Midpoint(b)
	require.Equal(t, LatLng{Lat: 15, Lng: 30}, mid)
	require.Equal(t, mid, b.Midpoint(a))
}

func TestVibeVector(t *testing.T) {
	require.True(t, NeutralVibe().Valid())
	require.False(t, VibeVector(nil).Valid())
	require.False(t, VibeVector{0.5}.Valid())

	for _, v := range NeutralVibe() {
		require.Equal(t, 0.5, v)
	}
}

func TestEnergyOrdinal(t *testing.T) {
	require.Equal(t, 0, EnergyChill.Ordinal())
	require.Equal(t, 1, EnergyModerate.Ordinal())
	require.Equal(t, 2, EnergyEnergetic.Ordinal())
	require.Equal(t, 1, EnergyLevel("unknown").Ordinal())
}

func TestUserPresenceActiveAt(t *testing.T) {
	now := time.Now()
	u := UserPresence{LastHeartbeat: now.Add(-time.Minute)}

	require.True(t, u.ActiveAt(now, 90*time.Second))
	require.False(t, u.ActiveAt(now, 30*time.Second))
}

func TestRoomMembership(t *testing.T) {
	r := &Room{ID: "room-1", HostID: "alice", Participants: []string{"alice"}}

	require.True(t, r.AddParticipant("bob"))
	require.False(t, r.AddParticipant("bob"))
	require.Equal(t, 2, r.Size())
	require.True(t, r.HasParticipant("bob"))

	require.True(t, r.RemoveParticipant("bob"))
	require.False(t, r.RemoveParticipant("bob"))
	require.Equal(t, 1, r.Size())
}

func TestRoomClone(t *testing.T) {
	r := &Room{
		ID:           "room-1",
		Participants: []string{"alice"},
		Topics:       []string{"jazz"},
	}

	cp := r.Clone()
	cp.AddParticipant("bob")
	cp.Topics[0] = "opera"

	require.Equal(t, []string{"alice"}, r.Participants)
	require.Equal(t, []string{"jazz"}, r.Topics)
}

func TestRoomStateString(t *testing.T) {
	require.Equal(t, "Active", RoomActive.String())
	require.Equal(t, "PendingSplit", RoomPendingSplit.String())
	require.Equal(t, "PendingMerge", RoomPendingMerge.String())
	require.Equal(t, "Closed", RoomClosed.String())
	require.Equal(t, "Unknown", RoomState(42).String())
}
