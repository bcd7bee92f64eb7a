package huddle

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/vibehut/huddle/types"
)

// putRetries bounds optimistic-write retry loops for join/leave. Each
// retry re-reads the room, so a retry only repeats work when another
// writer actually interleaved.
const putRetries = 3

// Join places a user into the best compatible nearby room, creating a new
// room when none qualifies.
//
// Placement runs in three phases:
//  1. Discovery: the adaptive radius search collects nearby active users
//     and settles on a radius for the area's density.
//  2. Selection: nearby rooms with space are ranked by the average match
//     score between the user and the room's current members; the best room
//     at or above MinScoreForJoin wins.
//  3. Commit: the user is added under the room's lock with an optimistic
//     write, or a fresh room is created with the user as host.
//
// A user holds at most one active room. Joining again within clustering
// range of the current room is idempotent and returns it without side
// effects; joining from beyond that range leaves the old room first, so a
// relocated user is re-placed locally rather than kept in two rooms. If
// the membership change pushes the room past CriticalSize, the split
// executes before Join returns and the returned room is whichever side the
// user landed on.
//
// Parameters:
//   - ctx: Context for store round-trips
//   - user: The joining user's presence snapshot
//
// Returns:
//   - *Room: The room the user is now a member of
//   - error: ErrNotStarted, or a store failure
func (c *Controller) Join(ctx context.Context, user UserPresence) (*Room, error) {
	if err := c.requireStarted(); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, fmt.Errorf("join: user ID is required")
	}

	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	// One active room per user, wherever that room is. The index catches
	// rooms the nearby scan below would miss, such as a room the user
	// joined before moving across the country.
	if prevID, ok := c.members.Load(user.ID); ok {
		room, err := c.settlePriorMembership(ctx, user, prevID)
		if err != nil {
			return nil, err
		}
		if room != nil {
			return room, nil
		}
	}

	done := c.storeTimer("list_rooms")
	nearby, err := c.rooms.ListActiveRoomsNear(ctx, user.Location, c.cfg.Discovery.LocationClusterRadiusKm)
	done()
	if err != nil {
		return nil, wrapOp("join: list rooms", err)
	}

	// Backstop for an index entry lost to a restart the sweep has not
	// repaired yet.
	for i := range nearby {
		if nearby[i].HasParticipant(user.ID) {
			room := nearby[i]
			c.members.Store(user.ID, room.ID)

			return &room, nil
		}
	}

	disc := c.calc.Discover(ctx, c.presence, user.Location, user.Interests)
	c.recordDiscovery(disc)

	if best := c.selectRoom(ctx, user, nearby); best != "" {
		room, err := c.joinRoom(ctx, user, best)
		if err == nil {
			return room, nil
		}
		if !errors.Is(err, ErrRoomClosed) && !errors.Is(err, ErrPreconditionStale) {
			return nil, err
		}
		// The chosen room closed or churned away underneath us; fall
		// through and create a fresh room.
		c.logger.Debug("selected room unavailable, creating new room",
			"room", best, "user", user.ID, "error", err)
	}

	return c.createRoom(ctx, user, disc.RadiusKm, disc.Found)
}

// settlePriorMembership resolves the room the membership index holds for a
// joining user.
//
// Returns the room when the user should get it back unchanged (still an
// active member, still within LocationClusterRadiusKm of their position).
// Returns nil after clearing a stale index entry, or after leaving a room
// the user has moved away from; the caller proceeds with normal placement.
func (c *Controller) settlePriorMembership(ctx context.Context, user UserPresence, roomID string) (*Room, error) {
	done := c.storeTimer("get_room")
	room, err := c.rooms.GetRoom(ctx, roomID)
	done()
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			c.forgetMembership(user.ID, roomID)
			return nil, nil
		}

		return nil, wrapOp("join: get prior room", err)
	}

	if !room.IsActive() || !room.HasParticipant(user.ID) {
		c.forgetMembership(user.ID, roomID)
		return nil, nil
	}

	if user.Location.DistanceKm(room.Location) <= c.cfg.Discovery.LocationClusterRadiusKm {
		return room, nil
	}

	// The user moved out of the room's area; leave it before placing them
	// locally so they never hold two active rooms at once.
	c.logger.Debug("user relocated, leaving prior room", "user", user.ID, "room", roomID)
	err = c.removeFromRoom(ctx, roomID, user.ID)
	if err != nil &&
		!errors.Is(err, ErrNotParticipant) &&
		!errors.Is(err, ErrRoomClosed) &&
		!errors.Is(err, ErrRoomNotFound) {
		return nil, wrapOp("join: leave prior room", err)
	}

	return nil, nil
}

// selectRoom ranks candidate rooms by average member compatibility and
// returns the best qualifying room ID, or "" when none qualifies.
func (c *Controller) selectRoom(ctx context.Context, user UserPresence, nearby []Room) string {
	var (
		bestID    string
		bestScore float64
	)

	for i := range nearby {
		room := &nearby[i]
		if room.State == RoomClosed {
			continue
		}
		// Rooms may transiently run above MaxSize while their split timer
		// counts down; only the hard cap blocks placement.
		if room.Size() >= c.cfg.Scaling.CriticalSize {
			continue
		}

		members, err := c.presence.GetPresences(ctx, room.Participants)
		if err != nil || len(members) == 0 {
			continue
		}

		var sum float64
		for _, m := range members {
			result := c.scorer.Score(user, m)
			c.metrics.RecordMatchScore(result.Score)
			sum += result.Score
		}
		avg := sum / float64(len(members))

		if avg >= c.cfg.Scoring.MinScoreForJoin && avg > bestScore {
			bestID = room.ID
			bestScore = avg
		}
	}

	return bestID
}

// joinRoom adds the user to the room under its lock.
func (c *Controller) joinRoom(ctx context.Context, user UserPresence, roomID string) (*Room, error) {
	unlock := c.locks.Lock(roomID)
	defer unlock()

	var room *Room
	for attempt := 0; attempt < putRetries; attempt++ {
		var err error

		done := c.storeTimer("get_room")
		room, err = c.rooms.GetRoom(ctx, roomID)
		done()
		if err != nil {
			return nil, wrapOp("join: get room", err)
		}

		if !room.IsActive() {
			return nil, fmt.Errorf("join room %s: %w", roomID, ErrRoomClosed)
		}
		if room.HasParticipant(user.ID) {
			c.members.Store(user.ID, room.ID)
			return room, nil
		}
		if room.Size() >= c.cfg.Scaling.CriticalSize {
			// Already at the hard cap; let the pending split resolve first.
			return nil, fmt.Errorf("join room %s: %w", roomID, ErrPreconditionStale)
		}

		room.AddParticipant(user.ID)
		c.refreshAggregates(ctx, room)
		room.Touch(c.now())

		done = c.storeTimer("put_room")
		err = c.rooms.PutRoom(ctx, room)
		done()
		if err == nil {
			break
		}
		if errors.Is(err, ErrPreconditionStale) {
			c.staleAbandon("join", roomID, err)
			if attempt == putRetries-1 {
				return nil, err
			}
			continue
		}

		return nil, wrapOp("join: put room", err)
	}

	c.members.Store(user.ID, room.ID)
	c.metrics.RecordRoomSize(room.Size())
	c.logger.Debug("user joined room", "user", user.ID, "room", room.ID, "size", room.Size())

	if split := c.evaluateScaling(ctx, room); split != nil && split.HasParticipant(user.ID) {
		return split, nil
	}

	return room, nil
}

// createRoom creates a fresh room with the user as host.
func (c *Controller) createRoom(ctx context.Context, user UserPresence, radiusKm float64, found bool) (*Room, error) {
	now := c.now()
	room := &Room{
		ID:             c.newRoomID(),
		HostID:         user.ID,
		Participants:   []string{user.ID},
		Location:       user.Location,
		RadiusKm:       radiusKm,
		VibeScore:      meanVibe(user.Vibe),
		ActivityLevel:  user.ActivityScore / 100,
		Topics:         capTopics(slices.Clone(user.Interests), c.cfg.Scaling.MaxTopics),
		State:          RoomActive,
		CreatedAt:      now,
		LastActivityAt: now,
	}

	done := c.storeTimer("put_room")
	err := c.rooms.PutRoom(ctx, room)
	done()
	if err != nil {
		return nil, wrapOp("join: create room", err)
	}

	c.members.Store(user.ID, room.ID)

	reason := "no_compatible_room"
	if !found {
		reason = "no_nearby_activity"
	}
	c.recordEvent(ScalingEvent{
		Type:            EventCreate,
		Timestamp:       now,
		ResultRoomIDs:   []string{room.ID},
		Reason:          reason,
		AffectedUserIDs: []string{user.ID},
	})
	c.metrics.RecordRoomSize(room.Size())
	c.runHook(func(hctx context.Context) error {
		if c.hooks.OnRoomCreated == nil {
			return nil
		}

		return c.hooks.OnRoomCreated(hctx, *room.Clone())
	})

	c.logger.Info("room created", "room", room.ID, "host", user.ID, "radiusKm", radiusKm)

	// A solo room is below MinSize by definition; arm its merge timer so
	// it coalesces with neighbors once the debounce passes.
	unlock := c.locks.Lock(room.ID)
	c.evaluateScaling(ctx, room)
	unlock()

	return room, nil
}

// Leave removes a user from a room.
//
// The last participant leaving closes the room. If the departing user was
// the host, hosting passes to the lexicographically first remaining
// participant. Dropping below MinSize arms the debounced merge timer.
//
// Parameters:
//   - ctx: Context for store round-trips
//   - roomID: Room to leave
//   - userID: Departing user
//
// Returns:
//   - error: ErrNotStarted, ErrRoomNotFound, ErrRoomClosed,
//     ErrNotParticipant, or a store failure
func (c *Controller) Leave(ctx context.Context, roomID, userID string) error {
	if err := c.requireStarted(); err != nil {
		return err
	}

	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	return c.removeFromRoom(ctx, roomID, userID)
}

// removeFromRoom takes the room's lock and removes the user, closing the
// room when they were its last participant. Shared by Leave and by the
// relocation path in Join.
func (c *Controller) removeFromRoom(ctx context.Context, roomID, userID string) error {
	unlock := c.locks.Lock(roomID)
	defer unlock()

	var room *Room
	for attempt := 0; attempt < putRetries; attempt++ {
		var err error

		done := c.storeTimer("get_room")
		room, err = c.rooms.GetRoom(ctx, roomID)
		done()
		if err != nil {
			return wrapOp("leave: get room", err)
		}

		if !room.IsActive() {
			return fmt.Errorf("leave room %s: %w", roomID, ErrRoomClosed)
		}
		if !room.RemoveParticipant(userID) {
			return fmt.Errorf("leave room %s: user %s: %w", roomID, userID, ErrNotParticipant)
		}

		if room.Size() == 0 {
			if err := c.closeRoomLocked(ctx, room, "emptied", userID); err != nil {
				return err
			}
			c.forgetMembership(userID, roomID)

			return nil
		}

		if room.HostID == userID {
			room.HostID = slices.Min(room.Participants)
			c.logger.Debug("host transferred", "room", room.ID, "host", room.HostID)
		}
		c.refreshAggregates(ctx, room)
		room.Touch(c.now())

		done = c.storeTimer("put_room")
		err = c.rooms.PutRoom(ctx, room)
		done()
		if err == nil {
			break
		}
		if errors.Is(err, ErrPreconditionStale) {
			c.staleAbandon("leave", roomID, err)
			if attempt == putRetries-1 {
				return err
			}
			continue
		}

		return wrapOp("leave: put room", err)
	}

	c.forgetMembership(userID, roomID)
	c.metrics.RecordRoomSize(room.Size())
	c.logger.Debug("user left room", "user", userID, "room", room.ID, "size", room.Size())
	c.evaluateScaling(ctx, room)

	return nil
}

// closeRoomLocked transitions an emptied room to Closed. Caller holds the
// room lock and has already removed the final participant.
func (c *Controller) closeRoomLocked(ctx context.Context, room *Room, reason, lastUser string) error {
	from := room.State
	room.State = RoomClosed
	room.HostID = ""
	room.Touch(c.now())

	done := c.storeTimer("put_room")
	err := c.rooms.PutRoom(ctx, room)
	done()
	if err != nil {
		if errors.Is(err, ErrPreconditionStale) {
			c.staleAbandon("close", room.ID, err)
			return err
		}

		return wrapOp("leave: close room", err)
	}

	c.wheel.Cancel(room.ID)
	c.recordTransition(room.ID, from, RoomClosed)
	c.recordEvent(ScalingEvent{
		Type:            EventClose,
		Timestamp:       c.now(),
		SourceRoomIDs:   []string{room.ID},
		Reason:          reason,
		AffectedUserIDs: []string{lastUser},
	})
	c.logger.Info("room closed", "room", room.ID, "reason", reason)

	return nil
}

// meanVibe reduces a vibe vector to its scalar mean, treating missing or
// malformed vectors as neutral.
func meanVibe(v types.VibeVector) float64 {
	if !v.Valid() {
		return 0.5
	}

	var sum float64
	for _, component := range v {
		sum += component
	}

	return sum / float64(len(v))
}

// capTopics truncates a topic set to the configured maximum.
func capTopics(topics []string, maxTopics int) []string {
	if maxTopics > 0 && len(topics) > maxTopics {
		return topics[:maxTopics]
	}

	return topics
}
