package huddle

import (
	"context"
	"encoding/json"
	"errors"
	"slices"

	"github.com/vibehut/huddle/match"
	"github.com/vibehut/huddle/types"
)

// notifyPayload is the JSON body of split/merge notifications: the room
// the user should reconnect to.
type notifyPayload struct {
	RoomID     string `json:"roomId"`
	FromRoomID string `json:"fromRoomId"`
}

// evaluateScaling inspects a room after a membership change and drives the
// scaling state machine. The caller holds the room's lock and has just
// persisted the room.
//
// Size bands:
//   - size >= CriticalSize: split immediately, no debounce
//   - size > MaxSize: arm (or re-arm) the debounced split timer
//   - 0 < size < MinSize: arm (or re-arm) the debounced merge timer
//   - otherwise: settle a stale pending state back to Active
//
// Returns the newly created room when an immediate split executed, nil
// otherwise.
func (c *Controller) evaluateScaling(ctx context.Context, room *Room) *Room {
	size := room.Size()

	switch {
	case size >= c.cfg.Scaling.CriticalSize:
		c.wheel.Cancel(room.ID)
		return c.executeSplitLocked(ctx, room, "critical_size")

	case size > c.cfg.Scaling.MaxSize:
		c.markPending(ctx, room, RoomPendingSplit)
		c.scheduleSplit(room.ID)

	case size < c.cfg.Scaling.MinSize && size > 0:
		c.markPending(ctx, room, RoomPendingMerge)
		c.scheduleMerge(room.ID)

	default:
		if room.State == RoomPendingSplit || room.State == RoomPendingMerge {
			c.wheel.Cancel(room.ID)
			c.revertToActive(ctx, room, "size_recovered")
		}
	}

	return nil
}

// markPending transitions the room into the pending state if it is not
// already there. A room already pending keeps its state; the caller still
// re-arms the timer, which is what debounces churn.
func (c *Controller) markPending(ctx context.Context, room *Room, state RoomState) {
	if room.State == state {
		return
	}

	from := room.State
	room.State = state

	done := c.storeTimer("put_room")
	err := c.rooms.PutRoom(ctx, room)
	done()
	if err != nil {
		if errors.Is(err, ErrPreconditionStale) {
			c.staleAbandon("mark_pending", room.ID, err)
			room.State = from

			return
		}
		c.logger.Warn("failed to persist pending state",
			"room", room.ID, "state", state.String(), "error", err)
		room.State = from

		return
	}

	c.recordTransition(room.ID, from, state)
	c.logger.Debug("room pending", "room", room.ID, "state", state.String(), "size", room.Size())
}

// revertToActive settles a pending room whose trigger condition cleared.
func (c *Controller) revertToActive(ctx context.Context, room *Room, reason string) {
	if room.State == RoomActive || room.State == RoomClosed {
		return
	}

	from := room.State
	room.State = RoomActive

	done := c.storeTimer("put_room")
	err := c.rooms.PutRoom(ctx, room)
	done()
	if err != nil {
		if errors.Is(err, ErrPreconditionStale) {
			c.staleAbandon("revert_active", room.ID, err)
		} else {
			c.logger.Warn("failed to settle room state", "room", room.ID, "error", err)
		}
		room.State = from

		return
	}

	c.recordTransition(room.ID, from, RoomActive)
	c.logger.Debug("room settled", "room", room.ID, "reason", reason)
}

// scheduleSplit arms (or re-arms) the split debounce timer for a room.
func (c *Controller) scheduleSplit(roomID string) {
	c.wheel.Schedule(roomID, timerSplit, c.cfg.Scaling.SplitDelay, func(string) {
		c.onSplitTimer(roomID)
	})
}

// scheduleMerge arms (or re-arms) the merge debounce timer for a room.
func (c *Controller) scheduleMerge(roomID string) {
	c.wheel.Schedule(roomID, timerMerge, c.cfg.Scaling.MergeDelay, func(string) {
		c.onMergeTimer(roomID)
	})
}

// onSplitTimer fires when a room's split debounce elapses. The room is
// re-read and the condition recomputed: churn during the window may have
// shrunk the room back under the limit.
func (c *Controller) onSplitTimer(roomID string) {
	ctx, cancel := context.WithTimeout(c.hookCtx(), c.cfg.OperationTimeout)
	defer cancel()

	unlock := c.locks.Lock(roomID)
	defer unlock()

	room, err := c.rooms.GetRoom(ctx, roomID)
	if err != nil {
		c.logger.Warn("split timer lost its room", "room", roomID, "error", err)
		return
	}
	if !room.IsActive() {
		return
	}

	if room.Size() > c.cfg.Scaling.MaxSize {
		c.executeSplitLocked(ctx, room, "above_max_size")
	} else {
		c.revertToActive(ctx, room, "shrunk_during_debounce")
	}
}

// onMergeTimer fires when a room's merge debounce elapses.
func (c *Controller) onMergeTimer(roomID string) {
	ctx, cancel := context.WithTimeout(c.hookCtx(), c.cfg.OperationTimeout)
	defer cancel()

	candidateID := c.selectMergeCandidate(ctx, roomID)
	if candidateID == "" {
		// Either the room recovered or nothing nearby qualifies. Pending
		// state clears in both cases; the sweep re-arms the timer if the
		// room is still undersized later.
		c.cancelPending(roomID, "no_candidate")
		return
	}

	c.executeMerge(ctx, roomID, candidateID)
}

// settleRoom re-reads a room under its lock and clears a stale pending
// state, but only when the room is back within its size bounds. Used by
// the sweep.
func (c *Controller) settleRoom(roomID string) {
	ctx, cancel := context.WithTimeout(c.hookCtx(), c.cfg.OperationTimeout)
	defer cancel()

	unlock := c.locks.Lock(roomID)
	defer unlock()

	room, err := c.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return
	}
	if !room.IsActive() {
		return
	}

	size := room.Size()
	if size >= c.cfg.Scaling.MinSize && size <= c.cfg.Scaling.MaxSize {
		c.revertToActive(ctx, room, "condition_cleared")
	}
}

// cancelPending re-reads a room under its lock and unconditionally clears
// a pending state. An undersized room goes back to Active; the sweep will
// retry its merge on a later cycle.
func (c *Controller) cancelPending(roomID, reason string) {
	ctx, cancel := context.WithTimeout(c.hookCtx(), c.cfg.OperationTimeout)
	defer cancel()

	unlock := c.locks.Lock(roomID)
	defer unlock()

	room, err := c.rooms.GetRoom(ctx, roomID)
	if err != nil || !room.IsActive() {
		return
	}

	c.revertToActive(ctx, room, reason)
}

// executeSplitLocked divides an oversized room in two. The caller holds
// the room's lock.
//
// The partition strategy proposes keep/move groups; the move group gets a
// fresh room linked back via ParentRoomID. Writes happen new-room-first so
// a lost race on the original leaves at worst an empty orphan room, never
// users without a room.
//
// Returns the new room, or nil when the split was skipped or abandoned.
func (c *Controller) executeSplitLocked(ctx context.Context, room *Room, reason string) *Room {
	members, err := c.presence.GetPresences(ctx, room.Participants)
	if err != nil {
		// Strategies degrade without presence data (random partition).
		c.logger.Warn("split proceeding without presence data", "room", room.ID, "error", err)
		members = nil
	}

	keep, move, err := c.strategy.Partition(*room.Clone(), members)
	if err != nil {
		c.logger.Warn("split skipped", "room", room.ID, "error", err)
		c.revertToActive(ctx, room, "partition_failed")

		return nil
	}
	if len(keep) == 0 || len(move) == 0 {
		c.logger.Warn("split skipped: strategy produced an empty group", "room", room.ID)
		c.revertToActive(ctx, room, "partition_failed")

		return nil
	}

	now := c.now()
	newRoom := &Room{
		ID:             c.newRoomID(),
		HostID:         move[0],
		Participants:   slices.Clone(move),
		Location:       room.Location,
		RadiusKm:       room.RadiusKm,
		VibeScore:      room.VibeScore,
		ActivityLevel:  room.ActivityLevel,
		Topics:         slices.Clone(room.Topics),
		State:          RoomActive,
		CreatedAt:      now,
		LastActivityAt: now,
		ParentRoomID:   room.ID,
	}
	c.refreshAggregates(ctx, newRoom)

	done := c.storeTimer("put_room")
	err = c.rooms.PutRoom(ctx, newRoom)
	done()
	if err != nil {
		c.logger.Warn("split abandoned: failed to create new room", "room", room.ID, "error", err)
		return nil
	}

	from := room.State
	room.Participants = slices.Clone(keep)
	room.State = RoomActive
	c.refreshAggregates(ctx, room)
	room.Touch(now)

	done = c.storeTimer("put_room")
	err = c.rooms.PutRoom(ctx, room)
	done()
	if err != nil {
		// Roll the new room back so moved users are not stranded in two
		// rooms. Best effort: the sweep reconciles anything left behind.
		c.staleAbandon("split", room.ID, err)
		newRoom.State = RoomClosed
		if rbErr := c.rooms.PutRoom(ctx, newRoom); rbErr != nil {
			c.logger.Warn("split rollback failed", "room", newRoom.ID, "error", rbErr)
		}

		return nil
	}

	for _, id := range move {
		c.members.Store(id, newRoom.ID)
	}

	c.wheel.Cancel(room.ID)
	c.recordTransition(room.ID, from, RoomActive)
	c.recordEvent(ScalingEvent{
		Type:            EventSplit,
		Timestamp:       now,
		SourceRoomIDs:   []string{room.ID},
		ResultRoomIDs:   []string{room.ID, newRoom.ID},
		Reason:          reason,
		AffectedUserIDs: slices.Clone(move),
	})
	c.metrics.RecordRoomSize(room.Size())
	c.metrics.RecordRoomSize(newRoom.Size())
	c.runHook(func(hctx context.Context) error {
		if c.hooks.OnRoomCreated == nil {
			return nil
		}

		return c.hooks.OnRoomCreated(hctx, *newRoom.Clone())
	})

	// Both sides of the split get told: the moved group where to
	// reconnect, the kept group that their room just shrank.
	payload, _ := json.Marshal(notifyPayload{RoomID: newRoom.ID, FromRoomID: room.ID})
	c.notify(move, NotifySplit, payload)
	keptPayload, _ := json.Marshal(notifyPayload{RoomID: room.ID, FromRoomID: room.ID})
	c.notify(keep, NotifySplit, keptPayload)

	c.logger.Info("room split",
		"room", room.ID, "newRoom", newRoom.ID,
		"kept", len(keep), "moved", len(move), "reason", reason)

	return newRoom
}

// selectMergeCandidate picks the most compatible nearby room to absorb or
// be absorbed by. Returns "" when no candidate clears MinVibeForMerge.
func (c *Controller) selectMergeCandidate(ctx context.Context, roomID string) string {
	room, err := c.rooms.GetRoom(ctx, roomID)
	if err != nil || !room.IsActive() {
		return ""
	}
	if room.Size() >= c.cfg.Scaling.MinSize || room.Size() == 0 {
		return ""
	}

	nearby, err := c.rooms.ListActiveRoomsNear(ctx, room.Location, c.cfg.Discovery.LocationClusterRadiusKm)
	if err != nil {
		c.logger.Warn("merge candidate search failed", "room", roomID, "error", err)
		return ""
	}

	var (
		bestID    string
		bestScore float64
	)
	for i := range nearby {
		cand := &nearby[i]
		if cand.ID == room.ID {
			continue
		}
		if cand.State != RoomActive && cand.State != RoomPendingMerge {
			continue
		}
		if room.Size()+cand.Size() > c.cfg.Scaling.MaxSize {
			continue
		}

		score := match.RoomCompatibility(*room, *cand)
		c.metrics.RecordRoomCompatibility(score)
		if score >= c.cfg.Scoring.MinVibeForMerge && score > bestScore {
			bestID = cand.ID
			bestScore = score
		}
	}

	if bestID == "" {
		c.recordEvent(ScalingEvent{
			Type:          EventMerge,
			Timestamp:     c.now(),
			SourceRoomIDs: []string{room.ID},
			Reason:        "no_candidate",
		})
	}

	return bestID
}

// executeMerge folds two undersized-compatible rooms together.
//
// Both rooms are locked in lexicographic order and re-read; any change
// that invalidates the merge (growth, closure, a concurrent merge) aborts
// it and the next cycle re-evaluates. The larger room survives; ties go to
// the lexicographically smaller ID.
func (c *Controller) executeMerge(ctx context.Context, roomID, candidateID string) {
	unlock := c.locks.LockPair(roomID, candidateID)
	defer unlock()

	room, err := c.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return
	}
	cand, err := c.rooms.GetRoom(ctx, candidateID)
	if err != nil {
		c.settleHeld(ctx, room)
		return
	}

	// Revalidate under the locks.
	if !room.IsActive() || !cand.IsActive() {
		return
	}
	if room.Size() == 0 || cand.Size() == 0 {
		return
	}
	if room.Size() >= c.cfg.Scaling.MinSize {
		c.settleHeld(ctx, room)
		return
	}
	if room.Size()+cand.Size() > c.cfg.Scaling.MaxSize {
		c.revertToActive(ctx, room, "candidate_grew")
		return
	}

	survivor, absorbed := room, cand
	if cand.Size() > room.Size() || (cand.Size() == room.Size() && cand.ID < room.ID) {
		survivor, absorbed = cand, room
	}

	now := c.now()
	moved := slices.Clone(absorbed.Participants)
	mergedVibe := (survivor.VibeScore + absorbed.VibeScore) / 2

	survivorFrom := survivor.State
	for _, id := range moved {
		survivor.AddParticipant(id)
	}
	survivor.Topics = capTopics(topicUnion(survivor.Topics, absorbed.Topics), c.cfg.Scaling.MaxTopics)
	survivor.State = RoomActive
	c.refreshAggregates(ctx, survivor)
	// The merged vibe is the plain mean of the two rooms' scores, not a
	// member-weighted recompute, and it holds even when presence lookups
	// are down.
	survivor.VibeScore = mergedVibe
	survivor.Touch(now)

	done := c.storeTimer("put_room")
	err = c.rooms.PutRoom(ctx, survivor)
	done()
	if err != nil {
		c.staleAbandon("merge", survivor.ID, err)
		return
	}

	for _, id := range moved {
		c.members.Store(id, survivor.ID)
	}

	absorbedFrom := absorbed.State
	absorbed.State = RoomClosed
	absorbed.MergedIntoID = survivor.ID
	absorbed.Touch(now)

	done = c.storeTimer("put_room")
	err = c.rooms.PutRoom(ctx, absorbed)
	done()
	if err != nil {
		// Survivor already committed; the absorbed room is left for the
		// sweep to close out. Users are reachable via the survivor either
		// way.
		c.staleAbandon("merge_close", absorbed.ID, err)
	}

	c.wheel.Cancel(room.ID)
	c.wheel.Cancel(cand.ID)
	c.recordTransition(survivor.ID, survivorFrom, RoomActive)
	c.recordTransition(absorbed.ID, absorbedFrom, RoomClosed)
	c.recordEvent(ScalingEvent{
		Type:            EventMerge,
		Timestamp:       now,
		SourceRoomIDs:   []string{room.ID, cand.ID},
		ResultRoomIDs:   []string{survivor.ID},
		Reason:          "below_min_size",
		AffectedUserIDs: moved,
	})
	c.metrics.RecordRoomSize(survivor.Size())

	payload, _ := json.Marshal(notifyPayload{RoomID: survivor.ID, FromRoomID: absorbed.ID})
	c.notify(moved, NotifyMerge, payload)

	c.logger.Info("rooms merged",
		"survivor", survivor.ID, "absorbed", absorbed.ID,
		"size", survivor.Size())
}

// settleHeld clears a stale pending state; the caller already holds
// the room's lock.
func (c *Controller) settleHeld(ctx context.Context, room *Room) {
	size := room.Size()
	if size >= c.cfg.Scaling.MinSize && size <= c.cfg.Scaling.MaxSize {
		c.revertToActive(ctx, room, "condition_cleared")
	}
}

// refreshAggregates recomputes a room's centroid, vibe score and activity
// level from its members' presence snapshots. Presence failures keep the
// previous aggregates; stale aggregates beat missing rooms.
func (c *Controller) refreshAggregates(ctx context.Context, room *Room) {
	members, err := c.presence.GetPresences(ctx, room.Participants)
	if err != nil || len(members) == 0 {
		return
	}

	var lat, lng, vibe, activity float64
	for _, m := range members {
		lat += m.Location.Lat
		lng += m.Location.Lng
		vibe += meanVibe(m.Vibe)
		activity += m.ActivityScore
	}

	n := float64(len(members))
	room.Location = types.LatLng{Lat: lat / n, Lng: lng / n}
	room.VibeScore = vibe / n
	room.ActivityLevel = activity / n / 100
}

// topicUnion merges two topic sets, preserving order and dropping
// duplicates.
func topicUnion(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, topic := range a {
		if _, dup := seen[topic]; dup {
			continue
		}
		seen[topic] = struct{}{}
		out = append(out, topic)
	}
	for _, topic := range b {
		if _, dup := seen[topic]; dup {
			continue
		}
		seen[topic] = struct{}{}
		out = append(out, topic)
	}

	return out
}
