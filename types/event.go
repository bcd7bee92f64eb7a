package types

import "time"

// EventType classifies a scaling event.
type EventType string

// Scaling event types.
const (
	EventCreate EventType = "create"
	EventSplit  EventType = "split"
	EventMerge  EventType = "merge"
	EventClose  EventType = "close"
)

// NotifyKind classifies a user notification emitted by a scaling
// transition.
type NotifyKind string

// Notification kinds.
const (
	NotifySplit NotifyKind = "split"
	NotifyMerge NotifyKind = "merge"
)

// ScalingEvent is an immutable audit record of a room scaling transition.
//
// Events are append-only with monotonically non-decreasing timestamps; a
// bounded in-memory ring buffer is sufficient retention.
type ScalingEvent struct {
	// Type is the transition kind.
	Type EventType `json:"type"`

	// Timestamp is when the transition was recorded.
	Timestamp time.Time `json:"timestamp"`

	// SourceRoomIDs are the rooms the transition read from.
	SourceRoomIDs []string `json:"sourceRoomIds"`

	// ResultRoomIDs are the rooms the transition produced or mutated.
	ResultRoomIDs []string `json:"resultRoomIds"`

	// Reason is a short human-readable cause ("critical_size",
	// "below_min_size", "no_candidate", ...).
	Reason string `json:"reason"`

	// AffectedUserIDs are the users whose membership changed.
	AffectedUserIDs []string `json:"affectedUserIds"`
}
