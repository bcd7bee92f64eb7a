package huddle

import "github.com/vibehut/huddle/types"

// Re-export types from the internal types package.
//
// This file provides a stable, backward-compatible public API for the library's
// core types and interfaces. It uses type aliases to re-export definitions
// from the `types` subpackage, which contains the actual implementations.
//
// This pattern solves the "import cycle" problem by allowing internal packages
// to depend on `types` without depending on the root `huddle` package, while
// still providing a convenient `huddle.Room`, `huddle.Logger`, etc. for users.
type (
	LatLng            = types.LatLng
	UserPresence      = types.UserPresence
	VibeVector        = types.VibeVector
	ConversationStyle = types.ConversationStyle
	EnergyLevel       = types.EnergyLevel
	Room              = types.Room
	RoomState         = types.RoomState
	ScalingEvent      = types.ScalingEvent
	EventType         = types.EventType
	NotifyKind        = types.NotifyKind
)

// Re-export interfaces from the internal types package for convenience.
type (
	PresenceStore     = types.PresenceStore
	RoomStore         = types.RoomStore
	Notifier          = types.Notifier
	PartitionStrategy = types.PartitionStrategy
	MetricsCollector  = types.MetricsCollector
	Logger            = types.Logger
	Hooks             = types.Hooks
)

// Re-export RoomState constants from the internal types package.
const (
	RoomActive       = types.RoomActive
	RoomPendingSplit = types.RoomPendingSplit
	RoomPendingMerge = types.RoomPendingMerge
	RoomClosed       = types.RoomClosed
)

// Re-export event type constants from the internal types package.
const (
	EventCreate = types.EventCreate
	EventSplit  = types.EventSplit
	EventMerge  = types.EventMerge
	EventClose  = types.EventClose

	NotifySplit = types.NotifySplit
	NotifyMerge = types.NotifyMerge
)
