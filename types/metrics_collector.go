package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// All methods are called from internal goroutines and must be thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better
// modularity.
type MetricsCollector interface {
	ControllerMetrics
	DiscoveryMetrics
	ScoringMetrics
	StoreMetrics
}

// ControllerMetrics defines metrics for room lifecycle operations.
type ControllerMetrics interface {
	// RecordRoomStateTransition records a room state transition event.
	RecordRoomStateTransition(from, to RoomState)

	// RecordScalingEvent records a scaling transition by type
	// ("create", "split", "merge", "close") and reason.
	RecordScalingEvent(eventType EventType, reason string)

	// RecordActiveRooms sets the current active room count (gauge metric).
	RecordActiveRooms(count int)

	// RecordRoomSize observes a room's size after a membership change.
	RecordRoomSize(size int)

	// RecordNotifyFailure records a failed (and ignored) notification
	// delivery.
	RecordNotifyFailure(kind NotifyKind)
}

// DiscoveryMetrics defines metrics for radius discovery.
type DiscoveryMetrics interface {
	// RecordDiscoveryRadius observes the final discovery radius in
	// kilometers.
	RecordDiscoveryRadius(radiusKm float64)

	// RecordDiscoverySteps observes the number of expansion steps a
	// discovery took.
	RecordDiscoverySteps(steps int)

	// RecordDiscoveryDegraded records a discovery that degraded to the
	// minimum radius because the presence query failed.
	RecordDiscoveryDegraded()
}

// ScoringMetrics defines metrics for compatibility scoring.
type ScoringMetrics interface {
	// RecordMatchScore observes a user-to-user compatibility score (0-100).
	RecordMatchScore(score float64)

	// RecordRoomCompatibility observes a room-to-room compatibility score
	// (0-100) evaluated during merge candidate selection.
	RecordRoomCompatibility(score float64)
}

// StoreMetrics defines metrics for external store round-trips.
type StoreMetrics interface {
	// RecordStoreOperationDuration records store operation latency.
	//
	// Parameters:
	//   - operation: Operation type ("get_room", "put_room", "list_rooms",
	//     "query_users")
	//   - duration: Time taken in seconds
	RecordStoreOperationDuration(operation string, duration float64)

	// RecordPreconditionStale records an abandoned write due to a stale
	// room precondition.
	RecordPreconditionStale(operation string)
}
