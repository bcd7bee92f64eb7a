// Package metrics provides MetricsCollector implementations.
package metrics

import "github.com/vibehut/huddle/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external metrics
// collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// ControllerMetrics implementation

// RecordRoomStateTransition discards the room state transition metric.
func (n *NopMetrics) RecordRoomStateTransition(_ /* from */, _ /* to */ types.RoomState) {
	// No-op
}

// RecordScalingEvent discards the scaling event metric.
func (n *NopMetrics) RecordScalingEvent(_ /* eventType */ types.EventType, _ /* reason */ string) {
	// No-op
}

// RecordActiveRooms discards the active room count metric.
func (n *NopMetrics) RecordActiveRooms(_ /* count */ int) {
	// No-op
}

// RecordRoomSize discards the room size metric.
func (n *NopMetrics) RecordRoomSize(_ /* size */ int) {
	// No-op
}

// RecordNotifyFailure discards the notification failure metric.
func (n *NopMetrics) RecordNotifyFailure(_ /* kind */ types.NotifyKind) {
	// No-op
}

// DiscoveryMetrics implementation

// RecordDiscoveryRadius discards the discovery radius metric.
func (n *NopMetrics) RecordDiscoveryRadius(_ /* radiusKm */ float64) {
	// No-op
}

// RecordDiscoverySteps discards the discovery step count metric.
func (n *NopMetrics) RecordDiscoverySteps(_ /* steps */ int) {
	// No-op
}

// RecordDiscoveryDegraded discards the degraded discovery metric.
func (n *NopMetrics) RecordDiscoveryDegraded() {
	// No-op
}

// ScoringMetrics implementation

// RecordMatchScore discards the match score metric.
func (n *NopMetrics) RecordMatchScore(_ /* score */ float64) {
	// No-op
}

// RecordRoomCompatibility discards the room compatibility metric.
func (n *NopMetrics) RecordRoomCompatibility(_ /* score */ float64) {
	// No-op
}

// StoreMetrics implementation

// RecordStoreOperationDuration discards the store operation latency metric.
func (n *NopMetrics) RecordStoreOperationDuration(_ /* operation */ string, _ /* duration */ float64) {
	// No-op
}

// RecordPreconditionStale discards the stale precondition metric.
func (n *NopMetrics) RecordPreconditionStale(_ /* operation */ string) {
	// No-op
}
