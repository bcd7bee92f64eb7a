// Package natsstore provides NATS JetStream-backed PresenceStore,
// RoomStore, and Notifier implementations.
//
// Presence snapshots and rooms live in two KV buckets. The presence bucket
// is created with a TTL equal to the heartbeat threshold so stale records
// expire server-side; the room bucket relies on JetStream revision checks
// to implement the optimistic-concurrency contract of types.RoomStore.
// Notifications are published as plain NATS messages on
// <prefix>.<kind>.<userID>.
package natsstore
