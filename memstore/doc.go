// Package memstore provides in-memory PresenceStore, RoomStore, and
// Notifier implementations.
//
// These are complete, thread-safe implementations intended for tests,
// examples, and single-process deployments. Production deployments that
// need durability or multi-instance sharing should use the natsstore
// package instead.
package memstore
