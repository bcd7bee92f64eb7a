// Package huddle provides a Go library for geo-social conversation rooms
// with adaptive discovery radii and self-scaling room sizes.
//
// Huddle places nearby, compatible users into small ephemeral rooms. The
// discovery radius adapts to local user density, placement is gated by a
// multi-factor compatibility score, and room sizes are kept within bounds
// by a debounced split/merge state machine.
//
// # Quick Start
//
// Basic usage with the in-memory stores:
//
//	import (
//	    "github.com/vibehut/huddle"
//	    "github.com/vibehut/huddle/memstore"
//	)
//
//	rooms := memstore.NewRoomStore()
//	presence := memstore.NewPresenceStore()
//
//	ctrl, err := huddle.NewController(rooms, presence, huddle.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := ctrl.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer ctrl.Stop(context.Background())
//
//	room, err := ctrl.Join(ctx, user)
//
// # Key Features
//
//   - Adaptive Discovery Radius: Dense areas search tight circles, sparse
//     areas expand step by step up to a configurable maximum
//   - Compatibility Scoring: Interests, vibe vectors, activity, proximity
//     and conversation style blend into a symmetric 0-100 score
//   - Self-Scaling Rooms: Oversized rooms split, undersized rooms merge,
//     both behind debounce timers that absorb membership churn
//   - Pluggable Storage: In-memory stores for single-process use, NATS
//     JetStream KV stores for shared deployments
//
// # Architecture
//
// Rooms progress through a state machine:
//
//	Active → PendingSplit → Active (split executed or abandoned)
//	Active → PendingMerge → Active (merge executed or cancelled)
//	any state → Closed (emptied or absorbed by a merge)
//
// Every mutating operation on a room is serialized on that room's mutex;
// merges lock both rooms in a global order. Cross-instance races surface
// as stale-precondition aborts, never as corrupted rooms.
//
// # Advanced Usage
//
// Custom strategy and stores with options:
//
//	import (
//	    "github.com/vibehut/huddle"
//	    "github.com/vibehut/huddle/natsstore"
//	    "github.com/vibehut/huddle/strategy"
//	)
//
//	store, _ := natsstore.New(ctx, nc, natsstore.Config{
//	    PresenceTTL: 90 * time.Second,
//	})
//
//	ctrl, _ := huddle.NewController(store, store, huddle.DefaultConfig(),
//	    huddle.WithNotifier(store),
//	    huddle.WithPartitionStrategy(strategy.NewVibeAware()),
//	)
//
// See the examples/ directory for complete working examples.
package huddle
