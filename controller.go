package huddle

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/vibehut/huddle/internal/eventlog"
	"github.com/vibehut/huddle/internal/hooks"
	"github.com/vibehut/huddle/internal/locks"
	"github.com/vibehut/huddle/internal/logging"
	"github.com/vibehut/huddle/internal/metrics"
	"github.com/vibehut/huddle/internal/timers"
	"github.com/vibehut/huddle/match"
	"github.com/vibehut/huddle/radius"
	"github.com/vibehut/huddle/strategy"
	"github.com/vibehut/huddle/types"
)

// Timer kinds armed on the debounce wheel.
const (
	timerSplit = "split"
	timerMerge = "merge"
)

// Controller places users into rooms and keeps room sizes within bounds.
//
// It owns three cooperating pieces:
//   - the radius calculator, which adapts the discovery radius to local
//     user density
//   - the match scorer, which gates placement into existing rooms
//   - the scaling state machine, which splits oversized rooms and merges
//     undersized ones behind debounce timers
//
// All mutating operations on a room are serialized on that room's mutex;
// merges lock both rooms in lexicographic ID order. Cross-instance races
// are caught by the room store's revision checks and surface as abandoned
// operations, never as corrupted rooms.
type Controller struct {
	cfg      Config
	rooms    RoomStore
	presence PresenceStore
	notifier Notifier
	strategy PartitionStrategy
	hooks    Hooks
	metrics  MetricsCollector
	logger   Logger

	calc   *radius.Calculator
	scorer *match.Scorer

	events *eventlog.Log
	wheel  *timers.Wheel
	locks  *locks.Registry

	// members maps user ID to active room ID. Join enforces the
	// one-room-per-user invariant against it even when the user's old room
	// is far outside the local clustering radius. The sweep rebuilds it
	// from the store after a restart.
	members *xsync.Map[string, string]

	now       func() time.Time
	newRoomID func() string

	started  atomic.Bool
	stopCh   chan struct{}
	baseCtx  context.Context
	cancel   context.CancelFunc
	sweepWG  sync.WaitGroup
	notifyWG sync.WaitGroup
	hookWG   sync.WaitGroup
}

// NewController creates a Controller.
//
// Parameters:
//   - rooms: Room persistence (required)
//   - presence: Presence lookups (required)
//   - cfg: Configuration; zero fields are filled with defaults
//   - opts: Optional dependencies (notifier, strategy, hooks, metrics, logger)
//
// Returns:
//   - *Controller: Initialized controller (call Start before use)
//   - error: ErrRoomStoreRequired, ErrPresenceStoreRequired, or a
//     configuration validation error wrapping ErrInvalidConfig
//
// Example:
//
//	rooms := memstore.NewRoomStore()
//	presence := memstore.NewPresenceStore()
//	ctrl, err := huddle.NewController(rooms, presence, huddle.DefaultConfig(),
//	    huddle.WithNotifier(memstore.NewNotifier()),
//	)
func NewController(rooms RoomStore, presence PresenceStore, cfg Config, opts ...Option) (*Controller, error) {
	if rooms == nil {
		return nil, ErrRoomStoreRequired
	}
	if presence == nil {
		return nil, ErrPresenceStoreRequired
	}

	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := controllerOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	c := &Controller{
		cfg:       cfg,
		rooms:     rooms,
		presence:  presence,
		notifier:  options.notifier,
		strategy:  options.strategy,
		metrics:   options.metrics,
		logger:    options.logger,
		now:       options.nowFunc,
		newRoomID: options.newRoomID,
		events:    eventlog.New(cfg.EventLogCapacity),
		wheel:     timers.New(),
		locks:     locks.New(),
		members:   xsync.NewMap[string, string](),
		stopCh:    make(chan struct{}),
	}

	if c.strategy == nil {
		c.strategy = strategy.NewVibeAware()
	}
	if c.metrics == nil {
		c.metrics = metrics.NewNop()
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	if options.hooks != nil {
		c.hooks = *options.hooks
	} else {
		c.hooks = hooks.NewNop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newRoomID == nil {
		c.newRoomID = uuid.NewString
	}

	c.calc = radius.New(radius.Config{
		MinRadiusKm:        cfg.Discovery.MinRadiusKm,
		MaxRadiusKm:        cfg.Discovery.MaxRadiusKm,
		DampingFactor:      cfg.Discovery.DampingFactor,
		ExpansionStepKm:    cfg.Discovery.ExpansionStepKm,
		HeartbeatThreshold: cfg.Discovery.HeartbeatThreshold,
	})
	c.scorer = match.NewScorer(match.DefaultWeights(), cfg.Scoring.ProximityMaxKm)

	cfg.ValidateWithWarnings(c.logger)

	return c, nil
}

// Start launches the background sweep loop.
//
// Parameters:
//   - ctx: Lifecycle context; hooks and notifications inherit from it
//
// Returns:
//   - error: ErrAlreadyStarted if the controller is running
func (c *Controller) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	c.baseCtx, c.cancel = context.WithCancel(context.WithoutCancel(ctx))

	c.sweepWG.Add(1)
	go c.sweepLoop()

	c.logger.Info("controller started",
		"minSize", c.cfg.Scaling.MinSize,
		"maxSize", c.cfg.Scaling.MaxSize,
		"criticalSize", c.cfg.Scaling.CriticalSize,
	)

	return nil
}

// Stop shuts the controller down.
//
// Pending debounce timers are cancelled (their conditions re-arm via the
// sweep after a restart), and in-flight notifications are given until the
// shutdown timeout to drain.
//
// Parameters:
//   - ctx: Context bounding the shutdown wait
//
// Returns:
//   - error: ErrNotStarted if the controller is not running, or the
//     context error if shutdown exceeded its deadline
func (c *Controller) Stop(ctx context.Context) error {
	if !c.started.CompareAndSwap(true, false) {
		return ErrNotStarted
	}

	close(c.stopCh)
	c.wheel.Stop()
	c.sweepWG.Wait()

	done := make(chan struct{})
	go func() {
		c.notifyWG.Wait()
		c.hookWG.Wait()
		close(done)
	}()

	timeout := time.NewTimer(c.cfg.ShutdownTimeout)
	defer timeout.Stop()

	var err error
	select {
	case <-done:
	case <-timeout.C:
		c.logger.Warn("shutdown timed out waiting for notifications and hooks")
	case <-ctx.Done():
		err = ctx.Err()
	}

	c.cancel()
	c.logger.Info("controller stopped")

	return err
}

// GetRoom fetches a room by ID.
//
// Returns:
//   - *Room: A private copy of the room
//   - error: ErrRoomNotFound when absent
func (c *Controller) GetRoom(ctx context.Context, id string) (*Room, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	return c.rooms.GetRoom(ctx, id)
}

// Events returns the retained scaling events, oldest first.
func (c *Controller) Events() []ScalingEvent {
	return c.events.Snapshot()
}

// RoomCount returns the number of non-closed rooms in the store.
//
// Returns:
//   - int: Active room count
//   - error: Store failure
func (c *Controller) RoomCount(ctx context.Context) (int, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	rooms, err := c.rooms.ListActiveRoomsNear(ctx, types.LatLng{}, earthAntipodeKm)
	if err != nil {
		return 0, wrapOp("room count", err)
	}

	return len(rooms), nil
}

// MatchScore computes the compatibility between two users with the
// controller's configured scorer.
//
// Returns:
//   - match.Result: Score in [0, 100] plus per-factor breakdown
func (c *Controller) MatchScore(a, b UserPresence) match.Result {
	result := c.scorer.Score(a, b)
	c.metrics.RecordMatchScore(result.Score)

	return result
}

// DiscoverRadius runs a discovery pass around the user without placing
// them into a room.
//
// Returns:
//   - radius.Discovery: Final radius, candidate snapshots and diagnostics
func (c *Controller) DiscoverRadius(ctx context.Context, user UserPresence) radius.Discovery {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	disc := c.calc.Discover(ctx, c.presence, user.Location, user.Interests)
	c.recordDiscovery(disc)

	return disc
}

// sweepLoop periodically re-evaluates rooms near recent activity.
//
// Debounce timers live in memory, so a restart loses them; the sweep
// re-arms any room stuck outside its size bounds and refreshes the active
// room gauge.
func (c *Controller) sweepLoop() {
	defer c.sweepWG.Done()

	ticker := time.NewTicker(c.cfg.Scaling.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

// sweep re-arms lost timers and refreshes gauges.
func (c *Controller) sweep() {
	ctx, cancel := context.WithTimeout(c.baseCtx, c.cfg.OperationTimeout)
	defer cancel()

	// A whole-world query; room counts are modest and both store
	// implementations scan anyway.
	rooms, err := c.rooms.ListActiveRoomsNear(ctx, types.LatLng{}, earthAntipodeKm)
	if err != nil {
		c.logger.Warn("sweep failed to list rooms", "error", err)
		return
	}

	c.metrics.RecordActiveRooms(len(rooms))

	for i := range rooms {
		room := rooms[i]

		// Keep the membership index warm; a restart starts it empty.
		for _, id := range room.Participants {
			c.members.Store(id, room.ID)
		}

		if _, pending := c.wheel.Pending(room.ID); pending {
			continue
		}

		switch {
		case room.Size() > c.cfg.Scaling.MaxSize:
			c.scheduleSplit(room.ID)
		case room.Size() < c.cfg.Scaling.MinSize && room.Size() > 0:
			c.scheduleMerge(room.ID)
		case room.State == RoomPendingSplit || room.State == RoomPendingMerge:
			// Timer lost and the condition cleared; settle the state.
			c.settleRoom(room.ID)
		}
	}
}

// earthAntipodeKm comfortably exceeds the farthest great-circle distance,
// so a query at this radius matches every room.
const earthAntipodeKm = 25000

// opCtx bounds a store round-trip with the configured operation timeout.
func (c *Controller) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithTimeout(ctx, c.cfg.OperationTimeout)
}

// recordDiscovery pushes discovery diagnostics to metrics.
func (c *Controller) recordDiscovery(disc radius.Discovery) {
	c.metrics.RecordDiscoveryRadius(disc.RadiusKm)
	c.metrics.RecordDiscoverySteps(disc.Steps)
	if disc.Degraded {
		c.metrics.RecordDiscoveryDegraded()
	}
}

// recordEvent appends an audit event and fans it out to metrics and hooks.
func (c *Controller) recordEvent(ev ScalingEvent) {
	c.events.Append(ev)
	c.metrics.RecordScalingEvent(ev.Type, ev.Reason)
	c.runHook(func(ctx context.Context) error {
		if c.hooks.OnScalingEvent == nil {
			return nil
		}

		return c.hooks.OnScalingEvent(ctx, ev)
	})
}

// recordTransition records a state transition on metrics and hooks.
func (c *Controller) recordTransition(roomID string, from, to RoomState) {
	if from == to {
		return
	}

	c.metrics.RecordRoomStateTransition(from, to)
	c.runHook(func(ctx context.Context) error {
		if c.hooks.OnRoomStateChanged == nil {
			return nil
		}

		return c.hooks.OnRoomStateChanged(ctx, roomID, from, to)
	})
}

// runHook executes a hook callback asynchronously. Hook errors are logged
// and reported to OnError but never fail the triggering operation.
func (c *Controller) runHook(fn func(ctx context.Context) error) {
	c.hookWG.Add(1)
	go func() {
		defer c.hookWG.Done()

		ctx := c.hookCtx()
		if err := fn(ctx); err != nil {
			c.logger.Warn("hook returned error", "error", err)
			if c.hooks.OnError != nil {
				if hookErr := c.hooks.OnError(ctx, err); hookErr != nil {
					c.logger.Warn("OnError hook returned error", "error", hookErr)
				}
			}
		}
	}()
}

// hookCtx returns the lifecycle context for hooks and notifications.
//
// Falls back to Background for controllers that were never started (unit
// tests driving operations directly).
func (c *Controller) hookCtx() context.Context {
	if c.baseCtx != nil {
		return c.baseCtx
	}

	return context.Background()
}

// notify delivers a notification asynchronously, fire-and-forget.
func (c *Controller) notify(userIDs []string, kind NotifyKind, payload []byte) {
	if c.notifier == nil || len(userIDs) == 0 {
		return
	}

	ids := make([]string, len(userIDs))
	copy(ids, userIDs)

	c.notifyWG.Add(1)
	go func() {
		defer c.notifyWG.Done()

		ctx := c.hookCtx()
		for _, id := range ids {
			if err := c.notifier.Notify(ctx, id, kind, payload); err != nil {
				c.metrics.RecordNotifyFailure(kind)
				c.logger.Warn("notification delivery failed",
					"user", id, "kind", string(kind), "error", err)
			}
		}
	}()
}

// forgetMembership drops the user's index entry, but only while it still
// points at the given room; a concurrent re-join elsewhere wins.
func (c *Controller) forgetMembership(userID, roomID string) {
	c.members.Compute(userID, func(cur string, loaded bool) (string, xsync.ComputeOp) {
		if loaded && cur == roomID {
			return "", xsync.DeleteOp
		}

		return cur, xsync.CancelOp
	})
}

// requireStarted gates public operations on lifecycle state.
func (c *Controller) requireStarted() error {
	if !c.started.Load() {
		return ErrNotStarted
	}

	return nil
}

// storeTimer wraps a store call with latency metrics.
func (c *Controller) storeTimer(op string) func() {
	start := time.Now()

	return func() {
		c.metrics.RecordStoreOperationDuration(op, time.Since(start).Seconds())
	}
}

// staleAbandon logs and counts an operation abandoned on a stale
// precondition.
func (c *Controller) staleAbandon(op, roomID string, err error) {
	c.metrics.RecordPreconditionStale(op)
	c.logger.Debug("operation abandoned on stale precondition",
		"op", op, "room", roomID, "error", err)
}

// wrapOp adds operation context to an error.
func wrapOp(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
