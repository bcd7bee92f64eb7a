package huddle

import "time"

// Option configures a Controller with optional dependencies.
type Option func(*controllerOptions)

// controllerOptions holds optional Controller configuration.
type controllerOptions struct {
	notifier  Notifier
	strategy  PartitionStrategy
	hooks     *Hooks
	metrics   MetricsCollector
	logger    Logger
	nowFunc   func() time.Time
	newRoomID func() string
}

// WithNotifier sets the notifier used for split/merge user notifications.
//
// Parameters:
//   - notifier: Notifier implementation
//
// Returns:
//   - Option: Functional option for NewController
//
// Example:
//
//	store, _ := natsstore.New(ctx, nc, natsstore.Config{})
//	ctrl, _ := huddle.NewController(store, store, cfg, huddle.WithNotifier(store))
func WithNotifier(notifier Notifier) Option {
	return func(o *controllerOptions) {
		o.notifier = notifier
	}
}

// WithPartitionStrategy sets the strategy used to divide an oversized room.
//
// Parameters:
//   - strategy: PartitionStrategy implementation
//
// Returns:
//   - Option: Functional option for NewController
//
// Example:
//
//	ctrl, _ := huddle.NewController(rooms, presence, cfg,
//	    huddle.WithPartitionStrategy(strategy.NewVibeAware()))
func WithPartitionStrategy(strategy PartitionStrategy) Option {
	return func(o *controllerOptions) {
		o.strategy = strategy
	}
}

// WithHooks sets lifecycle event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for NewController
//
// Example:
//
//	hooks := &huddle.Hooks{
//	    OnScalingEvent: func(ctx context.Context, ev huddle.ScalingEvent) error {
//	        return publishToAnalytics(ev)
//	    },
//	}
//	ctrl, _ := huddle.NewController(rooms, presence, cfg, huddle.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *controllerOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewController
//
// Example:
//
//	collector := metrics.NewPrometheus(prometheus.DefaultRegisterer, "huddle")
//	ctrl, _ := huddle.NewController(rooms, presence, cfg, huddle.WithMetrics(collector))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *controllerOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation
//
// Returns:
//   - Option: Functional option for NewController
//
// Example:
//
//	logger := logging.NewSlogDefault()
//	ctrl, _ := huddle.NewController(rooms, presence, cfg, huddle.WithLogger(logger))
func WithLogger(logger Logger) Option {
	return func(o *controllerOptions) {
		o.logger = logger
	}
}

// WithNowFunc overrides the controller's clock. Intended for tests that
// need deterministic timestamps and heartbeat-age checks.
//
// Parameters:
//   - now: Replacement for time.Now
//
// Returns:
//   - Option: Functional option for NewController
func WithNowFunc(now func() time.Time) Option {
	return func(o *controllerOptions) {
		o.nowFunc = now
	}
}

// WithRoomIDFunc overrides room ID generation. Intended for tests that
// need predictable room IDs.
//
// Parameters:
//   - newID: Generator returning a unique room ID per call
//
// Returns:
//   - Option: Functional option for NewController
func WithRoomIDFunc(newID func() string) Option {
	return func(o *controllerOptions) {
		o.newRoomID = newID
	}
}
