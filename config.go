package huddle

import (
	"fmt"
	"time"
)

// DiscoveryConfig controls the adaptive radius search for nearby users and
// rooms.
type DiscoveryConfig struct {
	// MinRadiusKm is the floor of the discovery radius in kilometers.
	// The radius never shrinks below this, no matter how dense the area.
	MinRadiusKm float64 `yaml:"minRadiusKm"`

	// MaxRadiusKm is the ceiling of the discovery radius in kilometers.
	// The radius never grows beyond this, no matter how sparse the area.
	MaxRadiusKm float64 `yaml:"maxRadiusKm"`

	// DampingFactor controls how aggressively the radius shrinks as active
	// user density rises. Higher values shrink faster.
	// Recommended: 0.1-0.2.
	DampingFactor float64 `yaml:"dampingFactor"`

	// ExpansionStepKm is the radius increment used when a discovery pass
	// widens its search. Smaller steps give finer radius resolution at the
	// cost of more store queries.
	ExpansionStepKm float64 `yaml:"expansionStepKm"`

	// HeartbeatThreshold is the maximum heartbeat age before a user is
	// considered inactive and excluded from discovery.
	// Recommended: 90 seconds.
	HeartbeatThreshold time.Duration `yaml:"heartbeatThreshold"`

	// LocationClusterRadiusKm bounds the room search around a joining user.
	// Only rooms whose centroid is within this distance are join candidates.
	LocationClusterRadiusKm float64 `yaml:"locationClusterRadiusKm"`
}

// ScoringConfig controls compatibility scoring thresholds.
type ScoringConfig struct {
	// MinScoreForJoin is the minimum average member compatibility (0-100)
	// required to place a user into an existing room. Users below the
	// threshold for every candidate get a fresh room instead.
	MinScoreForJoin float64 `yaml:"minScoreForJoin"`

	// MinVibeForMerge is the minimum room-to-room compatibility (0-100)
	// required to merge two rooms.
	MinVibeForMerge float64 `yaml:"minVibeForMerge"`

	// ProximityMaxKm is the distance at which the proximity factor of the
	// match score bottoms out at zero.
	ProximityMaxKm float64 `yaml:"proximityMaxKm"`
}

// ScalingConfig controls room size bounds and split/merge timing.
//
// Size bounds form a hierarchy:
//
//	MinSize <= OptimalSize <= MaxSize < CriticalSize
//
// Rooms between MinSize and MaxSize are left alone. Crossing MaxSize arms
// a debounced split; crossing CriticalSize splits immediately in the same
// call. Dropping below MinSize arms a debounced merge.
type ScalingConfig struct {
	// OptimalSize is the target room size splits aim for.
	OptimalSize int `yaml:"optimalSize"`

	// MinSize is the size below which a room becomes a merge candidate.
	MinSize int `yaml:"minSize"`

	// MaxSize is the size above which a room becomes a split candidate.
	MaxSize int `yaml:"maxSize"`

	// CriticalSize is the size at which a split executes immediately,
	// bypassing the debounce delay.
	CriticalSize int `yaml:"criticalSize"`

	// SplitDelay is the debounce window between an oversize detection and
	// the split executing. Membership churn within the window re-arms it.
	// Recommended: 30 seconds.
	SplitDelay time.Duration `yaml:"splitDelay"`

	// MergeDelay is the debounce window between an undersize detection and
	// the merge executing. Longer than SplitDelay so that rooms briefly
	// dipping below minimum are not merged away (hysteresis).
	// Recommended: 60 seconds.
	MergeDelay time.Duration `yaml:"mergeDelay"`

	// SweepInterval is how often the background sweep re-examines rooms
	// whose timers were lost (e.g. after a restart) and refreshes gauges.
	SweepInterval time.Duration `yaml:"sweepInterval"`

	// MaxTopics caps a room's topic set. Merges union both topic sets and
	// truncate to this limit.
	MaxTopics int `yaml:"maxTopics"`
}

// Config is the configuration for the Controller.
//
// All duration fields accept standard Go duration strings like "30s", "5m".
type Config struct {
	// Discovery controls the adaptive radius search.
	Discovery DiscoveryConfig `yaml:"discovery"`

	// Scoring controls compatibility thresholds.
	Scoring ScoringConfig `yaml:"scoring"`

	// Scaling controls room size bounds and split/merge timing.
	Scaling ScalingConfig `yaml:"scaling"`

	// OperationTimeout bounds individual store round-trips.
	// Recommended: 10 seconds.
	OperationTimeout time.Duration `yaml:"operationTimeout"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown,
	// including in-flight scaling transitions.
	// Recommended: 10 seconds.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`

	// EventLogCapacity is the number of scaling events retained in memory.
	EventLogCapacity int `yaml:"eventLogCapacity"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		Discovery: DiscoveryConfig{
			MinRadiusKm:             5,
			MaxRadiusKm:             100,
			DampingFactor:           0.15,
			ExpansionStepKm:         5,
			HeartbeatThreshold:      90 * time.Second,
			LocationClusterRadiusKm: 15,
		},
		Scoring: ScoringConfig{
			MinScoreForJoin: 40,
			MinVibeForMerge: 40,
			ProximityMaxKm:  10,
		},
		Scaling: ScalingConfig{
			OptimalSize:   4,
			MinSize:       2,
			MaxSize:       6,
			CriticalSize:  8,
			SplitDelay:    30 * time.Second,
			MergeDelay:    60 * time.Second,
			SweepInterval: 15 * time.Second,
			MaxTopics:     5,
		},
		OperationTimeout: 10 * time.Second,
		ShutdownTimeout:  10 * time.Second,
		EventLogCapacity: 1024,
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Discovery.MinRadiusKm == 0 {
		cfg.Discovery.MinRadiusKm = defaults.Discovery.MinRadiusKm
	}
	if cfg.Discovery.MaxRadiusKm == 0 {
		cfg.Discovery.MaxRadiusKm = defaults.Discovery.MaxRadiusKm
	}
	if cfg.Discovery.DampingFactor == 0 {
		cfg.Discovery.DampingFactor = defaults.Discovery.DampingFactor
	}
	if cfg.Discovery.ExpansionStepKm == 0 {
		cfg.Discovery.ExpansionStepKm = defaults.Discovery.ExpansionStepKm
	}
	if cfg.Discovery.HeartbeatThreshold == 0 {
		cfg.Discovery.HeartbeatThreshold = defaults.Discovery.HeartbeatThreshold
	}
	if cfg.Discovery.LocationClusterRadiusKm == 0 {
		cfg.Discovery.LocationClusterRadiusKm = defaults.Discovery.LocationClusterRadiusKm
	}
	if cfg.Scoring.MinScoreForJoin == 0 {
		cfg.Scoring.MinScoreForJoin = defaults.Scoring.MinScoreForJoin
	}
	if cfg.Scoring.MinVibeForMerge == 0 {
		cfg.Scoring.MinVibeForMerge = defaults.Scoring.MinVibeForMerge
	}
	if cfg.Scoring.ProximityMaxKm == 0 {
		cfg.Scoring.ProximityMaxKm = defaults.Scoring.ProximityMaxKm
	}
	if cfg.Scaling.OptimalSize == 0 {
		cfg.Scaling.OptimalSize = defaults.Scaling.OptimalSize
	}
	if cfg.Scaling.MinSize == 0 {
		cfg.Scaling.MinSize = defaults.Scaling.MinSize
	}
	if cfg.Scaling.MaxSize == 0 {
		cfg.Scaling.MaxSize = defaults.Scaling.MaxSize
	}
	if cfg.Scaling.CriticalSize == 0 {
		cfg.Scaling.CriticalSize = defaults.Scaling.CriticalSize
	}
	if cfg.Scaling.SplitDelay == 0 {
		cfg.Scaling.SplitDelay = defaults.Scaling.SplitDelay
	}
	if cfg.Scaling.MergeDelay == 0 {
		cfg.Scaling.MergeDelay = defaults.Scaling.MergeDelay
	}
	if cfg.Scaling.SweepInterval == 0 {
		cfg.Scaling.SweepInterval = defaults.Scaling.SweepInterval
	}
	if cfg.Scaling.MaxTopics == 0 {
		cfg.Scaling.MaxTopics = defaults.Scaling.MaxTopics
	}
	if cfg.OperationTimeout == 0 {
		cfg.OperationTimeout = defaults.OperationTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if cfg.EventLogCapacity == 0 {
		cfg.EventLogCapacity = defaults.EventLogCapacity
	}
}

// Validate checks configuration constraints and returns error for invalid values.
//
// Hard Validation Rules:
//   - 0 < MinRadiusKm <= MaxRadiusKm (radius bounds ordered)
//   - DampingFactor > 0 (radius must respond to density)
//   - ExpansionStepKm > 0 (expansion must make progress)
//   - 0 < MinSize <= OptimalSize <= MaxSize < CriticalSize (size hierarchy)
//   - SplitDelay > 0, MergeDelay > 0 (debounce required)
//   - MergeDelay >= SplitDelay (merge hysteresis)
//   - HeartbeatThreshold > 0 (freshness filter required)
//   - MinScoreForJoin and MinVibeForMerge within [0, 100]
//
// Returns:
//   - error: Validation error with clear explanation, nil if valid
func (cfg *Config) Validate() error {
	// Rule 1: radius bounds
	if cfg.Discovery.MinRadiusKm <= 0 {
		return fmt.Errorf("%w: MinRadiusKm must be > 0, got %v", ErrInvalidConfig, cfg.Discovery.MinRadiusKm)
	}
	if cfg.Discovery.MaxRadiusKm < cfg.Discovery.MinRadiusKm {
		return fmt.Errorf(
			"%w: MaxRadiusKm (%v) must be >= MinRadiusKm (%v)",
			ErrInvalidConfig, cfg.Discovery.MaxRadiusKm, cfg.Discovery.MinRadiusKm,
		)
	}

	// Rule 2: radius dynamics
	if cfg.Discovery.DampingFactor <= 0 {
		return fmt.Errorf("%w: DampingFactor must be > 0, got %v", ErrInvalidConfig, cfg.Discovery.DampingFactor)
	}
	if cfg.Discovery.ExpansionStepKm <= 0 {
		return fmt.Errorf("%w: ExpansionStepKm must be > 0, got %v", ErrInvalidConfig, cfg.Discovery.ExpansionStepKm)
	}

	// Rule 3: size hierarchy
	if cfg.Scaling.MinSize <= 0 {
		return fmt.Errorf("%w: MinSize must be > 0, got %d", ErrInvalidConfig, cfg.Scaling.MinSize)
	}
	if cfg.Scaling.OptimalSize < cfg.Scaling.MinSize {
		return fmt.Errorf(
			"%w: OptimalSize (%d) must be >= MinSize (%d)",
			ErrInvalidConfig, cfg.Scaling.OptimalSize, cfg.Scaling.MinSize,
		)
	}
	if cfg.Scaling.MaxSize < cfg.Scaling.OptimalSize {
		return fmt.Errorf(
			"%w: MaxSize (%d) must be >= OptimalSize (%d)",
			ErrInvalidConfig, cfg.Scaling.MaxSize, cfg.Scaling.OptimalSize,
		)
	}
	if cfg.Scaling.CriticalSize <= cfg.Scaling.MaxSize {
		return fmt.Errorf(
			"%w: CriticalSize (%d) must be > MaxSize (%d)",
			ErrInvalidConfig, cfg.Scaling.CriticalSize, cfg.Scaling.MaxSize,
		)
	}

	// Rule 4: debounce timing
	if cfg.Scaling.SplitDelay <= 0 {
		return fmt.Errorf("%w: SplitDelay must be > 0, got %v", ErrInvalidConfig, cfg.Scaling.SplitDelay)
	}
	if cfg.Scaling.MergeDelay <= 0 {
		return fmt.Errorf("%w: MergeDelay must be > 0, got %v", ErrInvalidConfig, cfg.Scaling.MergeDelay)
	}
	if cfg.Scaling.MergeDelay < cfg.Scaling.SplitDelay {
		return fmt.Errorf(
			"%w: MergeDelay (%v) must be >= SplitDelay (%v) for merge hysteresis",
			ErrInvalidConfig, cfg.Scaling.MergeDelay, cfg.Scaling.SplitDelay,
		)
	}

	// Rule 5: freshness
	if cfg.Discovery.HeartbeatThreshold <= 0 {
		return fmt.Errorf(
			"%w: HeartbeatThreshold must be > 0, got %v",
			ErrInvalidConfig, cfg.Discovery.HeartbeatThreshold,
		)
	}

	// Rule 6: score thresholds
	if cfg.Scoring.MinScoreForJoin < 0 || cfg.Scoring.MinScoreForJoin > 100 {
		return fmt.Errorf(
			"%w: MinScoreForJoin must be in [0, 100], got %v",
			ErrInvalidConfig, cfg.Scoring.MinScoreForJoin,
		)
	}
	if cfg.Scoring.MinVibeForMerge < 0 || cfg.Scoring.MinVibeForMerge > 100 {
		return fmt.Errorf(
			"%w: MinVibeForMerge must be in [0, 100], got %v",
			ErrInvalidConfig, cfg.Scoring.MinVibeForMerge,
		)
	}

	return nil
}

// ValidateWithWarnings checks configuration and logs warnings for non-recommended values.
//
// This is called after Validate() in NewController() to provide operator guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	// Warn if the debounce windows are short enough to cause churn.
	if cfg.Scaling.SplitDelay < 5*time.Second {
		logger.Warn(
			"SplitDelay is very short, rooms may split on transient join bursts",
			"splitDelay", cfg.Scaling.SplitDelay,
			"recommended", "30s or higher",
		)
	}
	if cfg.Scaling.MergeDelay < 2*cfg.Scaling.SplitDelay {
		logger.Warn(
			"MergeDelay is below recommended hysteresis",
			"mergeDelay", cfg.Scaling.MergeDelay,
			"splitDelay", cfg.Scaling.SplitDelay,
			"recommended", 2*cfg.Scaling.SplitDelay,
		)
	}

	// Warn if the sweep would run so rarely that lost timers linger.
	if cfg.Scaling.SweepInterval > cfg.Scaling.MergeDelay {
		logger.Warn(
			"SweepInterval exceeds MergeDelay, lost timers recover slowly",
			"sweepInterval", cfg.Scaling.SweepInterval,
			"mergeDelay", cfg.Scaling.MergeDelay,
		)
	}
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Test timings are 10-100x faster than production defaults to enable
// rapid iteration without sacrificing test coverage. Use DefaultConfig()
// for production deployments.
//
// Returns:
//   - Config: Configuration with fast timings for tests
//
// Example:
//
//	cfg := huddle.TestConfig()
//	cfg.Scoring.MinScoreForJoin = 0
//	ctrl, err := huddle.NewController(rooms, presence, cfg)
func TestConfig() Config {
	cfg := DefaultConfig()

	// Fast timings for test execution (10-100x faster)
	cfg.Scaling.SplitDelay = 50 * time.Millisecond   // 600x faster
	cfg.Scaling.MergeDelay = 100 * time.Millisecond  // 600x faster
	cfg.Scaling.SweepInterval = 1 * time.Second      // 15x faster
	cfg.Discovery.HeartbeatThreshold = 5 * time.Second
	cfg.OperationTimeout = 2 * time.Second
	cfg.ShutdownTimeout = 2 * time.Second

	return cfg
}
