package huddle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, 5.0, cfg.Discovery.MinRadiusKm)
	require.Equal(t, 100.0, cfg.Discovery.MaxRadiusKm)
	require.Equal(t, 0.15, cfg.Discovery.DampingFactor)
	require.Equal(t, 5.0, cfg.Discovery.ExpansionStepKm)
	require.Equal(t, 90*time.Second, cfg.Discovery.HeartbeatThreshold)
	require.Equal(t, 15.0, cfg.Discovery.LocationClusterRadiusKm)
	require.Equal(t, 40.0, cfg.Scoring.MinScoreForJoin)
	require.Equal(t, 40.0, cfg.Scoring.MinVibeForMerge)
	require.Equal(t, 10.0, cfg.Scoring.ProximityMaxKm)
	require.Equal(t, 4, cfg.Scaling.OptimalSize)
	require.Equal(t, 2, cfg.Scaling.MinSize)
	require.Equal(t, 6, cfg.Scaling.MaxSize)
	require.Equal(t, 8, cfg.Scaling.CriticalSize)
	require.Equal(t, 30*time.Second, cfg.Scaling.SplitDelay)
	require.Equal(t, 60*time.Second, cfg.Scaling.MergeDelay)
	require.Equal(t, 15*time.Second, cfg.Scaling.SweepInterval)
	require.Equal(t, 5, cfg.Scaling.MaxTopics)
	require.Equal(t, 10*time.Second, cfg.OperationTimeout)
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	require.Equal(t, 1024, cfg.EventLogCapacity)

	require.NoError(t, cfg.Validate())
}

func TestSetDefaults(t *testing.T) {
	t.Run("applies defaults to empty config", func(t *testing.T) {
		cfg := Config{}
		SetDefaults(&cfg)

		require.Equal(t, 5.0, cfg.Discovery.MinRadiusKm)
		require.Equal(t, 100.0, cfg.Discovery.MaxRadiusKm)
		require.Equal(t, 6, cfg.Scaling.MaxSize)
		require.Equal(t, 8, cfg.Scaling.CriticalSize)
		require.Equal(t, 60*time.Second, cfg.Scaling.MergeDelay)
		require.NoError(t, cfg.Validate())
	})

	t.Run("preserves custom values", func(t *testing.T) {
		cfg := Config{
			Discovery: DiscoveryConfig{
				MinRadiusKm:     2,
				MaxRadiusKm:     50,
				DampingFactor:   0.3,
				ExpansionStepKm: 1,
			},
			Scaling: ScalingConfig{
				OptimalSize:  6,
				MinSize:      3,
				MaxSize:      10,
				CriticalSize: 14,
				SplitDelay:   10 * time.Second,
				MergeDelay:   20 * time.Second,
			},
			OperationTimeout: 20 * time.Second,
		}
		SetDefaults(&cfg)

		require.Equal(t, 2.0, cfg.Discovery.MinRadiusKm)
		require.Equal(t, 50.0, cfg.Discovery.MaxRadiusKm)
		require.Equal(t, 0.3, cfg.Discovery.DampingFactor)
		require.Equal(t, 1.0, cfg.Discovery.ExpansionStepKm)
		require.Equal(t, 3, cfg.Scaling.MinSize)
		require.Equal(t, 10, cfg.Scaling.MaxSize)
		require.Equal(t, 14, cfg.Scaling.CriticalSize)
		require.Equal(t, 10*time.Second, cfg.Scaling.SplitDelay)
		require.Equal(t, 20*time.Second, cfg.Scaling.MergeDelay)
		require.Equal(t, 20*time.Second, cfg.OperationTimeout)

		// Untouched fields still get defaults.
		require.Equal(t, 90*time.Second, cfg.Discovery.HeartbeatThreshold)
		require.Equal(t, 5, cfg.Scaling.MaxTopics)
		require.NoError(t, cfg.Validate())
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config { return DefaultConfig() }

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"min radius zero", func(c *Config) { c.Discovery.MinRadiusKm = 0 }},
		{"min radius negative", func(c *Config) { c.Discovery.MinRadiusKm = -1 }},
		{"max below min", func(c *Config) { c.Discovery.MaxRadiusKm = 1 }},
		{"damping zero", func(c *Config) { c.Discovery.DampingFactor = 0 }},
		{"expansion step zero", func(c *Config) { c.Discovery.ExpansionStepKm = 0 }},
		{"min size zero", func(c *Config) { c.Scaling.MinSize = 0 }},
		{"optimal below min", func(c *Config) { c.Scaling.OptimalSize = 1 }},
		{"max below optimal", func(c *Config) { c.Scaling.MaxSize = 3 }},
		{"critical not above max", func(c *Config) { c.Scaling.CriticalSize = 6 }},
		{"split delay zero", func(c *Config) { c.Scaling.SplitDelay = 0 }},
		{"merge delay zero", func(c *Config) { c.Scaling.MergeDelay = 0 }},
		{"merge below split", func(c *Config) { c.Scaling.MergeDelay = 10 * time.Second }},
		{"heartbeat threshold zero", func(c *Config) { c.Discovery.HeartbeatThreshold = 0 }},
		{"join threshold above 100", func(c *Config) { c.Scoring.MinScoreForJoin = 120 }},
		{"merge threshold negative", func(c *Config) { c.Scoring.MinVibeForMerge = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestConfigYAML(t *testing.T) {
	raw := `
discovery:
  minRadiusKm: 3
  maxRadiusKm: 80
  dampingFactor: 0.2
  expansionStepKm: 4
  heartbeatThreshold: 45s
scoring:
  minScoreForJoin: 55
scaling:
  minSize: 2
  optimalSize: 5
  maxSize: 8
  criticalSize: 10
  splitDelay: 20s
  mergeDelay: 40s
operationTimeout: 5s
`

	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(raw), &cfg))

	require.Equal(t, 3.0, cfg.Discovery.MinRadiusKm)
	require.Equal(t, 80.0, cfg.Discovery.MaxRadiusKm)
	require.Equal(t, 45*time.Second, cfg.Discovery.HeartbeatThreshold)
	require.Equal(t, 55.0, cfg.Scoring.MinScoreForJoin)
	require.Equal(t, 8, cfg.Scaling.MaxSize)
	require.Equal(t, 10, cfg.Scaling.CriticalSize)
	require.Equal(t, 40*time.Second, cfg.Scaling.MergeDelay)
	require.Equal(t, 5*time.Second, cfg.OperationTimeout)

	SetDefaults(&cfg)
	require.NoError(t, cfg.Validate())
}

// warnCapture is a Logger that records Warn messages.
type warnCapture struct {
	warnings []string
}

func (l *warnCapture) Debug(string, ...any) {}
func (l *warnCapture) Info(string, ...any)  {}
func (l *warnCapture) Warn(msg string, _ ...any) {
	l.warnings = append(l.warnings, msg)
}
func (l *warnCapture) Error(string, ...any) {}
func (l *warnCapture) Fatal(string, ...any) {}

func TestValidateWithWarnings(t *testing.T) {
	t.Run("defaults are quiet", func(t *testing.T) {
		cfg := DefaultConfig()
		log := &warnCapture{}

		cfg.ValidateWithWarnings(log)
		require.Empty(t, log.warnings)
	})

	t.Run("short debounce windows warn", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Scaling.SplitDelay = time.Second
		cfg.Scaling.MergeDelay = time.Second
		log := &warnCapture{}

		cfg.ValidateWithWarnings(log)
		require.NotEmpty(t, log.warnings)
	})

	t.Run("slow sweep warns", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Scaling.SweepInterval = 5 * time.Minute
		log := &warnCapture{}

		cfg.ValidateWithWarnings(log)
		require.Len(t, log.warnings, 1)
	})
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()

	require.NoError(t, cfg.Validate())
	require.Less(t, cfg.Scaling.SplitDelay, time.Second)
	require.Less(t, cfg.Scaling.MergeDelay, time.Second)
	require.GreaterOrEqual(t, cfg.Scaling.MergeDelay, cfg.Scaling.SplitDelay)
}
