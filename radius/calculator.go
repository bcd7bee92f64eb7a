package radius

import (
	"context"
	"math"
	"time"

	"github.com/vibehut/huddle/types"
)

// Relevance coefficient bounds. Higher shared-interest overlap produces a
// tighter, more relevant radius.
const (
	relevanceMin = 0.5
	relevanceMax = 1.5
)

// Querier is the minimal presence lookup Discover needs.
//
// Satisfied by types.PresenceStore; a narrower interface keeps the
// calculator trivially fakeable in tests.
type Querier interface {
	QueryActiveUsers(ctx context.Context, center types.LatLng, radiusKm float64, heartbeatThreshold time.Duration) ([]types.UserPresence, error)
}

// Config holds the tunables for radius computation.
type Config struct {
	// MinRadiusKm is the smallest discovery radius.
	MinRadiusKm float64

	// MaxRadiusKm is the largest discovery radius.
	MaxRadiusKm float64

	// DampingFactor controls how fast the radius shrinks as active users
	// accumulate (the k in the exponential decay).
	DampingFactor float64

	// ExpansionStepKm is the per-iteration radius increment during
	// discovery.
	ExpansionStepKm float64

	// HeartbeatThreshold is the maximum presence age considered active.
	HeartbeatThreshold time.Duration
}

// Calculator turns local user density into an adaptive discovery radius.
//
// Compute, Relevance and Density are pure; Discover drives the incremental
// expansion loop against a presence querier.
type Calculator struct {
	cfg Config
}

// New creates a Calculator with the given configuration.
//
// Parameters:
//   - cfg: Radius tunables; MinRadiusKm, MaxRadiusKm and DampingFactor must
//     be positive with MinRadiusKm < MaxRadiusKm
//
// Returns:
//   - *Calculator: Initialized calculator
func New(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// Compute returns the target discovery radius for the observed user count.
//
// The radius decays exponentially with density:
//
//	radius = min + (max - min) × e^(−k × activeUserCount × relevance)
//
// clamped to [MinRadiusKm, MaxRadiusKm]. With zero active users the result
// is exactly MaxRadiusKm.
//
// Parameters:
//   - activeUserCount: Number of active users observed at the current radius
//   - relevance: Relevance coefficient in [0.5, 1.5]
//
// Returns:
//   - float64: Target radius in kilometers
func (c *Calculator) Compute(activeUserCount int, relevance float64) float64 {
	if activeUserCount < 0 {
		activeUserCount = 0
	}

	span := c.cfg.MaxRadiusKm - c.cfg.MinRadiusKm
	exp := math.Exp(-c.cfg.DampingFactor * float64(activeUserCount) * relevance)
	r := c.cfg.MinRadiusKm + span*exp

	return math.Min(c.cfg.MaxRadiusKm, math.Max(c.cfg.MinRadiusKm, r))
}

// Relevance derives the relevance coefficient from shared-interest overlap
// between the requesting user and nearby users.
//
// The mean Jaccard overlap across neighbors is scaled into [0.5, 1.5].
// With zero comparison data (no neighbors, or an empty base set against
// empty neighbor sets) the coefficient defaults to 0.5.
//
// Parameters:
//   - base: The requesting user's interest tags
//   - neighbors: Interest tag sets of nearby users
//
// Returns:
//   - float64: Relevance coefficient in [0.5, 1.5]
func (c *Calculator) Relevance(base []string, neighbors [][]string) float64 {
	if len(neighbors) == 0 {
		return relevanceMin
	}

	var sum float64
	for _, tags := range neighbors {
		sum += Jaccard(base, tags)
	}
	mean := sum / float64(len(neighbors))

	return relevanceMin + (relevanceMax-relevanceMin)*mean
}

// Density returns the active-user density at a radius, in users per square
// kilometer.
//
// Used only as a signal for whether expansion is still paying off, not for
// correctness.
func (c *Calculator) Density(activeUserCount int, radiusKm float64) float64 {
	if radiusKm <= 0 {
		return 0
	}

	return float64(activeUserCount) / (math.Pi * radiusKm * radiusKm)
}

// Discovery is the outcome of a radius discovery pass.
type Discovery struct {
	// RadiusKm is the final discovery radius.
	RadiusKm float64

	// Users are the active presence snapshots found at the final radius.
	Users []types.UserPresence

	// Relevance is the relevance coefficient at the final radius.
	Relevance float64

	// Steps is the number of expansion iterations performed.
	Steps int

	// Found is false when expansion stopped early because density stopped
	// increasing ("no nearby activity found").
	Found bool

	// Degraded is true when the presence query failed and discovery fell
	// back to the minimum radius with an empty snapshot.
	Degraded bool
}

// Discover runs the incremental expansion loop around center.
//
// Starting at the minimum radius, each iteration queries active users,
// derives the relevance coefficient from their interests and recomputes
// the target radius. When the target exceeds the current radius, the
// radius grows by ExpansionStepKm per iteration (never past the target or
// the maximum) instead of jumping instantaneously. Expansion stops early
// when density fails to increase over two consecutive steps.
//
// Failure mode: if the presence query fails, Discover returns the minimum
// radius and an empty candidate set rather than an error — discovery must
// degrade, not crash.
//
// Parameters:
//   - ctx: Context for store round-trips
//   - q: Presence querier
//   - center: Discovery center
//   - interests: The requesting user's interest tags
//
// Returns:
//   - Discovery: Final radius, snapshots and expansion diagnostics
func (c *Calculator) Discover(ctx context.Context, q Querier, center types.LatLng, interests []string) Discovery {
	cur := c.cfg.MinRadiusKm

	// The loop is bounded by the distance expansion can cover; +2 leaves
	// room for the initial query and the final confirming query.
	maxSteps := 2 + int(math.Ceil((c.cfg.MaxRadiusKm-c.cfg.MinRadiusKm)/c.cfg.ExpansionStepKm))

	var (
		prevDensity float64
		flatSteps   int
		result      Discovery
	)

	for step := 0; step < maxSteps; step++ {
		users, err := q.QueryActiveUsers(ctx, center, cur, c.cfg.HeartbeatThreshold)
		if err != nil {
			return Discovery{RadiusKm: c.cfg.MinRadiusKm, Steps: step, Degraded: true}
		}

		rel := c.Relevance(interests, interestSets(users))
		target := c.Compute(len(users), rel)

		result = Discovery{
			RadiusKm:  cur,
			Users:     users,
			Relevance: rel,
			Steps:     step,
			Found:     true,
		}

		// Target reached: the density at this radius already justifies it.
		if target <= cur || cur >= c.cfg.MaxRadiusKm {
			return result
		}

		density := c.Density(len(users), cur)
		if density <= prevDensity {
			flatSteps++
		} else {
			flatSteps = 0
		}
		if flatSteps >= 2 {
			// Growing the circle is not finding anyone new.
			result.Found = false
			return result
		}
		prevDensity = density

		cur = math.Min(math.Min(cur+c.cfg.ExpansionStepKm, target), c.cfg.MaxRadiusKm)
	}

	return result
}

// Jaccard returns the Jaccard similarity of two tag sets.
//
// Tags are compared case-sensitively; duplicates within a set are ignored.
// Two empty sets have similarity 0 (no evidence of overlap, rather than
// perfect overlap).
//
// Returns:
//   - float64: |a ∩ b| / |a ∪ b| in [0, 1]
func Jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(a))
	for _, tag := range a {
		set[tag] = struct{}{}
	}

	union := len(set)
	inter := 0
	seen := make(map[string]struct{}, len(b))
	for _, tag := range b {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		if _, ok := set[tag]; ok {
			inter++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0
	}

	return float64(inter) / float64(union)
}

// interestSets projects presence snapshots onto their interest tag sets.
func interestSets(users []types.UserPresence) [][]string {
	if len(users) == 0 {
		return nil
	}

	sets := make([][]string, len(users))
	for i, u := range users {
		sets[i] = u.Interests
	}

	return sets
}
