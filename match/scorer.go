package match

import (
	"math"

	"github.com/vibehut/huddle/types"
)

// proximityLambda is the decay rate of the proximity factor per kilometer.
const proximityLambda = 0.3

// Factor names used as breakdown keys.
const (
	FactorInterests   = "interests"
	FactorVibe        = "vibe"
	FactorActivity    = "activity"
	FactorProximity   = "proximity"
	FactorStyleEnergy = "style_energy"
)

// Weights holds the relative weight of each compatibility factor.
//
// Weights are relative: the final score is normalized by their sum, so
// only their ratios matter.
type Weights struct {
	Interests   float64 `yaml:"interests"`
	Vibe        float64 `yaml:"vibe"`
	Activity    float64 `yaml:"activity"`
	Proximity   float64 `yaml:"proximity"`
	StyleEnergy float64 `yaml:"styleEnergy"`
}

// DefaultWeights returns the production factor weights.
//
// Returns:
//   - Weights: interests 0.30, vibe 0.25, activity 0.15, proximity 0.15,
//     style/energy 0.10
func DefaultWeights() Weights {
	return Weights{
		Interests:   0.30,
		Vibe:        0.25,
		Activity:    0.15,
		Proximity:   0.15,
		StyleEnergy: 0.10,
	}
}

// Sum returns the total of all factor weights.
func (w Weights) Sum() float64 {
	return w.Interests + w.Vibe + w.Activity + w.Proximity + w.StyleEnergy
}

// Result is a compatibility score with its per-factor breakdown.
type Result struct {
	// Score is the overall compatibility in [0, 100].
	Score float64

	// Breakdown maps each factor name to its individual score in [0, 100],
	// before weighting.
	Breakdown map[string]float64
}

// Scorer computes user-to-user compatibility scores.
//
// Scorer is stateless and safe for concurrent use.
type Scorer struct {
	weights        Weights
	proximityMaxKm float64
}

// NewScorer creates a Scorer.
//
// Parameters:
//   - weights: Relative factor weights; a zero value falls back to
//     DefaultWeights
//   - proximityMaxKm: Distance beyond which the proximity factor is zero
//
// Returns:
//   - *Scorer: Initialized scorer
func NewScorer(weights Weights, proximityMaxKm float64) *Scorer {
	if weights.Sum() <= 0 {
		weights = DefaultWeights()
	}

	return &Scorer{weights: weights, proximityMaxKm: proximityMaxKm}
}

// Score computes the compatibility between two users.
//
// Each factor is computed independently, normalized to [0, 1], weighted
// and summed; the sum is normalized by the total weight and scaled to
// [0, 100]. Every factor is symmetric in its two arguments, so
// Score(a, b) == Score(b, a) holds exactly — this is a hard invariant, and
// no tie-breaking may be introduced inside the scorer.
//
// A missing or malformed vibe vector is treated as the neutral all-0.5
// vector rather than an error.
//
// Parameters:
//   - a: First user snapshot
//   - b: Second user snapshot
//
// Returns:
//   - Result: Overall score in [0, 100] with per-factor breakdown
func (s *Scorer) Score(a, b types.UserPresence) Result {
	factors := map[string]float64{
		FactorInterests:   jaccard(a.Interests, b.Interests),
		FactorVibe:        vibeSimilarity(a.Vibe, b.Vibe),
		FactorActivity:    activitySimilarity(a.ActivityScore, b.ActivityScore),
		FactorProximity:   s.proximity(a.Location, b.Location),
		FactorStyleEnergy: styleEnergyCompat(a, b),
	}

	weighted := s.weights.Interests*factors[FactorInterests] +
		s.weights.Vibe*factors[FactorVibe] +
		s.weights.Activity*factors[FactorActivity] +
		s.weights.Proximity*factors[FactorProximity] +
		s.weights.StyleEnergy*factors[FactorStyleEnergy]

	score := clamp01(weighted/s.weights.Sum()) * 100

	breakdown := make(map[string]float64, len(factors))
	for name, f := range factors {
		breakdown[name] = clamp01(f) * 100
	}

	return Result{Score: score, Breakdown: breakdown}
}

// proximity returns e^(−λ·distanceKm), zero beyond the proximity cutoff.
func (s *Scorer) proximity(a, b types.LatLng) float64 {
	d := a.DistanceKm(b)
	if s.proximityMaxKm > 0 && d > s.proximityMaxKm {
		return 0
	}

	return math.Exp(-proximityLambda * d)
}

// vibeSimilarity returns cosine similarity of the two vibe vectors,
// remapped from [-1, 1] to [0, 1] via (cos+1)/2.
//
// Vectors of the wrong dimensionality are replaced by the neutral vector;
// a zero-norm vector has no direction and scores the neutral 0.5.
func vibeSimilarity(a, b types.VibeVector) float64 {
	if !a.Valid() {
		a = types.NeutralVibe()
	}
	if !b.Valid() {
		b = types.NeutralVibe()
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.5
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))

	return clamp01((cos + 1) / 2)
}

// activitySimilarity returns 1 − |Δactivity|/100 for scores in [0, 100].
func activitySimilarity(a, b float64) float64 {
	return clamp01(1 - math.Abs(a-b)/100)
}

// styleEnergyCompat averages the discrete style-compatibility table and an
// energy-distance penalty.
//
// Style table (symmetric): either side balanced ⇒ 0.9, listener paired
// with talker ⇒ 1.0, same non-balanced style ⇒ 0.6. Energy penalty:
// 1 − 0.3×|Δlevel| on the chill/moderate/energetic 0/1/2 scale.
func styleEnergyCompat(a, b types.UserPresence) float64 {
	var style float64
	switch {
	case a.Style == types.StyleBalanced || b.Style == types.StyleBalanced:
		style = 0.9
	case a.Style != b.Style:
		// The only remaining mixed pairing is listener + talker.
		style = 1.0
	default:
		style = 0.6
	}

	delta := math.Abs(float64(a.Energy.Ordinal() - b.Energy.Ordinal()))
	energy := 1 - 0.3*delta

	return (style + energy) / 2
}

// jaccard returns the Jaccard similarity of two tag sets. Two empty sets
// score 0: no evidence of shared interests.
func jaccard(a, b []string) float64 {
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

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
