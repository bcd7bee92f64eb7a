package match

import (
	"math"

	"github.com/vibehut/huddle/types"
)

// Room-to-room compatibility weights.
//
// Deliberately distinct from the user-to-user Weights: merge decisions
// compare room aggregates (topics, mean vibe, activity level, centroid),
// not individual member profiles. Do not unify the two formulas.
const (
	roomTopicWeight     = 0.40
	roomVibeWeight      = 0.30
	roomActivityWeight  = 0.20
	roomProximityWeight = 0.10
)

// RoomCompatibility scores how well two rooms would merge, on a 0-100
// scale.
//
// The blend combines topic-set Jaccard overlap, closeness of the aggregate
// vibe scores, closeness of activity levels, and an exponential decay on
// centroid distance. The function is symmetric in its arguments.
//
// Parameters:
//   - a: First room
//   - b: Second room
//
// Returns:
//   - float64: Compatibility in [0, 100]; merge candidates must meet the
//     configured MinVibeForMerge threshold
func RoomCompatibility(a, b types.Room) float64 {
	topics := jaccard(a.Topics, b.Topics)
	vibe := clamp01(1 - math.Abs(a.VibeScore-b.VibeScore))
	activity := clamp01(1 - math.Abs(a.ActivityLevel-b.ActivityLevel))
	proximity := math.Exp(-proximityLambda * a.Location.DistanceKm(b.Location))

	total := roomTopicWeight*topics +
		roomVibeWeight*vibe +
		roomActivityWeight*activity +
		roomProximityWeight*proximity

	return clamp01(total) * 100
}
