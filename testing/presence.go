package testing

import (
	"time"

	"github.com/vibehut/huddle/types"
)

// Presence builds a presence snapshot with sensible test defaults.
//
// The snapshot gets a fresh heartbeat, a neutral vibe vector, a balanced
// style, moderate energy, and an activity score of 50. Override fields on
// the result as needed.
//
// Parameters:
//   - id: User ID
//   - loc: User location
//   - interests: Interest tags (may be nil)
//
// Returns:
//   - types.UserPresence: Populated snapshot
func Presence(id string, loc types.LatLng, interests ...string) types.UserPresence {
	return types.UserPresence{
		ID:            id,
		Location:      loc,
		LastHeartbeat: time.Now(),
		Interests:     interests,
		Vibe:          types.NeutralVibe(),
		ActivityScore: 50,
		Style:         types.StyleBalanced,
		Energy:        types.EnergyModerate,
	}
}
