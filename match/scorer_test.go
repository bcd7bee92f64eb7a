package match

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vibehut/huddle/types"
)

var taipei = types.LatLng{Lat: 25.033, Lng: 121.565}

func balancedUser(id string, loc types.LatLng, interests ...string) types.UserPresence {
	return types.UserPresence{
		ID:            id,
		Location:      loc,
		Interests:     interests,
		Vibe:          types.NeutralVibe(),
		ActivityScore: 50,
		Style:         types.StyleBalanced,
		Energy:        types.EnergyModerate,
	}
}

func TestNewScorer(t *testing.T) {
	t.Run("zero weights fall back to defaults", func(t *testing.T) {
		s := NewScorer(Weights{}, 10)
		require.Equal(t, DefaultWeights(), s.weights)
	})

	t.Run("custom weights are kept", func(t *testing.T) {
		w := Weights{Interests: 1}
		s := NewScorer(w, 10)
		require.Equal(t, w, s.weights)
	})
}

func TestScore_IdenticalUsers(t *testing.T) {
	s := NewScorer(DefaultWeights(), 10)

	a := balancedUser("a", taipei, "jazz", "hiking")
	b := balancedUser("b", taipei, "jazz", "hiking")

	result := s.Score(a, b)

	// Two balanced styles score 0.9 on the style factor, so even a perfect
	// pair lands just shy of 100.
	require.InDelta(t, 100, result.Score, 1.0)
	require.Equal(t, 100.0, result.Breakdown[FactorInterests])
	require.Equal(t, 100.0, result.Breakdown[FactorVibe])
	require.Equal(t, 100.0, result.Breakdown[FactorActivity])
	require.Equal(t, 100.0, result.Breakdown[FactorProximity])
}

func TestScore_Symmetry(t *testing.T) {
	s := NewScorer(DefaultWeights(), 10)

	styles := []types.ConversationStyle{types.StyleListener, types.StyleTalker, types.StyleBalanced}
	energies := []types.EnergyLevel{types.EnergyChill, types.EnergyModerate, types.EnergyEnergetic}
	pools := [][]string{{"jazz"}, {"jazz", "hiking"}, {"chess", "opera"}, nil}

	rng := rand.New(rand.NewPCG(42, 0))
	randomUser := func(id string) types.UserPresence {
		vibe := make(types.VibeVector, types.VibeDimensions)
		for i := range vibe {
			vibe[i] = rng.Float64()
		}

		return types.UserPresence{
			ID: id,
			Location: types.LatLng{
				Lat: taipei.Lat + rng.Float64()*0.2 - 0.1,
				Lng: taipei.Lng + rng.Float64()*0.2 - 0.1,
			},
			Interests:     pools[rng.IntN(len(pools))],
			Vibe:          vibe,
			ActivityScore: rng.Float64() * 100,
			Style:         styles[rng.IntN(len(styles))],
			Energy:        energies[rng.IntN(len(energies))],
		}
	}

	for i := 0; i < 200; i++ {
		a := randomUser("a")
		b := randomUser("b")

		ab := s.Score(a, b)
		ba := s.Score(b, a)

		require.Equal(t, ab.Score, ba.Score, "asymmetric score on iteration %d", i)
		require.Equal(t, ab.Breakdown, ba.Breakdown, "asymmetric breakdown on iteration %d", i)
		require.GreaterOrEqual(t, ab.Score, 0.0)
		require.LessOrEqual(t, ab.Score, 100.0)
	}
}

func TestScore_InvalidVibeIsNeutral(t *testing.T) {
	s := NewScorer(DefaultWeights(), 10)

	a := balancedUser("a", taipei, "jazz")
	b := balancedUser("b", taipei, "jazz")

	baseline := s.Score(a, b)

	// Nil and wrong-dimensionality vectors degrade to the neutral vector,
	// which matches a's neutral vibe exactly.
	for _, vibe := range []types.VibeVector{nil, {0.5}} {
		b.Vibe = vibe
		result := s.Score(a, b)
		require.Equal(t, baseline.Score, result.Score, "vibe %v", vibe)
		require.Equal(t, 100.0, result.Breakdown[FactorVibe])
	}

	// An all-zero vector is dimensionally valid but has no direction; it
	// scores the neutral 0.5 instead of dividing by zero.
	b.Vibe = make(types.VibeVector, types.VibeDimensions)
	result := s.Score(a, b)
	require.Equal(t, 50.0, result.Breakdown[FactorVibe])
	require.Less(t, result.Score, baseline.Score)
}

func TestScore_ProximityCutoff(t *testing.T) {
	s := NewScorer(DefaultWeights(), 10)

	a := balancedUser("a", taipei, "jazz")

	t.Run("same location is a perfect proximity score", func(t *testing.T) {
		b := balancedUser("b", taipei, "jazz")
		require.Equal(t, 100.0, s.Score(a, b).Breakdown[FactorProximity])
	})

	t.Run("decays with distance", func(t *testing.T) {
		near := balancedUser("b", types.LatLng{Lat: taipei.Lat + 0.01, Lng: taipei.Lng}, "jazz")
		far := balancedUser("c", types.LatLng{Lat: taipei.Lat + 0.05, Lng: taipei.Lng}, "jazz")

		nearScore := s.Score(a, near).Breakdown[FactorProximity]
		farScore := s.Score(a, far).Breakdown[FactorProximity]
		require.Greater(t, nearScore, farScore)
		require.Greater(t, farScore, 0.0)
	})

	t.Run("zero beyond the cutoff", func(t *testing.T) {
		// Roughly 22 km north, past the 10 km cutoff.
		b := balancedUser("b", types.LatLng{Lat: taipei.Lat + 0.2, Lng: taipei.Lng}, "jazz")
		require.Equal(t, 0.0, s.Score(a, b).Breakdown[FactorProximity])
	})

	t.Run("no cutoff when max is zero", func(t *testing.T) {
		unlimited := NewScorer(DefaultWeights(), 0)
		b := balancedUser("b", types.LatLng{Lat: taipei.Lat + 0.2, Lng: taipei.Lng}, "jazz")
		require.Greater(t, unlimited.Score(a, b).Breakdown[FactorProximity], 0.0)
	})
}

func TestStyleEnergyCompat(t *testing.T) {
	tests := []struct {
		styleA, styleB types.ConversationStyle
		wantStyle      float64
	}{
		{types.StyleBalanced, types.StyleBalanced, 0.9},
		{types.StyleBalanced, types.StyleListener, 0.9},
		{types.StyleTalker, types.StyleBalanced, 0.9},
		{types.StyleListener, types.StyleTalker, 1.0},
		{types.StyleTalker, types.StyleListener, 1.0},
		{types.StyleListener, types.StyleListener, 0.6},
		{types.StyleTalker, types.StyleTalker, 0.6},
	}

	for _, tt := range tests {
		name := fmt.Sprintf("%s+%s", tt.styleA, tt.styleB)
		t.Run(name, func(t *testing.T) {
			a := types.UserPresence{Style: tt.styleA, Energy: types.EnergyModerate}
			b := types.UserPresence{Style: tt.styleB, Energy: types.EnergyModerate}

			// Equal energy contributes a flat 1.0 to the average.
			require.InDelta(t, (tt.wantStyle+1)/2, styleEnergyCompat(a, b), 0.0001)
		})
	}

	t.Run("energy gap penalized", func(t *testing.T) {
		a := types.UserPresence{Style: types.StyleBalanced, Energy: types.EnergyChill}
		b := types.UserPresence{Style: types.StyleBalanced, Energy: types.EnergyEnergetic}

		// Style 0.9, energy 1 − 0.3×2 = 0.4.
		require.InDelta(t, (0.9+0.4)/2, styleEnergyCompat(a, b), 0.0001)
	})
}

func TestActivitySimilarity(t *testing.T) {
	require.Equal(t, 1.0, activitySimilarity(50, 50))
	require.InDelta(t, 0.7, activitySimilarity(20, 50), 0.0001)
	require.Equal(t, 0.0, activitySimilarity(0, 100))
}

func TestRoomCompatibility(t *testing.T) {
	base := types.Room{
		ID:            "a",
		Location:      taipei,
		Topics:        []string{"jazz", "hiking"},
		VibeScore:     0.5,
		ActivityLevel: 0.5,
	}

	t.Run("identical rooms score 100", func(t *testing.T) {
		other := base
		other.ID = "b"
		require.Equal(t, 100.0, RoomCompatibility(base, other))
	})

	t.Run("symmetric", func(t *testing.T) {
		other := types.Room{
			ID:            "b",
			Location:      types.LatLng{Lat: taipei.Lat + 0.05, Lng: taipei.Lng},
			Topics:        []string{"jazz", "chess"},
			VibeScore:     0.8,
			ActivityLevel: 0.2,
		}
		require.Equal(t, RoomCompatibility(base, other), RoomCompatibility(other, base))
	})

	t.Run("disjoint topics lose the topic weight", func(t *testing.T) {
		other := base
		other.ID = "b"
		other.Topics = []string{"chess", "opera"}
		require.InDelta(t, 60.0, RoomCompatibility(base, other), 0.0001)
	})

	t.Run("distance decays the proximity factor", func(t *testing.T) {
		near := base
		near.ID = "b"
		far := base
		far.ID = "c"
		far.Location = types.LatLng{Lat: taipei.Lat + 0.5, Lng: taipei.Lng}

		require.Greater(t, RoomCompatibility(base, near), RoomCompatibility(base, far))
	})
}
