package types

import "time"

// VibeDimensions is the fixed length of a user's vibe vector.
const VibeDimensions = 8

// VibeVector is a fixed-length numeric feature vector summarizing a user's
// personality and interaction style. Components are normalized to [0, 1]
// and compared via cosine similarity.
type VibeVector []float64

// NeutralVibe returns the all-0.5 vector used in place of a missing or
// malformed vibe vector.
//
// Returns:
//   - VibeVector: A fresh neutral vector of VibeDimensions components
func NeutralVibe() VibeVector {
	v := make(VibeVector, VibeDimensions)
	for i := range v {
		v[i] = 0.5
	}

	return v
}

// Valid reports whether the vector has the expected dimensionality.
func (v VibeVector) Valid() bool {
	return len(v) == VibeDimensions
}

// ConversationStyle describes how a user tends to participate in a
// conversation.
type ConversationStyle string

// Conversation styles.
const (
	StyleListener ConversationStyle = "listener"
	StyleTalker   ConversationStyle = "talker"
	StyleBalanced ConversationStyle = "balanced"
)

// EnergyLevel describes a user's preferred conversation energy.
type EnergyLevel string

// Energy levels, ordered from lowest to highest.
const (
	EnergyChill     EnergyLevel = "chill"
	EnergyModerate  EnergyLevel = "moderate"
	EnergyEnergetic EnergyLevel = "energetic"
)

// Ordinal returns the position of the energy level on a 0/1/2 scale.
// Unknown values map to the middle of the scale.
//
// Returns:
//   - int: 0 for chill, 1 for moderate, 2 for energetic
func (e EnergyLevel) Ordinal() int {
	switch e {
	case EnergyChill:
		return 0
	case EnergyModerate:
		return 1
	case EnergyEnergetic:
		return 2
	default:
		return 1
	}
}

// UserPresence is a transient, read-only snapshot of an active user as
// fetched from the external presence store.
//
// Presence records are created and refreshed by heartbeats owned by the
// presence subsystem; the core never mutates them. A presence is logically
// inactive once now - LastHeartbeat exceeds the configured heartbeat
// threshold.
type UserPresence struct {
	// ID uniquely identifies the user.
	ID string `json:"id"`

	// Location is the user's last reported position.
	Location LatLng `json:"location"`

	// LastHeartbeat is when the user last refreshed their presence.
	LastHeartbeat time.Time `json:"lastHeartbeat"`

	// Interests is the user's interest tag set.
	Interests []string `json:"interests"`

	// Vibe is the user's 8-dimensional normalized vibe vector.
	// May be nil when the user has not completed profiling.
	Vibe VibeVector `json:"vibe,omitempty"`

	// ActivityScore is the user's recent activity level in [0, 100].
	ActivityScore float64 `json:"activityScore"`

	// Style is the user's conversational style.
	Style ConversationStyle `json:"style"`

	// Energy is the user's preferred conversation energy.
	Energy EnergyLevel `json:"energy"`
}

// ActiveAt reports whether the presence is still fresh at the given time.
//
// Parameters:
//   - now: Reference time
//   - threshold: Maximum heartbeat age before a user is considered inactive
//
// Returns:
//   - bool: true if the last heartbeat is within the threshold
func (u UserPresence) ActiveAt(now time.Time, threshold time.Duration) bool {
	return now.Sub(u.LastHeartbeat) <= threshold
}
