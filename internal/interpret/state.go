package interpret

import "time"

// State is a latent emotional state inferred from behavior. States are
// internal vocabulary only — they never cross the facade boundary.
type State string

const (
	StateReflective            State = "reflective"
	StateSociallyCautious      State = "socially_cautious"
	StateEmotionallyOverloaded State = "emotionally_overloaded"
	StateGrounded              State = "grounded"
	StateSeekingReassurance    State = "seeking_reassurance"
	StateIntrospective         State = "introspective"
	StateObserving             State = "observing"
	StateAnxiousDecisionMaking State = "anxious_decision_making"
	StateEnergized             State = "energized"
	StateWithdrawn             State = "withdrawn"
)

// TimeOfDay buckets the clock hour.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
	LateNight TimeOfDay = "late_night"
)

// ActivityTier grades overall social activity.
type ActivityTier string

const (
	ActivityHigh   ActivityTier = "high"
	ActivityMedium ActivityTier = "medium"
	ActivityLow    ActivityTier = "low"
)

// Context summarizes the signal window the state was derived from.
type Context struct {
	TimeOfDay       TimeOfDay
	RecentMoods     []string // last 5 mood labels, oldest-first
	ToolPreferences []string // tools ranked by usage count, descending
	SocialActivity  ActivityTier
}

// UserState is the derived latent state for one user. It is ephemeral:
// recomputed on demand, never persisted or cached.
type UserState struct {
	UserID          string
	PrimaryState    State
	SecondaryStates []State // at most 2
	Confidence      float64 // 0..1, capped at 0.95
	LastUpdated     time.Time
	Context         Context
}

// IsEmotionallyHeavy reports whether a state belongs to the heavy group
// that gets the most protective feed treatment.
func IsEmotionallyHeavy(s State) bool {
	switch s {
	case StateEmotionallyOverloaded, StateAnxiousDecisionMaking, StateSeekingReassurance:
		return true
	}
	return false
}

// IsCurious reports whether a state belongs to the curious/energized group.
func IsCurious(s State) bool {
	return s == StateEnergized || s == StateGrounded
}
