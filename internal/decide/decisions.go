package decide

import (
	"github.com/quietloop/undercurrent/internal/interpret"
)

// DecideFeedBehavior maps a user state to a feed policy. Total: every state
// lands on exactly one preset, and the unknown degrades to the balanced
// default.
func DecideFeedBehavior(state interpret.UserState) FeedDecision {
	primary := state.PrimaryState

	// Overstimulated gets the most restrictive preset, checked before the
	// plain heavy preset so it wins when both apply.
	if isOverstimulated(state) {
		return FeedDecision{
			PostsPerPage:          2,
			ScrollPace:            PaceSlow,
			ContentTypes:          []string{"minimal", "quiet"},
			ShowGroundingWidgets:  true,
			NotificationIntensity: IntensityMinimal,
			SuggestedTools:        []string{"pause", "breathe", "disconnect"},
		}
	}

	if interpret.IsEmotionallyHeavy(primary) {
		return FeedDecision{
			PostsPerPage:          3,
			ScrollPace:            PaceSlow,
			ContentTypes:          []string{"grounding", "calm", "supportive"},
			ShowGroundingWidgets:  true,
			NotificationIntensity: IntensityMinimal,
			SuggestedTools:        []string{"breathe", "journal", "echo"},
		}
	}

	if interpret.IsCurious(primary) {
		return FeedDecision{
			PostsPerPage:          8,
			ScrollPace:            PaceNormal,
			ContentTypes:          []string{"discovery", "new_people", "light"},
			NotificationIntensity: IntensityMedium,
			SuggestedTools:        []string{"explore", "connect"},
		}
	}

	if primary == interpret.StateSociallyCautious {
		return FeedDecision{
			PostsPerPage:          5,
			ScrollPace:            PaceSlow,
			ContentTypes:          []string{"familiar", "safe", "low_pressure"},
			NotificationIntensity: IntensityLow,
			SuggestedTools:        []string{"echo", "journal"},
		}
	}

	return FeedDecision{
		PostsPerPage:          6,
		ScrollPace:            PaceNormal,
		ContentTypes:          []string{"balanced", "varied"},
		NotificationIntensity: IntensityMedium,
	}
}

// isOverstimulated is a heavy state, or high social churn while moods are
// piling up.
func isOverstimulated(state interpret.UserState) bool {
	if state.PrimaryState == interpret.StateEmotionallyOverloaded {
		return true
	}
	return state.Context.SocialActivity == interpret.ActivityHigh &&
		len(state.Context.RecentMoods) > 5
}

// HandleInactiveUser adjusts the feed policy for a user who has been away.
// Silence is never penalized with increased pressure: the longer the
// absence, the gentler the return.
func HandleInactiveUser(state interpret.UserState, daysSinceLastInteraction int) FeedDecision {
	if daysSinceLastInteraction > 7 {
		return FeedDecision{
			PostsPerPage:          2,
			ScrollPace:            PaceSlow,
			ContentTypes:          []string{"welcoming", "low_pressure"},
			NotificationIntensity: IntensityMinimal,
		}
	}
	if daysSinceLastInteraction > 3 {
		return FeedDecision{
			PostsPerPage:          4,
			ScrollPace:            PaceSlow,
			ContentTypes:          []string{"gentle", "familiar"},
			NotificationIntensity: IntensityLow,
		}
	}
	return DecideFeedBehavior(state)
}

// InferIntent reads a short action log into an intent label. Ordered rules,
// first match wins.
func InferIntent(state interpret.UserState, recentActions []string) string {
	seen := make(map[string]bool, len(recentActions))
	for _, a := range recentActions {
		seen[a] = true
	}

	switch {
	case seen["echo"] && seen["open_messages"]:
		// Opening a reflection tool right before messaging: looking for
		// clarity, not conversation.
		return "seeking_clarity"
	case seen["scroll"] && !seen["like"] && !seen["comment"]:
		return "observing"
	case seen["breathe"] || seen["meditate"]:
		return "needs_calm"
	}
	return "exploring"
}
