package decide

import (
	"math/rand"
	"sort"
	"time"

	"github.com/quietloop/undercurrent/internal/interpret"
)

// WeightsVersion tags the current coefficient table. Bump when the table
// changes so ranking regressions can be traced to a policy revision; the
// facade stamps it on every rotation log line.
const WeightsVersion = 3

// WeightsFor returns the ranking coefficients for a user state. Heavy
// states trade relevance for emotional match; everything else favors
// relevance.
func WeightsFor(state interpret.UserState) Weights {
	if interpret.IsEmotionallyHeavy(state.PrimaryState) {
		return Weights{Relevance: 0.3, EmotionalMatch: 0.5, Timing: 0.1, Randomness: 0.1}
	}
	return Weights{Relevance: 0.4, EmotionalMatch: 0.3, Timing: 0.2, Randomness: 0.1}
}

// RankContent scores every item against the user state and returns scores
// sorted descending. Output length always equals input length. The rng is
// caller-injected: production uses a random seed, tests pin one.
func RankContent(items []ContentItem, state interpret.UserState, now time.Time, rng *rand.Rand) []ContentScore {
	weights := WeightsFor(state)

	scores := make([]ContentScore, len(items))
	for i, item := range items {
		b := Breakdown{
			Relevance:      relevance(item, state),
			EmotionalMatch: emotionalMatch(item, state),
			Timing:         timing(item, state, now),
			Randomness:     rng.Float64() * 0.15, // anti-gaming noise on every item
		}
		scores[i] = ContentScore{
			ContentID:  item.ID,
			FinalScore: b.Relevance*weights.Relevance + b.EmotionalMatch*weights.EmotionalMatch + b.Timing*weights.Timing + b.Randomness*weights.Randomness,
			Breakdown:  b,
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].FinalScore > scores[j].FinalScore
	})
	return scores
}

// relevance starts at a neutral base and rewards close connections and
// overlap with the user's recent mood labels. Clamped to [0, 1].
func relevance(item ContentItem, state interpret.UserState) float64 {
	score := 0.5
	if item.IsFromCloseConnection {
		score += 0.3
	}
	if matchesRecentMoods(item, state) {
		score += 0.2
	}
	if score > 1 {
		score = 1
	}
	return score
}

func matchesRecentMoods(item ContentItem, state interpret.UserState) bool {
	for _, mood := range state.Context.RecentMoods {
		for _, tag := range item.Tags {
			if tag == mood {
				return true
			}
		}
	}
	return false
}

// emotionalMatch asks whether the content's tone suits the user's state.
func emotionalMatch(item ContentItem, state interpret.UserState) float64 {
	if interpret.IsEmotionallyHeavy(state.PrimaryState) {
		if item.Tone == "calm" || item.Tone == "supportive" {
			return 0.9
		}
		return 0.3
	}
	if state.PrimaryState == interpret.StateEnergized {
		if item.Tone == "exciting" || item.Tone == "inspiring" {
			return 0.9
		}
		return 0.5
	}
	return 0.6
}

// timing scores freshness and time-of-day fit. The same post at different
// times lands differently.
func timing(item ContentItem, state interpret.UserState, now time.Time) float64 {
	age := now.Sub(item.CreatedAt)

	score := 0.5
	switch {
	case age < 2*time.Hour:
		score += 0.2
	case age < 24*time.Hour:
		score += 0.1
	}

	// Calmer content reads better late at night.
	if state.Context.TimeOfDay == interpret.LateNight {
		if item.Tone == "calm" || item.Tone == "reflective" {
			score += 0.2
		}
	}

	if age > 48*time.Hour {
		score *= 0.5
	}

	if score > 1 {
		score = 1
	}
	return score
}
