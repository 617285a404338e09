package interpret

import (
	"sort"
	"time"

	"github.com/quietloop/undercurrent/internal/signals"
)

// signalWindow is how many recent signals one interpretation reads.
const signalWindow = 50

// confidence saturates at 0.95 and never drops below the zero-signal
// floor: sparse data should never look certain, and recording a signal
// must never make the interpreter less sure than having none at all.
const (
	maxConfidence = 0.95
	minConfidence = 0.1
)

// echoToMessageGap is the longest gap between an echo tool use and a
// following conversation signal that still reads as decision anxiety.
const echoToMessageGap = 5 * time.Minute

// Mood label groups the rules match against.
var (
	heavyMoods         = map[string]bool{"anxious": true, "overwhelmed": true, "sad": true, "angry": true}
	positiveMoods      = map[string]bool{"joyful": true, "excited": true}
	introspectiveMoods = map[string]bool{"pensive": true, "thoughtful": true, "\U0001F636‍\U0001F32B️": true}
	groundingTools     = map[string]bool{"breathe": true, "meditation": true, "grounding": true}
)

// Interpreter derives a UserState from a user's recent signals.
type Interpreter struct {
	Store *signals.Store

	// Now is the clock used for time-of-day bucketing. Tests override it.
	Now func() time.Time
}

// New creates an Interpreter reading from the given store.
func New(store *signals.Store) *Interpreter {
	return &Interpreter{Store: store, Now: time.Now}
}

// facts are the aggregations shared by every rule in the cascade. Computed
// once per interpretation, never retained between calls.
type facts struct {
	timeOfDay   TimeOfDay
	recentMoods []string
	tools       []toolCount
	social      socialBehavior
	avgPauseMs  float64
	scrollSpeed string
	window      []signals.Signal
}

type toolCount struct {
	tool  string
	count int
}

type socialBehavior struct {
	activity ActivityTier
	posts    int
	reads    int
	messages int
}

// rule is one step of the priority cascade: first match wins.
type rule struct {
	name  string
	match func(f facts) bool
	state State
}

// primaryRules is evaluated in order. Insert or reorder here to change
// inference priority.
var primaryRules = []rule{
	{
		name: "late night introspection",
		match: func(f facts) bool {
			if f.timeOfDay != LateNight {
				return false
			}
			for _, m := range f.recentMoods {
				if introspectiveMoods[m] {
					return true
				}
			}
			return false
		},
		state: StateIntrospective,
	},
	{
		name: "reads without posting",
		match: func(f facts) bool {
			return f.social.posts == 0 && f.social.reads > 5
		},
		state: StateObserving,
	},
	{
		name:  "echo before messaging",
		match: func(f facts) bool { return echoBeforeMessaging(f.window) },
		state: StateAnxiousDecisionMaking,
	},
	{
		name:  "long hesitation",
		match: func(f facts) bool { return f.avgPauseMs > 5000 },
		state: StateSociallyCautious,
	},
	{
		name: "heavy mood run",
		match: func(f facts) bool {
			heavy := 0
			for _, m := range f.recentMoods {
				if heavyMoods[m] {
					heavy++
				}
			}
			return heavy >= 3
		},
		state: StateEmotionallyOverloaded,
	},
	{
		name: "grounding tool use",
		match: func(f facts) bool {
			for _, t := range f.tools {
				if groundingTools[t.tool] {
					return true
				}
			}
			return false
		},
		state: StateGrounded,
	},
	{
		name: "reaching out without posting",
		match: func(f facts) bool {
			return f.social.messages > 10 && f.social.posts < 2
		},
		state: StateSeekingReassurance,
	},
}

// Interpret derives the current UserState for a user. Zero signals is not an
// error: absence of data is itself meaningful and yields the default state.
func (it *Interpreter) Interpret(userID string) UserState {
	window := it.Store.Query(userID, signalWindow)
	if len(window) == 0 {
		return it.defaultState(userID)
	}

	f := it.gatherFacts(window)

	primary := StateReflective
	for _, r := range primaryRules {
		if r.match(f) {
			primary = r.state
			break
		}
	}

	return UserState{
		UserID:          userID,
		PrimaryState:    primary,
		SecondaryStates: secondaryStates(f),
		Confidence:      confidence(len(window)),
		LastUpdated:     it.Now(),
		Context: Context{
			TimeOfDay:       f.timeOfDay,
			RecentMoods:     f.recentMoods,
			ToolPreferences: rankedTools(f.tools),
			SocialActivity:  f.social.activity,
		},
	}
}

func (it *Interpreter) defaultState(userID string) UserState {
	return UserState{
		UserID:       userID,
		PrimaryState: StateReflective,
		Confidence:   minConfidence,
		LastUpdated:  it.Now(),
		Context: Context{
			TimeOfDay:      bucketHour(it.Now().Hour()),
			SocialActivity: ActivityLow,
		},
	}
}

func (it *Interpreter) gatherFacts(window []signals.Signal) facts {
	return facts{
		timeOfDay:   bucketHour(it.Now().Hour()),
		recentMoods: recentMoods(window),
		tools:       toolUsage(window),
		social:      socialActivity(window),
		avgPauseMs:  avgPause(window),
		scrollSpeed: lastScrollSpeed(window),
		window:      window,
	}
}

// secondaryStates may coexist with any primary state. Capped at 2.
func secondaryStates(f facts) []State {
	var states []State
	if f.social.activity == ActivityLow {
		states = append(states, StateWithdrawn)
	}
	for _, m := range f.recentMoods {
		if positiveMoods[m] {
			states = append(states, StateEnergized)
			break
		}
	}
	for _, t := range f.tools {
		if t.tool == "journal" {
			states = append(states, StateReflective)
			break
		}
	}
	if len(states) > 2 {
		states = states[:2]
	}
	return states
}

func confidence(signalCount int) float64 {
	c := float64(signalCount) / 100
	if c < minConfidence {
		return minConfidence
	}
	if c > maxConfidence {
		return maxConfidence
	}
	return c
}

func bucketHour(hour int) TimeOfDay {
	switch {
	case hour >= 5 && hour < 12:
		return Morning
	case hour >= 12 && hour < 17:
		return Afternoon
	case hour >= 17 && hour < 22:
		return Evening
	default:
		return LateNight
	}
}

// recentMoods returns the last 5 mood labels, oldest-first.
func recentMoods(window []signals.Signal) []string {
	var moods []string
	for _, s := range window {
		if s.Kind == signals.KindMoodCheckIn && s.Payload.Emotion != "" {
			moods = append(moods, s.Payload.Emotion)
		}
	}
	if len(moods) > 5 {
		moods = moods[len(moods)-5:]
	}
	return moods
}

// toolUsage counts tool_usage signals per tool, most used first.
func toolUsage(window []signals.Signal) []toolCount {
	counts := make(map[string]int)
	for _, s := range window {
		if s.Kind == signals.KindToolUsage && s.Payload.Tool != "" {
			counts[s.Payload.Tool]++
		}
	}
	tools := make([]toolCount, 0, len(counts))
	for tool, count := range counts {
		tools = append(tools, toolCount{tool, count})
	}
	sort.Slice(tools, func(i, j int) bool {
		if tools[i].count != tools[j].count {
			return tools[i].count > tools[j].count
		}
		return tools[i].tool < tools[j].tool
	})
	return tools
}

func rankedTools(tools []toolCount) []string {
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.tool
	}
	return names
}

// socialActivity grades the window by the total of messages, reads, and
// authored posts. Posts come from tool_usage(post) signals.
func socialActivity(window []signals.Signal) socialBehavior {
	var b socialBehavior
	for _, s := range window {
		switch s.Kind {
		case signals.KindConversationPattern:
			b.messages += s.Payload.MessageCount
		case signals.KindContentDwell:
			b.reads++
		case signals.KindToolUsage:
			if s.Payload.Tool == "post" {
				b.posts++
			}
		}
	}

	total := b.messages + b.reads + b.posts
	switch {
	case total > 20:
		b.activity = ActivityHigh
	case total > 5:
		b.activity = ActivityMedium
	default:
		b.activity = ActivityLow
	}
	return b
}

func avgPause(window []signals.Signal) float64 {
	var sum int64
	n := 0
	for _, s := range window {
		if s.Kind == signals.KindInteractionPause {
			sum += s.Payload.PauseMs
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func lastScrollSpeed(window []signals.Signal) string {
	speed := "normal"
	for _, s := range window {
		if s.Kind == signals.KindScrollSpeed && s.Payload.Speed != "" {
			speed = s.Payload.Speed
		}
	}
	return speed
}

// echoBeforeMessaging reports whether an echo tool use was immediately
// followed by a conversation signal within the gap window. Using a tool
// meant for reflection right before messaging reads as decision anxiety,
// not casual use. Order matters: the window is timestamp-ascending.
func echoBeforeMessaging(window []signals.Signal) bool {
	for i := 0; i+1 < len(window); i++ {
		cur, next := window[i], window[i+1]
		if cur.Kind != signals.KindToolUsage || cur.Payload.Tool != "echo" {
			continue
		}
		if next.Kind != signals.KindConversationPattern {
			continue
		}
		if next.Timestamp.Sub(cur.Timestamp) < echoToMessageGap {
			return true
		}
	}
	return false
}
