package signals

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Kind identifies what a signal observed. The set is closed: the interpreter
// only understands these seven.
type Kind string

const (
	KindMoodCheckIn         Kind = "mood_checkin"
	KindToolUsage           Kind = "tool_usage"
	KindInteractionPause    Kind = "interaction_pause"
	KindScrollSpeed         Kind = "scroll_speed"
	KindTimeOfDay           Kind = "time_of_day"
	KindConversationPattern Kind = "conversation_pattern"
	KindContentDwell        Kind = "content_dwell"
)

// Payload carries the kind-specific fields of a signal. Only the fields
// relevant to the signal's Kind are populated.
type Payload struct {
	Emotion      string `json:"emotion,omitempty"`        // mood_checkin
	Intensity    int    `json:"intensity,omitempty"`      // mood_checkin
	Tool         string `json:"tool,omitempty"`           // tool_usage
	DurationMs   int64  `json:"duration_ms,omitempty"`    // tool_usage
	Action       string `json:"action,omitempty"`         // interaction_pause, time_of_day
	PauseMs      int64  `json:"pause_ms,omitempty"`       // interaction_pause
	Speed        string `json:"speed,omitempty"`          // scroll_speed
	Hour         int    `json:"hour,omitempty"`           // time_of_day
	TargetUserID string `json:"target_user_id,omitempty"` // conversation_pattern
	MessageCount int    `json:"message_count,omitempty"`  // conversation_pattern
	ContentID    string `json:"content_id,omitempty"`     // content_dwell
	DwellMs      int64  `json:"dwell_ms,omitempty"`       // content_dwell
}

// Signal is a single immutable behavioral event. Signals are never mutated
// after insertion — only appended or bulk-evicted.
type Signal struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
	Kind      Kind      `json:"kind"`
	Payload   Payload   `json:"payload"`
}

func newID() string {
	return ulid.Make().String()
}

// ClassifySpeed buckets a scroll gesture into fast/slow/normal from pixels
// travelled and elapsed time. Thresholds are px/ms.
func ClassifySpeed(distancePx float64, elapsed time.Duration) string {
	ms := float64(elapsed.Milliseconds())
	if ms <= 0 {
		return "normal"
	}
	v := distancePx / ms
	switch {
	case v > 2:
		return "fast"
	case v < 0.2:
		return "slow"
	default:
		return "normal"
	}
}
