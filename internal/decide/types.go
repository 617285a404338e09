package decide

import "time"

// ScrollPace is the pacing hint the feed UI honors.
type ScrollPace string

const (
	PaceSlow   ScrollPace = "slow"
	PaceNormal ScrollPace = "normal"
	PaceFast   ScrollPace = "fast"
)

// Intensity grades how aggressively the app may notify.
type Intensity string

const (
	IntensityMinimal Intensity = "minimal"
	IntensityLow     Intensity = "low"
	IntensityMedium  Intensity = "medium"
	IntensityHigh    Intensity = "high"
)

// FeedDecision is the content-shaping policy for one user right now.
// It is a pure function of UserState.
type FeedDecision struct {
	PostsPerPage          int
	ScrollPace            ScrollPace
	ContentTypes          []string
	ShowGroundingWidgets  bool
	NotificationIntensity Intensity
	SuggestedTools        []string
}

// ContentItem is a candidate feed entry. Owned by the caller; the engine
// scores it but never mutates it.
type ContentItem struct {
	ID                    string    `json:"id"`
	Type                  string    `json:"type,omitempty"`
	Content               string    `json:"content,omitempty"`
	Tone                  string    `json:"tone,omitempty"`
	Tags                  []string  `json:"tags,omitempty"`
	AuthorID              string    `json:"author_id,omitempty"`
	IsFromCloseConnection bool      `json:"is_from_close_connection,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
}

// ContentScore is the per-item scoring result of one ranking pass.
// Ephemeral: computed per call and stripped before anything leaves the
// facade.
type ContentScore struct {
	ContentID  string
	FinalScore float64
	Breakdown  Breakdown
}

// Breakdown holds the individual factor scores behind a final score.
type Breakdown struct {
	Relevance      float64
	EmotionalMatch float64
	Timing         float64
	Randomness     float64
}

// Weights are the ranking coefficients. The table is a tunable, versioned
// policy: callers must never assume fixed coefficients.
type Weights struct {
	Relevance      float64
	EmotionalMatch float64
	Timing         float64
	Randomness     float64
}
