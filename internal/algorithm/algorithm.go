// Package algorithm is the only surface external callers touch. It wires
// store → interpreter → decision engine and guarantees that no score,
// weight, state, or reason string ever crosses the boundary: behavior is
// observable, reasoning is not.
package algorithm

import (
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quietloop/undercurrent/internal/decide"
	"github.com/quietloop/undercurrent/internal/interpret"
	"github.com/quietloop/undercurrent/internal/metrics"
	"github.com/quietloop/undercurrent/internal/signals"
)

const (
	// defaultBand is the weight-variation band before the first rotation.
	defaultBand = 0.05

	// shuffleFraction of adjacent ranks are swapped per feed to blunt
	// exact-order gaming by content authors.
	shuffleFraction = 0.10

	// extraToolChance is the probability of injecting one random catalog
	// tool into suggestions, so suggestions never become a predictable
	// fingerprint of inferred state.
	extraToolChance = 0.3

	// anomalyWindow / anomalyGap / anomalyThreshold: more than
	// anomalyThreshold adjacent signal pairs under anomalyGap apart within
	// the last anomalyWindow signals reads as bot cadence.
	anomalyWindow    = 100
	anomalyGap       = 100 * time.Millisecond
	anomalyThreshold = 10
)

// toolCatalog is the fixed pool random suggestions are drawn from.
var toolCatalog = []string{"echo", "journal", "breathe", "meditate", "explore"}

// Algorithm orchestrates the full pipeline for external callers.
type Algorithm struct {
	store  *signals.Store
	interp *interpret.Interpreter
	log    *logrus.Entry

	// mu guards rng and band. Ranking reads band once per call, not per
	// item, so one pass never sees a torn rotation.
	mu   sync.Mutex
	rng  *rand.Rand
	band float64

	// Now is the clock used for timing scores. Tests override it.
	Now func() time.Time
}

// Option configures an Algorithm.
type Option func(*Algorithm)

// WithSeed pins the random source. Production omits it; tests use it to
// make ranking deterministic.
func WithSeed(seed int64) Option {
	return func(a *Algorithm) {
		a.rng = rand.New(rand.NewSource(seed))
	}
}

// WithClock overrides the clock for the facade and its interpreter.
func WithClock(now func() time.Time) Option {
	return func(a *Algorithm) {
		a.Now = now
		a.interp.Now = now
	}
}

// New creates an Algorithm over the given store.
func New(store *signals.Store, log *logrus.Entry, opts ...Option) *Algorithm {
	a := &Algorithm{
		store:  store,
		interp: interpret.New(store),
		log:    log,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		band:   defaultBand,
		Now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// GetPersonalizedFeed ranks the caller's content pool for a user and
// returns the page worth showing, in order. Only caller-supplied content
// comes back — never scores, weights, or the interpreted state.
func (a *Algorithm) GetPersonalizedFeed(userID string, pool []decide.ContentItem) []decide.ContentItem {
	state := a.interp.Interpret(userID)
	decision := decide.DecideFeedBehavior(state)

	a.mu.Lock()
	scores := decide.RankContent(pool, state, a.Now(), a.rng)
	a.jitterScores(scores)
	a.mu.Unlock()

	if len(scores) > decision.PostsPerPage {
		scores = scores[:decision.PostsPerPage]
	}

	a.mu.Lock()
	a.shuffleAdjacent(scores)
	a.mu.Unlock()

	byID := make(map[string]decide.ContentItem, len(pool))
	for _, item := range pool {
		byID[item.ID] = item
	}
	feed := make([]decide.ContentItem, 0, len(scores))
	for _, sc := range scores {
		if item, ok := byID[sc.ContentID]; ok {
			feed = append(feed, item)
		}
	}
	return feed
}

// GetSuggestedTools returns tool suggestions for a user's current state,
// occasionally salted with a random catalog tool.
func (a *Algorithm) GetSuggestedTools(userID string) []string {
	state := a.interp.Interpret(userID)
	decision := decide.DecideFeedBehavior(state)

	tools := append([]string(nil), decision.SuggestedTools...)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.rng.Float64() < extraToolChance {
		extra := toolCatalog[a.rng.Intn(len(toolCatalog))]
		if !contains(tools, extra) {
			tools = append(tools, extra)
		}
	}
	return tools
}

// GetNotificationIntensity returns how aggressively the app may notify
// this user right now.
func (a *Algorithm) GetNotificationIntensity(userID string) decide.Intensity {
	state := a.interp.Interpret(userID)
	return decide.DecideFeedBehavior(state).NotificationIntensity
}

// RotateWeights re-randomizes the weight-variation band. Called
// periodically by whoever owns the scheduler; the engine itself never
// starts timers. If rotation stops firing the last band simply stays in
// effect.
func (a *Algorithm) RotateWeights() {
	a.mu.Lock()
	a.band = 0.03 + a.rng.Float64()*0.07
	band := a.band
	a.mu.Unlock()

	metrics.WeightRotations.Inc()
	a.log.WithFields(logrus.Fields{
		"band":            band,
		"weights_version": decide.WeightsVersion,
	}).Debug("rotated ranking weight band")
}

// DetectAnomalies scans a user's recent signal cadence for bot-like
// bursts. Advisory only: it logs and counts, never blocks a session, and
// the result must never reach the end user.
func (a *Algorithm) DetectAnomalies(userID string) bool {
	window := a.store.Query(userID, anomalyWindow)

	rapid := 0
	for i := 1; i < len(window); i++ {
		if window[i].Timestamp.Sub(window[i-1].Timestamp) < anomalyGap {
			rapid++
		}
	}

	if rapid > anomalyThreshold {
		metrics.AnomaliesDetected.Inc()
		a.log.WithFields(logrus.Fields{
			"user_id":     userID,
			"rapid_pairs": rapid,
		}).Warn("suspicious signal cadence")
		return true
	}
	return false
}

// jitterScores perturbs each final score by up to ±band/2, making the
// exact coefficients a moving target. Scores are re-sorted afterwards so
// the jitter can actually reorder near-ties. Caller holds mu.
func (a *Algorithm) jitterScores(scores []decide.ContentScore) {
	for i := range scores {
		scores[i].FinalScore *= 1 + (a.rng.Float64()-0.5)*a.band
	}
	for i := 1; i < len(scores); i++ {
		for j := i; j > 0 && scores[j].FinalScore > scores[j-1].FinalScore; j-- {
			scores[j], scores[j-1] = scores[j-1], scores[j]
		}
	}
}

// shuffleAdjacent swaps a small fraction of neighboring ranks at random.
// Caller holds mu.
func (a *Algorithm) shuffleAdjacent(scores []decide.ContentScore) {
	if len(scores) < 2 {
		return
	}
	swaps := int(float64(len(scores)) * shuffleFraction)
	for i := 0; i < swaps; i++ {
		idx := a.rng.Intn(len(scores) - 1)
		scores[idx], scores[idx+1] = scores[idx+1], scores[idx]
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
