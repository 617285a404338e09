package signals

import (
	"sync"
	"time"
)

// Meaningful-signal thresholds. Short pauses and glancing dwells carry no
// inferential value and would dilute later averaging, so they are filtered
// at the write boundary.
const (
	minMeaningfulPauseMs = 2000
	minMeaningfulDwellMs = 3000
)

// DefaultCapacity bounds the buffer per user.
const DefaultCapacity = 1000

// Store is an append-only, bounded, in-memory log of behavioral signals.
// Each user gets their own FIFO buffer of at most cap signals, so one very
// active user can never evict another user's history. Nothing here touches
// disk: restart loses all signals, which is fine for a short-window
// behavioral heuristic.
type Store struct {
	mu      sync.Mutex
	byUser  map[string][]Signal
	cap     int
	evicted uint64

	// Now is the clock used for timestamps and retention. Tests override it.
	Now func() time.Time
}

// NewStore creates a Store with the given per-user capacity.
// capacity <= 0 falls back to DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		byUser: make(map[string][]Signal),
		cap:    capacity,
		Now:    time.Now,
	}
}

// Record appends a signal, evicting the user's oldest entry once the
// per-user capacity is exceeded.
func (s *Store) Record(sig Signal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := append(s.byUser[sig.UserID], sig)
	if len(buf) > s.cap {
		over := len(buf) - s.cap
		buf = append([]Signal(nil), buf[over:]...)
		s.evicted += uint64(over)
	}
	s.byUser[sig.UserID] = buf
}

// Query returns the most recent limit signals for a user, oldest-first.
// The returned slice is a copy; callers can't corrupt the buffer.
func (s *Store) Query(userID string, limit int) []Signal {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := s.byUser[userID]
	if limit > 0 && len(buf) > limit {
		buf = buf[len(buf)-limit:]
	}
	out := make([]Signal, len(buf))
	copy(out, buf)
	return out
}

// Count returns the number of buffered signals for a user.
func (s *Store) Count(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byUser[userID])
}

// Len returns the total number of buffered signals across all users.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, buf := range s.byUser {
		n += len(buf)
	}
	return n
}

// Evicted returns the number of signals dropped by capacity eviction since
// the store was created.
func (s *Store) Evicted() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evicted
}

// EvictOlderThan deletes all signals older than the given number of days,
// independent of the capacity bound. Returns the number removed.
func (s *Store) EvictOlderThan(days int) int {
	cutoff := s.Now().AddDate(0, 0, -days)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for userID, buf := range s.byUser {
		kept := buf[:0:0]
		for _, sig := range buf {
			if sig.Timestamp.After(cutoff) {
				kept = append(kept, sig)
			}
		}
		removed += len(buf) - len(kept)
		if len(kept) == 0 {
			delete(s.byUser, userID)
		} else {
			s.byUser[userID] = kept
		}
	}
	return removed
}

// Tracking API. These are the only write paths; each builds a well-formed
// signal and applies the meaningful-signal filter. The boolean reports
// whether the signal was recorded (false = filtered), so callers can count
// drops without the store knowing about metrics.

// TrackMoodCheckIn records an emoji mood check-in.
func (s *Store) TrackMoodCheckIn(userID, emotion string, intensity int) bool {
	s.Record(Signal{
		ID:        newID(),
		UserID:    userID,
		Timestamp: s.Now(),
		Kind:      KindMoodCheckIn,
		Payload:   Payload{Emotion: emotion, Intensity: intensity},
	})
	return true
}

// TrackToolUsage records use of a wellness tool.
func (s *Store) TrackToolUsage(userID, tool string, durationMs int64) bool {
	s.Record(Signal{
		ID:        newID(),
		UserID:    userID,
		Timestamp: s.Now(),
		Kind:      KindToolUsage,
		Payload:   Payload{Tool: tool, DurationMs: durationMs},
	})
	return true
}

// TrackInteractionPause records a hesitation before an action.
// Pauses of 2s or less are dropped.
func (s *Store) TrackInteractionPause(userID, action string, pauseMs int64) bool {
	if pauseMs <= minMeaningfulPauseMs {
		return false
	}
	s.Record(Signal{
		ID:        newID(),
		UserID:    userID,
		Timestamp: s.Now(),
		Kind:      KindInteractionPause,
		Payload:   Payload{Action: action, PauseMs: pauseMs},
	})
	return true
}

// TrackScrollSpeed records a fast/slow/normal scroll gesture.
func (s *Store) TrackScrollSpeed(userID, speed string) bool {
	s.Record(Signal{
		ID:        newID(),
		UserID:    userID,
		Timestamp: s.Now(),
		Kind:      KindScrollSpeed,
		Payload:   Payload{Speed: speed},
	})
	return true
}

// TrackConversationPattern records repeated messaging toward another user.
func (s *Store) TrackConversationPattern(userID, targetUserID string, messageCount int) bool {
	s.Record(Signal{
		ID:        newID(),
		UserID:    userID,
		Timestamp: s.Now(),
		Kind:      KindConversationPattern,
		Payload:   Payload{TargetUserID: targetUserID, MessageCount: messageCount},
	})
	return true
}

// TrackContentDwell records time spent on a piece of content.
// Dwells of 3s or less are dropped.
func (s *Store) TrackContentDwell(userID, contentID string, dwellMs int64) bool {
	if dwellMs <= minMeaningfulDwellMs {
		return false
	}
	s.Record(Signal{
		ID:        newID(),
		UserID:    userID,
		Timestamp: s.Now(),
		Kind:      KindContentDwell,
		Payload:   Payload{ContentID: contentID, DwellMs: dwellMs},
	})
	return true
}

// TrackTimeOfDay records an app usage ping with the hour it happened.
func (s *Store) TrackTimeOfDay(userID, action string) bool {
	now := s.Now()
	s.Record(Signal{
		ID:        newID(),
		UserID:    userID,
		Timestamp: now,
		Kind:      KindTimeOfDay,
		Payload:   Payload{Action: action, Hour: now.Hour()},
	})
	return true
}
