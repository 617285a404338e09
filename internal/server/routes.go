package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quietloop/undercurrent/internal/decide"
	"github.com/quietloop/undercurrent/internal/metrics"
	"github.com/quietloop/undercurrent/internal/signals"
)

// Tracking handlers. Every endpoint answers 201 with the same body whether
// or not the signal survived the meaningful-signal filter — callers must
// not be able to probe the filter thresholds.

func (s *Server) handleTrackMood(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID    string `json:"user_id"`
		Emotion   string `json:"emotion"`
		Intensity int    `json:"intensity"`
	}
	if !decodeTrack(w, r, &req, &req.UserID) {
		return
	}
	s.recordOutcome(signals.KindMoodCheckIn, s.store.TrackMoodCheckIn(req.UserID, req.Emotion, req.Intensity))
	trackOK(w)
}

func (s *Server) handleTrackTool(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID     string `json:"user_id"`
		Tool       string `json:"tool"`
		DurationMs int64  `json:"duration_ms"`
	}
	if !decodeTrack(w, r, &req, &req.UserID) {
		return
	}
	s.recordOutcome(signals.KindToolUsage, s.store.TrackToolUsage(req.UserID, req.Tool, req.DurationMs))
	trackOK(w)
}

func (s *Server) handleTrackPause(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID  string `json:"user_id"`
		Action  string `json:"action"`
		PauseMs int64  `json:"pause_ms"`
	}
	if !decodeTrack(w, r, &req, &req.UserID) {
		return
	}
	s.recordOutcome(signals.KindInteractionPause, s.store.TrackInteractionPause(req.UserID, req.Action, req.PauseMs))
	trackOK(w)
}

func (s *Server) handleTrackScroll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		Speed  string `json:"speed"`
	}
	if !decodeTrack(w, r, &req, &req.UserID) {
		return
	}
	switch req.Speed {
	case "fast", "slow", "normal":
	default:
		http.Error(w, `{"error":"speed must be fast, slow, or normal"}`, http.StatusBadRequest)
		return
	}
	s.recordOutcome(signals.KindScrollSpeed, s.store.TrackScrollSpeed(req.UserID, req.Speed))
	trackOK(w)
}

func (s *Server) handleTrackConversation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID       string `json:"user_id"`
		TargetUserID string `json:"target_user_id"`
		MessageCount int    `json:"message_count"`
	}
	if !decodeTrack(w, r, &req, &req.UserID) {
		return
	}
	s.recordOutcome(signals.KindConversationPattern, s.store.TrackConversationPattern(req.UserID, req.TargetUserID, req.MessageCount))
	trackOK(w)
}

func (s *Server) handleTrackDwell(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID    string `json:"user_id"`
		ContentID string `json:"content_id"`
		DwellMs   int64  `json:"dwell_ms"`
	}
	if !decodeTrack(w, r, &req, &req.UserID) {
		return
	}
	s.recordOutcome(signals.KindContentDwell, s.store.TrackContentDwell(req.UserID, req.ContentID, req.DwellMs))
	trackOK(w)
}

func (s *Server) handleTrackTimeOfDay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		Action string `json:"action"`
	}
	if !decodeTrack(w, r, &req, &req.UserID) {
		return
	}
	s.recordOutcome(signals.KindTimeOfDay, s.store.TrackTimeOfDay(req.UserID, req.Action))
	trackOK(w)
}

// Feed-facing reads. Responses carry opaque decisions and caller-supplied
// content only — no scores, weights, or interpreted state.

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req struct {
		ContentPool []decide.ContentItem `json:"content_pool"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	metrics.FeedRequests.Inc()
	s.algo.DetectAnomalies(userID)

	feed := s.algo.GetPersonalizedFeed(userID, req.ContentPool)
	if feed == nil {
		feed = []decide.ContentItem{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"count":   len(feed),
		"content": feed,
	})
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	tools := s.algo.GetSuggestedTools(userID)
	if tools == nil {
		tools = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"tools": tools})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"intensity": s.algo.GetNotificationIntensity(userID),
	})
}

// decodeTrack decodes a tracking request body and enforces the user_id
// field. Returns false after writing the error response.
func decodeTrack(w http.ResponseWriter, r *http.Request, req any, userID *string) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return false
	}
	if *userID == "" {
		http.Error(w, `{"error":"user_id required"}`, http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) recordOutcome(kind signals.Kind, recorded bool) {
	if recorded {
		metrics.SignalsRecorded.WithLabelValues(string(kind)).Inc()
	} else {
		metrics.SignalsFiltered.WithLabelValues(string(kind)).Inc()
	}
}

func trackOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
