package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/quietloop/undercurrent/internal/signals"
)

func TestTrackEndpoints(t *testing.T) {
	srv, store := testServer(t)

	posts := []struct {
		path string
		body string
		kind signals.Kind
	}{
		{"/api/signals/mood", `{"user_id":"ada","emotion":"calm","intensity":2}`, signals.KindMoodCheckIn},
		{"/api/signals/tool", `{"user_id":"ada","tool":"journal","duration_ms":45000}`, signals.KindToolUsage},
		{"/api/signals/pause", `{"user_id":"ada","action":"send_message","pause_ms":4000}`, signals.KindInteractionPause},
		{"/api/signals/scroll", `{"user_id":"ada","speed":"slow"}`, signals.KindScrollSpeed},
		{"/api/signals/conversation", `{"user_id":"ada","target_user_id":"bea","message_count":3}`, signals.KindConversationPattern},
		{"/api/signals/dwell", `{"user_id":"ada","content_id":"post-1","dwell_ms":8000}`, signals.KindContentDwell},
		{"/api/signals/timeofday", `{"user_id":"ada","action":"app_open"}`, signals.KindTimeOfDay},
	}

	for _, p := range posts {
		w := doJSON(t, srv, "POST", p.path, p.body)
		if w.Code != http.StatusCreated {
			t.Errorf("%s: status = %d, want %d (body %s)", p.path, w.Code, http.StatusCreated, w.Body.String())
		}
	}

	got := store.Query("ada", 0)
	if len(got) != len(posts) {
		t.Fatalf("store has %d signals, want %d", len(got), len(posts))
	}
	for i, sig := range got {
		if sig.Kind != posts[i].kind {
			t.Errorf("signal %d kind = %q, want %q", i, sig.Kind, posts[i].kind)
		}
	}
}

func TestTrackValidation(t *testing.T) {
	srv, _ := testServer(t)

	tests := []struct {
		name string
		path string
		body string
	}{
		{"missing user_id", "/api/signals/mood", `{"emotion":"calm"}`},
		{"invalid json", "/api/signals/tool", `{"user_id":`},
		{"bad scroll speed", "/api/signals/scroll", `{"user_id":"ada","speed":"warp"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, srv, "POST", tt.path, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestFilteredSignalsIndistinguishable(t *testing.T) {
	srv, store := testServer(t)

	kept := doJSON(t, srv, "POST", "/api/signals/pause", `{"user_id":"ada","action":"send","pause_ms":5000}`)
	dropped := doJSON(t, srv, "POST", "/api/signals/pause", `{"user_id":"ada","action":"send","pause_ms":500}`)

	// Same status, same body: the filter threshold is not probeable.
	if kept.Code != dropped.Code {
		t.Errorf("status differs: kept %d, dropped %d", kept.Code, dropped.Code)
	}
	if kept.Body.String() != dropped.Body.String() {
		t.Errorf("body differs: kept %q, dropped %q", kept.Body.String(), dropped.Body.String())
	}

	// But only the meaningful pause landed.
	got := store.Query("ada", 0)
	if len(got) != 1 {
		t.Fatalf("store has %d signals, want 1", len(got))
	}
	if got[0].Payload.PauseMs != 5000 {
		t.Errorf("stored pause = %d, want 5000", got[0].Payload.PauseMs)
	}
}

func TestFeedEndpoint(t *testing.T) {
	srv, _ := testServer(t)

	body := `{"content_pool":[
		{"id":"a","content":"hello","tone":"calm","created_at":"2026-03-14T14:00:00Z"},
		{"id":"b","content":"world","tone":"exciting","created_at":"2026-03-14T13:00:00Z"},
		{"id":"c","content":"again","tone":"supportive","created_at":"2026-03-12T10:00:00Z"}
	]}`

	w := doJSON(t, srv, "POST", "/api/users/ada/feed", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
	}

	var resp struct {
		Count   int              `json:"count"`
		Content []map[string]any `json:"content"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Count != 3 || len(resp.Content) != 3 {
		t.Fatalf("count = %d, content len = %d, want 3", resp.Count, len(resp.Content))
	}

	// Only caller-supplied content fields may come back. Scores, weights,
	// and interpreted state must never leak.
	allowed := map[string]bool{
		"id": true, "type": true, "content": true, "tone": true, "tags": true,
		"author_id": true, "is_from_close_connection": true, "created_at": true,
	}
	for _, item := range resp.Content {
		for key := range item {
			if !allowed[key] {
				t.Errorf("feed item leaked field %q", key)
			}
		}
	}
}

func TestFeedEndpointInvalidJSON(t *testing.T) {
	srv, _ := testServer(t)

	w := doJSON(t, srv, "POST", "/api/users/ada/feed", `{"content_pool":`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestFeedEndpointEmptyPool(t *testing.T) {
	srv, _ := testServer(t)

	w := doJSON(t, srv, "POST", "/api/users/ada/feed", `{"content_pool":[]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Count   int   `json:"count"`
		Content []any `json:"content"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Count != 0 || resp.Content == nil {
		t.Errorf("want empty (not null) content, got count=%d content=%v", resp.Count, resp.Content)
	}
}

func TestToolsEndpoint(t *testing.T) {
	srv, _ := testServer(t)

	// Heavy mood run: heavy preset tools, possibly plus one catalog tool.
	for i := 0; i < 3; i++ {
		doJSON(t, srv, "POST", "/api/signals/mood", `{"user_id":"ada","emotion":"anxious","intensity":3}`)
	}

	w := doJSON(t, srv, "GET", "/api/users/ada/tools", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Tools []string `json:"tools"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(resp.Tools) == 0 {
		t.Error("expected tool suggestions for a heavy state")
	}
}

func TestNotificationsEndpoint(t *testing.T) {
	srv, _ := testServer(t)

	w := doJSON(t, srv, "GET", "/api/users/ghost/notifications", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Intensity string `json:"intensity"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	// A user with no history gets the balanced default.
	if resp.Intensity != "medium" {
		t.Errorf("intensity = %q, want medium", resp.Intensity)
	}
}
