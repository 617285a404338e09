package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/quietloop/undercurrent/internal/algorithm"
	"github.com/quietloop/undercurrent/internal/signals"
)

// Server is the undercurrent HTTP API server. It exposes the tracking
// endpoints and the three feed-facing reads; everything else about the
// engine stays behind the facade.
type Server struct {
	store   *signals.Store
	algo    *algorithm.Algorithm
	log     *logrus.Entry
	router  chi.Router
	version string
	started time.Time
}

// New creates a new Server over the given store and facade.
func New(store *signals.Store, algo *algorithm.Algorithm, log *logrus.Entry, version string) *Server {
	s := &Server{
		store:   store,
		algo:    algo,
		log:     log,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/signals", func(r chi.Router) {
			r.Post("/mood", s.handleTrackMood)
			r.Post("/tool", s.handleTrackTool)
			r.Post("/pause", s.handleTrackPause)
			r.Post("/scroll", s.handleTrackScroll)
			r.Post("/conversation", s.handleTrackConversation)
			r.Post("/dwell", s.handleTrackDwell)
			r.Post("/timeofday", s.handleTrackTimeOfDay)
		})

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Post("/feed", s.handleFeed)
			r.Get("/tools", s.handleTools)
			r.Get("/notifications", s.handleNotifications)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"version":  s.version,
		"uptime":   time.Since(s.started).Seconds(),
		"buffered": s.store.Len(),
	})
}
