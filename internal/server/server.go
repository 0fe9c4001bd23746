package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mkrantz/psyche/internal/engine"
	"github.com/mkrantz/psyche/internal/store"
)

// Server is the psyche HTTP API server.
type Server struct {
	db       *store.DB
	engine   *engine.Engine
	promoter engine.Promoter
	router   chi.Router
	version  string
	started  time.Time
}

// New creates a new Server around the given engine and version string.
func New(eng *engine.Engine, version string) *Server {
	s := &Server{
		db:       eng.DB,
		engine:   eng,
		promoter: engine.NewLocalPromoter(),
		version:  version,
		started:  time.Now(),
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
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/report", s.handleReport)

		r.Post("/events", s.handleLogEvent)
		r.Get("/events", s.handleListEvents)

		r.Post("/queue", s.handleQueueItem)
		r.Get("/queue", s.handleListQueue)
		r.Post("/queue/surface", s.handleSurfaceQueueItem)
		r.Post("/queue/dismiss", s.handleDismissQueueItem)

		r.Post("/patterns", s.handleRecordPattern)
		r.Get("/patterns/promotable", s.handleListPromotable)
		r.Post("/patterns/{patternID}/promote", s.handlePromotePattern)

		r.Get("/mood", s.handleMood)

		r.Get("/coherence", s.handleCoherence)
		r.Post("/coherence", s.handleMeasureCoherence)
		r.Get("/coherence/history", s.handleCoherenceHistory)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.db.Path,
	})
}
