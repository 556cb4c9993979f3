package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/adpilot/internal/cache"
	"github.com/ignite/adpilot/internal/engine"
	"github.com/ignite/adpilot/internal/learning"
	"github.com/ignite/adpilot/internal/tracker"
)

// Server wires the recommendation core to its HTTP surface. Routing,
// authentication, and rate limiting beyond CORS live in front of this
// service.
type Server struct {
	engine    *engine.Engine
	tracker   *tracker.Tracker
	learnings *learning.Store
	cache     *cache.Cache
	router    chi.Router
}

// NewServer creates the API server and mounts all routes.
func NewServer(eng *engine.Engine, trk *tracker.Tracker, store *learning.Store, c *cache.Cache) *Server {
	s := &Server{
		engine:    eng,
		tracker:   trk,
		learnings: store,
		cache:     c,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		s.registerRecommendationRoutes(r)
		s.registerLearningRoutes(r)
	})

	s.router = r
	return s
}

// Handler returns the mounted router.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
