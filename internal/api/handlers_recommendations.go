package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/adpilot/internal/domain"
	"github.com/ignite/adpilot/internal/engine"
	"github.com/ignite/adpilot/internal/pkg/logger"
)

func (s *Server) registerRecommendationRoutes(r chi.Router) {
	r.Route("/recommendations", func(r chi.Router) {
		r.Post("/generate", s.handleGenerate)
		r.Get("/stats", s.handleStats)
		r.Post("/{logID}/feedback", s.handleFeedback)
		r.Post("/{logID}/outcome", s.handleOutcome)
	})
}

type generateRequest struct {
	AccountID string          `json:"account_id"`
	Platform  domain.Platform `json:"platform,omitempty"`
}

type generateResponse struct {
	Recommendations []domain.Recommendation      `json:"recommendations"`
	Summary         domain.RecommendationSummary `json:"summary"`
	Cached          bool                         `json:"cached"`
}

// handleGenerate runs the pipeline and logs the emitted batch. A tracker
// or cache problem never fails the response.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccountID == "" {
		respondError(w, http.StatusBadRequest, "account_id is required")
		return
	}
	platform := req.Platform
	if platform == "" {
		platform = domain.PlatformBoth
	}

	var cached []domain.Recommendation
	if s.cache.GetRecommendations(r.Context(), req.AccountID, string(platform), &cached) {
		respondJSON(w, http.StatusOK, generateResponse{
			Recommendations: cached,
			Summary:         engine.Summarize(cached),
			Cached:          true,
		})
		return
	}

	recs, err := s.engine.Generate(r.Context(), req.AccountID, platform)
	if err != nil {
		logger.Error("recommendation generation failed", "account", req.AccountID, "error", err.Error())
		respondError(w, http.StatusInternalServerError, "generation failed")
		return
	}

	s.tracker.LogRecommendations(r.Context(), req.AccountID, recs)
	s.cache.SetRecommendations(r.Context(), req.AccountID, string(platform), recs)

	respondJSON(w, http.StatusOK, generateResponse{
		Recommendations: recs,
		Summary:         engine.Summarize(recs),
	})
}

// handleStats serves the account's recommendation statistics.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		respondError(w, http.StatusBadRequest, "account_id is required")
		return
	}
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 {
		days = 30
	}

	var cached domain.RecommendationStats
	if s.cache.GetStats(r.Context(), accountID, days, &cached) {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	stats, err := s.tracker.GetStats(r.Context(), accountID, days)
	if err != nil {
		logger.Error("stats aggregation failed", "account", accountID, "error", err.Error())
		respondError(w, http.StatusInternalServerError, "stats unavailable")
		return
	}
	s.cache.SetStats(r.Context(), accountID, days, stats)
	respondJSON(w, http.StatusOK, stats)
}

type feedbackRequest struct {
	AccountID     string           `json:"account_id"`
	Status        domain.LogStatus `json:"status"`
	DismissReason string           `json:"dismiss_reason,omitempty"`
}

// handleFeedback records implemented/dismissed. Responds with a success
// boolean rather than an error status for persistence problems.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	logID := chi.URLParam(r, "logID")
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}

	ok := s.tracker.RecordFeedback(r.Context(), logID, domain.Feedback{
		Status:        req.Status,
		DismissReason: req.DismissReason,
	})
	if ok && req.AccountID != "" {
		s.cache.InvalidateAccount(r.Context(), req.AccountID)
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": ok})
}

type outcomeRequest struct {
	AccountID  string  `json:"account_id"`
	RoasBefore float64 `json:"roas_before"`
	RoasAfter  float64 `json:"roas_after"`
	Notes      string  `json:"notes,omitempty"`
}

// handleOutcome records measured ROAS movement for one log row.
func (s *Server) handleOutcome(w http.ResponseWriter, r *http.Request) {
	logID := chi.URLParam(r, "logID")
	var req outcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}

	ok := s.tracker.RecordOutcome(r.Context(), logID, domain.Outcome{
		RoasBefore: req.RoasBefore,
		RoasAfter:  req.RoasAfter,
		Notes:      req.Notes,
	})
	if ok && req.AccountID != "" {
		s.cache.InvalidateAccount(r.Context(), req.AccountID)
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": ok})
}
