package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/adpilot/internal/domain"
	"github.com/ignite/adpilot/internal/learning"
	"github.com/ignite/adpilot/internal/pkg/logger"
)

func (s *Server) registerLearningRoutes(r chi.Router) {
	r.Route("/learnings", func(r chi.Router) {
		r.Get("/", s.handleListLearnings)
		r.Post("/", s.handleCreateLearning)
		r.Get("/pending", s.handlePendingLearnings)
		r.Post("/derive", s.handleDeriveLearnings)
		r.Put("/{learningID}", s.handleUpdateLearning)
		r.Delete("/{learningID}", s.handleDeleteLearning)
		r.Post("/{learningID}/approve", s.handleApproveLearning)
	})
}

func (s *Server) handleListLearnings(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		respondError(w, http.StatusBadRequest, "account_id is required")
		return
	}
	rows, err := s.learnings.List(r.Context(), accountID)
	if err != nil {
		logger.Error("learning list failed", "account", accountID, "error", err.Error())
		respondError(w, http.StatusInternalServerError, "list failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"learnings": rows})
}

func (s *Server) handleCreateLearning(w http.ResponseWriter, r *http.Request) {
	var l domain.Learning
	if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	created, err := s.learnings.Create(r.Context(), l)
	if err != nil {
		logger.Error("learning create failed", "account", l.AccountID, "error", err.Error())
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateLearning(w http.ResponseWriter, r *http.Request) {
	var l domain.Learning
	if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	l.ID = chi.URLParam(r, "learningID")
	updated, err := s.learnings.Update(r.Context(), l)
	if errors.Is(err, learning.ErrNotFound) {
		respondError(w, http.StatusNotFound, "learning not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "update failed")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteLearning(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	id := chi.URLParam(r, "learningID")
	err := s.learnings.Delete(r.Context(), accountID, id)
	if errors.Is(err, learning.ErrNotFound) {
		respondError(w, http.StatusNotFound, "learning not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handlePendingLearnings(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		respondError(w, http.StatusBadRequest, "account_id is required")
		return
	}
	rows, err := s.learnings.GetPending(r.Context(), accountID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "list failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"pending": rows})
}

func (s *Server) handleApproveLearning(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	id := chi.URLParam(r, "learningID")
	ok, err := s.learnings.ApprovePending(r.Context(), accountID, id)
	if err != nil {
		logger.Error("learning approval failed", "learning", id, "error", err.Error())
		respondError(w, http.StatusInternalServerError, "approval failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": ok})
}

type deriveRequest struct {
	AccountID string `json:"account_id"`
}

func (s *Server) handleDeriveLearnings(w http.ResponseWriter, r *http.Request) {
	var req deriveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccountID == "" {
		respondError(w, http.StatusBadRequest, "account_id is required")
		return
	}
	created, err := s.learnings.DeriveFromOutcomes(r.Context(), req.AccountID)
	if err != nil {
		logger.Error("derive failed", "account", req.AccountID, "error", err.Error())
		respondError(w, http.StatusInternalServerError, "derive failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"created": created,
		"count":   len(created),
	})
}
