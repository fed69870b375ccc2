// Package api exposes the scoring engine and assessment store over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/aiquira/assetrisk/internal/engine"
	"github.com/aiquira/assetrisk/internal/geo"
	"github.com/aiquira/assetrisk/internal/model"
	"github.com/aiquira/assetrisk/internal/monitoring"
	"github.com/aiquira/assetrisk/internal/store"
)

// Server handles the assessment API.
type Server struct {
	engine  *engine.Engine
	store   store.Store
	locator *geo.Locator
}

// NewServer builds a server. locator may be nil when flood-zone lookup
// is not configured.
func NewServer(eng *engine.Engine, st store.Store, locator *geo.Locator) *Server {
	return &Server{engine: eng, store: st, locator: locator}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router(limit RateLimit) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(throttle(limit))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/assessments", s.handleCreateAssessment)
		r.Get("/assessments", s.handleListAssessments)
		r.Get("/assessments/stats", s.handleStats)
		r.Get("/assessments/{id}", s.handleGetAssessment)
		r.Get("/assessments/{id}/score", s.handleGetScore)
		r.Get("/assessments/{id}/issues", s.handleGetIssues)
		r.Get("/assessments/{id}/recommendations", s.handleGetRecommendations)
		r.Patch("/issues/{id}", s.handleUpdateIssue)
		r.Patch("/recommendations/{id}", s.handleUpdateRecommendation)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreateAssessment scores the posted property record and persists
// the resulting assessment.
func (s *Server) handleCreateAssessment(w http.ResponseWriter, r *http.Request) {
	var rec model.PropertyRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if rec.ID == "" {
		writeError(w, http.StatusBadRequest, "property id is required")
		return
	}

	if s.locator != nil {
		s.locator.EnrichRecord(&rec)
	}

	a, err := s.engine.ScoreProperty(&rec)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.store.CreateAssessment(r.Context(), a); err != nil {
		zap.L().Error("persist assessment", zap.String("property", rec.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to persist assessment")
		return
	}

	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := store.AssessmentFilter{
		PropertyID: q.Get("property"),
		Level:      model.RiskLevel(q.Get("level")),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		filter.Offset = n
	}

	switch filter.Level {
	case "", model.RiskLow, model.RiskMedium, model.RiskHigh:
	default:
		writeError(w, http.StatusBadRequest, "invalid level")
		return
	}

	assessments, err := s.store.ListAssessments(r.Context(), filter)
	if err != nil {
		zap.L().Error("list assessments", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list assessments")
		return
	}
	if assessments == nil {
		assessments = []*model.RiskAssessment{}
	}

	writeJSON(w, http.StatusOK, assessments)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap, err := monitoring.NewCollector(s.store).Collect(r.Context())
	if err != nil {
		zap.L().Error("collect stats", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to collect stats")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	a, ok := s.loadAssessment(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleGetScore(w http.ResponseWriter, r *http.Request) {
	a, ok := s.loadAssessment(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":      a.ID,
		"score":   a.Score,
		"level":   a.Level,
		"factors": a.Factors,
	})
}

func (s *Server) handleGetIssues(w http.ResponseWriter, r *http.Request) {
	a, ok := s.loadAssessment(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, a.Issues)
}

func (s *Server) handleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	a, ok := s.loadAssessment(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, a.Recommendations)
}

type statusUpdate struct {
	Status string `json:"status"`
}

func (s *Server) handleUpdateIssue(w http.ResponseWriter, r *http.Request) {
	var req statusUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status := model.IssueStatus(req.Status)
	switch status {
	case model.IssueOpen, model.IssueInProgress, model.IssueResolved:
	default:
		writeError(w, http.StatusBadRequest, "invalid issue status")
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.store.UpdateIssueStatus(r.Context(), id, status); err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "issue not found")
			return
		}
		zap.L().Error("update issue", zap.String("issue", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update issue")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": req.Status})
}

func (s *Server) handleUpdateRecommendation(w http.ResponseWriter, r *http.Request) {
	var req statusUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status := model.RecommendationStatus(req.Status)
	switch status {
	case model.RecPending, model.RecApproved, model.RecRejected, model.RecCompleted:
	default:
		writeError(w, http.StatusBadRequest, "invalid recommendation status")
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.store.UpdateRecommendationStatus(r.Context(), id, status); err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "recommendation not found")
			return
		}
		zap.L().Error("update recommendation", zap.String("recommendation", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update recommendation")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": req.Status})
}

func (s *Server) loadAssessment(w http.ResponseWriter, r *http.Request) (*model.RiskAssessment, bool) {
	id := chi.URLParam(r, "id")
	a, err := s.store.GetAssessment(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "assessment not found")
			return nil, false
		}
		zap.L().Error("get assessment", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load assessment")
		return nil, false
	}
	return a, true
}

func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "not found")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
