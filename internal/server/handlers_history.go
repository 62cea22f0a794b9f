package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-matcher/internal/db"
	"github.com/jonathan/resume-matcher/internal/types"
)

var validate = validator.New()

// maxMissingSkillsLimit bounds the limit query parameter.
const maxMissingSkillsLimit = 100

// handleSaveHistory stores a caller-supplied scan result.
func (s *Server) handleSaveHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.errorResponse(w, r, &ErrUnavailable{Feature: "history"})
		return
	}

	var req types.SaveHistoryRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	saved, err := s.history.SaveHistory(r.Context(), types.HistoryEntry{
		UserEmail:     req.UserEmail,
		MatchScore:    req.MatchScore,
		SemanticScore: req.SemanticScore,
		MissingSkills: req.MissingSkills,
		MatchedSkills: req.MatchedSkills,
	})
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, saved)
}

// handleListHistory returns a user's scans, newest first.
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	entries, ok := s.loadHistory(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"user_email": r.PathValue("email"),
		"count":      len(entries),
		"entries":    entries,
	})
}

// handleDeleteHistory removes all of a user's scans.
func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	email, ok := s.historyEmail(w, r)
	if !ok {
		return
	}
	deleted, err := s.history.DeleteHistory(r.Context(), email)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"deleted": deleted})
}

// handleMissingSkills returns the skills most often missing across a user's scans.
func (s *Server) handleMissingSkills(w http.ResponseWriter, r *http.Request) {
	limit := db.DefaultTopMissing
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxMissingSkillsLimit {
			s.errorResponse(w, r, &ErrValidation{Field: "limit", Message: "must be an integer between 1 and 100"})
			return
		}
		limit = n
	}

	entries, ok := s.loadHistory(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"scans":  len(entries),
		"skills": db.TopMissingSkills(entries, limit),
	})
}

// handleScoreTrend returns a user's scores in chronological order.
func (s *Server) handleScoreTrend(w http.ResponseWriter, r *http.Request) {
	entries, ok := s.loadHistory(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"points": db.ScoreTrend(entries)})
}

// loadHistory lists the history for the {email} path value, writing the error response on failure.
func (s *Server) loadHistory(w http.ResponseWriter, r *http.Request) ([]types.HistoryEntry, bool) {
	email, ok := s.historyEmail(w, r)
	if !ok {
		return nil, false
	}
	entries, err := s.history.ListHistory(r.Context(), email)
	if err != nil {
		s.errorResponse(w, r, err)
		return nil, false
	}
	return entries, true
}

// historyEmail checks that history is configured and the {email} path value is an address.
func (s *Server) historyEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	if s.history == nil {
		s.errorResponse(w, r, &ErrUnavailable{Feature: "history"})
		return "", false
	}
	email := strings.TrimSpace(r.PathValue("email"))
	if err := validate.Var(email, "required,email"); err != nil {
		s.errorResponse(w, r, &ErrValidation{Field: "email", Message: "must be a valid email address"})
		return "", false
	}
	return email, true
}
