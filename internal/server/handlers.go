package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/resume-matcher/internal/logging"
	"github.com/jonathan/resume-matcher/internal/pipeline"
	"github.com/jonathan/resume-matcher/internal/types"
)

// EvaluateResponse is an evaluation plus the outcome of saving it to history.
type EvaluateResponse struct {
	*types.Evaluation
	HistoryID *uuid.UUID `json:"history_id,omitempty"`
	Warning   string     `json:"warning,omitempty"`
}

// handleEvaluate scores one résumé against a job description.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req types.EvaluateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	resp, err := s.evaluate(r.Context(), &req, nil)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleEvaluateStream runs an evaluation and streams progress via SSE
func (s *Server) handleEvaluateStream(w http.ResponseWriter, r *http.Request) {
	var req types.EvaluateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	// Resolve the posting first so fetch failures get a proper status code.
	jobDescription, err := s.jobDescription(r.Context(), req.JobDescription, req.JobURL)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	req.JobDescription, req.JobURL = jobDescription, ""

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	log := logging.Ctx(r.Context())
	onProgress := func(event pipeline.ProgressEvent) {
		if event.Step == pipeline.StepDone {
			return
		}
		if err := sse.WriteEvent("step", event); err != nil {
			log.Warn().Err(err).Msg("error writing SSE event")
		}
	}

	resp, err := s.evaluate(r.Context(), &req, onProgress)
	if err != nil {
		log.Warn().Err(err).Msg("streaming evaluation failed")
		sse.WriteError(err)
		return
	}
	if resp.Warning != "" {
		_ = sse.WriteEvent("warning", map[string]string{"warning": resp.Warning})
	}
	sse.WriteComplete(resp.Evaluation)
}

// handleCompare scores two résumé variants against one job description.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req types.CompareRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	cmp, err := s.engine.Compare(r.Context(), req.ResumeA, req.ResumeB, req.JobDescription)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, cmp)
}

// handleExtractSkills returns the vocabulary skills found in a text.
func (s *Server) handleExtractSkills(w http.ResponseWriter, r *http.Request) {
	var req types.ExtractSkillsRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	found, err := s.engine.ExtractSkills(req.Text)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"skills": found})
}

// handleVocabulary lists the canonical skills.
func (s *Server) handleVocabulary(w http.ResponseWriter, _ *http.Request) {
	vocab := s.engine.Vocabulary()
	entries := vocab.Entries()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"version": vocab.Version(),
		"size":    len(names),
		"skills":  names,
	})
}

// evaluate resolves the job description, runs the engine and saves history when asked.
func (s *Server) evaluate(ctx context.Context, req *types.EvaluateRequest, onProgress pipeline.ProgressCallback) (*EvaluateResponse, error) {
	jobDescription, err := s.jobDescription(ctx, req.JobDescription, req.JobURL)
	if err != nil {
		return nil, err
	}

	eval, err := s.engine.EvaluateWithProgress(ctx, req.ResumeText, jobDescription, onProgress)
	if err != nil {
		return nil, err
	}

	resp := &EvaluateResponse{Evaluation: eval}
	if req.Save {
		s.save(ctx, req.UserEmail, resp)
	}
	return resp, nil
}

// jobDescription returns text when given, otherwise fetches url.
func (s *Server) jobDescription(ctx context.Context, text, url string) (string, error) {
	if text != "" {
		return text, nil
	}
	if url == "" {
		return "", &ErrValidation{Field: "job_description", Message: "job_description or job_url is required"}
	}
	return s.fetcher.JobDescription(ctx, url)
}

// save stores the evaluation in history. Failure is reported as a warning, not an error.
func (s *Server) save(ctx context.Context, email string, resp *EvaluateResponse) {
	if s.history == nil {
		resp.Warning = "history not saved: no database configured"
		return
	}

	eval := resp.Evaluation
	saved, err := s.history.SaveHistory(ctx, types.HistoryEntry{
		UserEmail:     email,
		MatchScore:    eval.Match.MatchPercentage,
		SemanticScore: eval.Semantic.Score,
		MissingSkills: eval.Match.MissingSkills,
		MatchedSkills: eval.Match.MatchedSkills,
		CreatedAt:     eval.CreatedAt,
	})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("failed to save history")
		resp.Warning = "history not saved: " + err.Error()
		return
	}
	resp.HistoryID = &saved.ID
}
