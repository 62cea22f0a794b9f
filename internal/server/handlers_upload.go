package server

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/resume-matcher/internal/ingestion"
	"github.com/jonathan/resume-matcher/internal/logging"
	"github.com/jonathan/resume-matcher/internal/queue"
	"github.com/jonathan/resume-matcher/internal/types"
)

// multipartMemory is how much of a multipart body is held in memory before spilling to disk.
const multipartMemory = 8 << 20

// upload is a file read from a multipart field.
type upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// uploadForm is the parsed body of the upload and async endpoints.
type uploadForm struct {
	Resume         *upload
	ResumeText     string
	JobDescription string
	JobURL         string
	UserEmail      string
	Save           bool
}

// handleEvaluateUpload scores an uploaded résumé file (text, PDF or DOCX).
func (s *Server) handleEvaluateUpload(w http.ResponseWriter, r *http.Request) {
	form, err := s.parseUploadForm(w, r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	resumeText := form.ResumeText
	if form.Resume != nil {
		resumeText, err = ingestion.ExtractText(form.Resume.Filename, form.Resume.ContentType, form.Resume.Data)
		if err != nil {
			s.errorResponse(w, r, err)
			return
		}
	}

	req := types.EvaluateRequest{
		ResumeText:     resumeText,
		JobDescription: form.JobDescription,
		JobURL:         form.JobURL,
		UserEmail:      form.UserEmail,
		Save:           form.Save,
	}
	if err := req.Validate(); err != nil {
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

// handleEvaluateAsync queues an evaluation for the worker. An uploaded file is stored in
// object storage and referenced by key; the result is published to the result queue.
func (s *Server) handleEvaluateAsync(w http.ResponseWriter, r *http.Request) {
	if s.publisher == nil {
		s.errorResponse(w, r, &ErrUnavailable{Feature: "async evaluation"})
		return
	}

	form, err := s.parseUploadForm(w, r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	jobDescription, err := s.jobDescription(r.Context(), form.JobDescription, form.JobURL)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	msg := queue.Request{
		ID:             uuid.NewString(),
		UserEmail:      form.UserEmail,
		ResumeText:     form.ResumeText,
		JobDescription: jobDescription,
		Save:           form.Save,
	}

	if form.Resume != nil {
		if s.objects == nil {
			s.errorResponse(w, r, &ErrUnavailable{Feature: "file upload for async evaluation"})
			return
		}
		// Reject formats the worker could not read before storing anything.
		if _, err := ingestion.DetectFormat(form.Resume.Filename, form.Resume.ContentType, form.Resume.Data); err != nil {
			s.errorResponse(w, r, err)
			return
		}
		key := path.Join("resumes", msg.ID, safeFilename(form.Resume.Filename))
		if err := s.objects.Put(r.Context(), key, bytes.NewReader(form.Resume.Data), int64(len(form.Resume.Data)), form.Resume.ContentType); err != nil {
			s.errorResponse(w, r, err)
			return
		}
		msg.ResumeText = ""
		msg.ResumeObjectKey = key
		msg.ResumeContentType = form.Resume.ContentType
		msg.ResumeFilename = form.Resume.Filename
	}

	if err := msg.Validate(); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if err := s.publisher.Publish(r.Context(), s.requestQueue, msg); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("evaluation_request_id", msg.ID).
		Bool("object", msg.ResumeObjectKey != "").
		Msg("evaluation queued")

	s.jsonResponse(w, http.StatusAccepted, map[string]string{
		"id":     msg.ID,
		"status": "queued",
	})
}

// parseUploadForm reads the multipart fields shared by the upload endpoints. The résumé comes
// from the "resume" file or the "resume_text" field; the job description from "job_description",
// a "job_file" upload, or "job_url".
func (s *Server) parseUploadForm(w http.ResponseWriter, r *http.Request) (*uploadForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, &ErrValidation{Field: "body", Message: "invalid multipart form: " + err.Error()}
	}

	form := &uploadForm{
		ResumeText:     strings.TrimSpace(r.FormValue("resume_text")),
		JobDescription: strings.TrimSpace(r.FormValue("job_description")),
		JobURL:         strings.TrimSpace(r.FormValue("job_url")),
		UserEmail:      strings.TrimSpace(r.FormValue("user_email")),
	}

	if raw := r.FormValue("save"); raw != "" {
		save, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, &ErrValidation{Field: "save", Message: "must be a boolean"}
		}
		form.Save = save
	}

	resume, err := readUpload(r, "resume")
	if err != nil {
		return nil, err
	}
	form.Resume = resume
	if form.Resume == nil && form.ResumeText == "" {
		return nil, &ErrValidation{Field: "resume", Message: "a resume file or resume_text is required"}
	}

	if form.JobDescription == "" {
		jobFile, err := readUpload(r, "job_file")
		if err != nil {
			return nil, err
		}
		if jobFile != nil {
			text, err := ingestion.ExtractText(jobFile.Filename, jobFile.ContentType, jobFile.Data)
			if err != nil {
				return nil, err
			}
			form.JobDescription = text
		}
	}

	return form, nil
}

// readUpload returns the named file or nil when the field is absent.
func readUpload(r *http.Request, field string) (*upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, &ErrValidation{Field: field, Message: err.Error()}
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// safeFilename keeps the base name of an uploaded file usable as an object key segment.
func safeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if name == "" || name == "." || name == ".." {
		return "resume"
	}
	return name
}
