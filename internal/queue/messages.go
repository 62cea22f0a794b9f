// Package queue runs evaluations requested over RabbitMQ and publishes their results.
package queue

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/resume-matcher/internal/types"
)

var validate = validator.New()

// Request is an evaluation request message. The résumé is given inline or as an object key.
type Request struct {
	ID                string `json:"id" validate:"required"`
	UserEmail         string `json:"user_email,omitempty" validate:"required_if=Save true,omitempty,email"`
	ResumeText        string `json:"resume_text,omitempty" validate:"required_without=ResumeObjectKey,excluded_with=ResumeObjectKey"`
	ResumeObjectKey   string `json:"resume_object_key,omitempty"`
	ResumeContentType string `json:"resume_content_type,omitempty"`
	ResumeFilename    string `json:"resume_filename,omitempty"`
	JobDescription    string `json:"job_description" validate:"required"`
	Save              bool   `json:"save,omitempty"`
}

// Validate checks the message shape.
func (r *Request) Validate() error {
	return validate.Struct(r)
}

// Result is published for every accepted request.
type Result struct {
	ID         string            `json:"id"`
	Evaluation *types.Evaluation `json:"evaluation,omitempty"`
	HistoryID  *uuid.UUID        `json:"history_id,omitempty"`
	Warning    string            `json:"warning,omitempty"`
	Error      string            `json:"error,omitempty"`
	ErrorKind  types.ErrorKind   `json:"error_kind,omitempty"`
}
