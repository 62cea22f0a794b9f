//nolint:revive // types is a standard Go package name pattern
package types

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// EvaluateRequest asks for one résumé to be scored against a job description given inline or by URL.
type EvaluateRequest struct {
	ResumeText     string `json:"resume_text" validate:"required"`
	JobDescription string `json:"job_description" validate:"required_without=JobURL"`
	JobURL         string `json:"job_url,omitempty" validate:"omitempty,url"`
	UserEmail      string `json:"user_email,omitempty" validate:"required_if=Save true,omitempty,email"`
	Save           bool   `json:"save,omitempty"`
}

// CompareRequest asks for two résumé variants to be scored against the same job description.
type CompareRequest struct {
	ResumeA        string `json:"resume_a" validate:"required"`
	ResumeB        string `json:"resume_b" validate:"required"`
	JobDescription string `json:"job_description" validate:"required"`
}

// ExtractSkillsRequest asks for the skills found in a free text.
type ExtractSkillsRequest struct {
	Text string `json:"text" validate:"required"`
}

// SaveHistoryRequest stores a scan result supplied by the caller.
type SaveHistoryRequest struct {
	UserEmail     string   `json:"user_email" validate:"required,email"`
	MatchScore    float64  `json:"match_score" validate:"gte=0,lte=100"`
	SemanticScore float64  `json:"semantic_score" validate:"gte=0,lte=100"`
	MissingSkills []string `json:"missing_skills" validate:"dive,required"`
	MatchedSkills []string `json:"matched_skills,omitempty" validate:"dive,required"`
}

// Validate validates the EvaluateRequest using the validator.
func (r *EvaluateRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the CompareRequest using the validator.
func (r *CompareRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the ExtractSkillsRequest using the validator.
func (r *ExtractSkillsRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the SaveHistoryRequest using the validator.
func (r *SaveHistoryRequest) Validate() error {
	return validate.Struct(r)
}
