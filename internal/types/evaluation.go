// Package types provides type definitions for structured data used throughout the resume-matcher system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// MatchResult is the set comparison between a résumé skill set and a job-description skill set.
// Skill lists are sorted and never nil.
type MatchResult struct {
	MatchPercentage float64  `json:"match_percentage"`
	MatchedSkills   []string `json:"matched_skills"`
	MissingSkills   []string `json:"missing_skills"`
	ExtraSkills     []string `json:"extra_skills"`
}

// SemanticScore is a whole-document similarity on a 0-100 scale.
// When Degraded is set the score is the sentinel 0 and Warning says why.
type SemanticScore struct {
	Score    float64 `json:"score"`
	Method   string  `json:"method"`
	Degraded bool    `json:"degraded"`
	Warning  string  `json:"warning,omitempty"`
}

// Evaluation is the combined result of matching one résumé against one job description.
type Evaluation struct {
	ID                uuid.UUID     `json:"id"`
	Match             MatchResult   `json:"match"`
	Semantic          SemanticScore `json:"semantic"`
	ResumeSkills      []string      `json:"resume_skills"`
	JobSkills         []string      `json:"job_skills"`
	VocabularyVersion string        `json:"vocabulary_version"`
	CreatedAt         time.Time     `json:"created_at"`
}

// Comparison holds two résumé evaluations against the same job description.
// Deltas are B minus A.
type Comparison struct {
	A             *Evaluation `json:"a"`
	B             *Evaluation `json:"b"`
	MatchDelta    float64     `json:"match_delta"`
	SemanticDelta float64     `json:"semantic_delta"`
}

// ErrorKind classifies failures surfaced by the matching engine.
type ErrorKind string

// Error kinds.
const (
	KindInput         ErrorKind = "input"
	KindConfiguration ErrorKind = "configuration"
	KindComputation   ErrorKind = "computation"
	KindInternal      ErrorKind = "internal"
)
