//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEntry is one saved scan for a user.
type HistoryEntry struct {
	ID            uuid.UUID `json:"id"`
	UserEmail     string    `json:"user_email"`
	MatchScore    float64   `json:"match_score"`
	SemanticScore float64   `json:"semantic_score"`
	MissingSkills []string  `json:"missing_skills"`
	MatchedSkills []string  `json:"matched_skills"`
	CreatedAt     time.Time `json:"created_at"`
}

// SkillCount is how often a skill was reported missing across a user's scans.
type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// TrendPoint is one scan in a chronological score series.
type TrendPoint struct {
	Date          time.Time `json:"date"`
	MatchScore    float64   `json:"match_score"`
	SemanticScore float64   `json:"semantic_score"`
}
