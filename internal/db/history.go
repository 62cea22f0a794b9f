package db

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-matcher/internal/types"
)

// DefaultTopMissing is how many missing skills the history summary reports.
const DefaultTopMissing = 7

// SaveHistory stores one scan. A zero ID or timestamp is filled in; the stored entry is returned.
func (db *DB) SaveHistory(ctx context.Context, entry types.HistoryEntry) (*types.HistoryEntry, error) {
	if err := validateEntry(entry); err != nil {
		return nil, err
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	entry.UserEmail = normalizeEmail(entry.UserEmail)
	entry.MissingSkills = nonNil(entry.MissingSkills)
	entry.MatchedSkills = nonNil(entry.MatchedSkills)

	_, err := db.pool.Exec(ctx,
		`INSERT INTO resume_history (id, user_email, match_score, semantic_score, missing_skills, matched_skills, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.UserEmail, entry.MatchScore, entry.SemanticScore,
		entry.MissingSkills, entry.MatchedSkills, entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save history: %w", err)
	}
	return &entry, nil
}

// ListHistory returns a user's scans, newest first.
func (db *DB) ListHistory(ctx context.Context, email string) ([]types.HistoryEntry, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_email, match_score, semantic_score, missing_skills, matched_skills, created_at
		 FROM resume_history
		 WHERE user_email = $1
		 ORDER BY created_at DESC, id`,
		normalizeEmail(email),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.HistoryEntry, error) {
		var e types.HistoryEntry
		err := row.Scan(&e.ID, &e.UserEmail, &e.MatchScore, &e.SemanticScore,
			&e.MissingSkills, &e.MatchedSkills, &e.CreatedAt)
		e.MissingSkills = nonNil(e.MissingSkills)
		e.MatchedSkills = nonNil(e.MatchedSkills)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan history: %w", err)
	}
	return entries, nil
}

// DeleteHistory removes all of a user's scans and returns how many were deleted.
func (db *DB) DeleteHistory(ctx context.Context, email string) (int64, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM resume_history WHERE user_email = $1`, normalizeEmail(email))
	if err != nil {
		return 0, fmt.Errorf("failed to delete history: %w", err)
	}
	return tag.RowsAffected(), nil
}

// TopMissingSkills counts how often each skill was missing across entries and returns the n
// most frequent, ties broken by name. n <= 0 uses DefaultTopMissing.
func TopMissingSkills(entries []types.HistoryEntry, n int) []types.SkillCount {
	if n <= 0 {
		n = DefaultTopMissing
	}

	counts := make(map[string]int)
	for _, e := range entries {
		for _, skill := range e.MissingSkills {
			counts[skill]++
		}
	}

	out := make([]types.SkillCount, 0, len(counts))
	for skill, c := range counts {
		out = append(out, types.SkillCount{Skill: skill, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Skill < out[j].Skill
	})

	if len(out) > n {
		out = out[:n]
	}
	return out
}

// ScoreTrend returns the entries' scores in chronological order.
func ScoreTrend(entries []types.HistoryEntry) []types.TrendPoint {
	points := make([]types.TrendPoint, 0, len(entries))
	for _, e := range entries {
		points = append(points, types.TrendPoint{
			Date:          e.CreatedAt,
			MatchScore:    e.MatchScore,
			SemanticScore: e.SemanticScore,
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

func validateEntry(entry types.HistoryEntry) error {
	if normalizeEmail(entry.UserEmail) == "" {
		return &ValidationError{Field: "user_email", Message: "is required"}
	}
	if entry.MatchScore < 0 || entry.MatchScore > 100 {
		return &ValidationError{Field: "match_score", Message: "must be between 0 and 100"}
	}
	if entry.SemanticScore < 0 || entry.SemanticScore > 100 {
		return &ValidationError{Field: "semantic_score", Message: "must be between 0 and 100"}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
