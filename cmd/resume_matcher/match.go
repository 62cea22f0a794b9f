package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-matcher/internal/ingestion"
	"github.com/jonathan/resume-matcher/internal/logging"
	"github.com/jonathan/resume-matcher/internal/observability"
	"github.com/jonathan/resume-matcher/internal/types"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score a résumé against a job description",
	Long: "Extract skills from a résumé (text, PDF or DOCX) and a job description, report matched, missing " +
		"and extra skills, and compute the semantic similarity of the two documents.",
	RunE: runMatch,
}

var (
	matchResumeFile string
	matchJDFile     string
	matchJDURL      string
	matchJSON       bool
	matchSave       bool
	matchEmail      string
)

func init() {
	matchCmd.Flags().StringVarP(&matchResumeFile, "resume", "r", "", "Path to the résumé (.txt, .md, .pdf, .docx)")
	matchCmd.Flags().StringVarP(&matchJDFile, "jd", "j", "", "Path to the job description")
	matchCmd.Flags().StringVar(&matchJDURL, "jd-url", "", "URL of the job posting")
	matchCmd.Flags().BoolVar(&matchJSON, "json", false, "Print the evaluation as JSON")
	matchCmd.Flags().BoolVar(&matchSave, "save", false, "Save the result to history (requires --email and DATABASE_URL)")
	matchCmd.Flags().StringVar(&matchEmail, "email", "", "User email for --save")

	_ = matchCmd.MarkFlagRequired("resume")
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if matchSave && matchEmail == "" {
		return fmt.Errorf("--email is required with --save")
	}

	var cleanup closers
	defer cleanup.close()

	store, err := openCache(ctx, settings)
	if err != nil {
		return err
	}
	cleanup.add(func() { _ = store.Close() })

	resumeText, err := ingestion.ReadFile(matchResumeFile)
	if err != nil {
		return fmt.Errorf("failed to read résumé: %w", err)
	}
	jobDescription, err := readJobDescription(ctx, matchJDFile, matchJDURL, store)
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}

	engine, err := buildEngine(ctx, settings, store, &cleanup)
	if err != nil {
		return err
	}

	eval, err := engine.Evaluate(ctx, resumeText, jobDescription)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	if matchSave {
		database, err := openHistory(ctx, settings, true)
		if err != nil {
			return err
		}
		defer database.Close()

		saved, err := database.SaveHistory(ctx, types.HistoryEntry{
			UserEmail:     matchEmail,
			MatchScore:    eval.Match.MatchPercentage,
			SemanticScore: eval.Semantic.Score,
			MissingSkills: eval.Match.MissingSkills,
			MatchedSkills: eval.Match.MatchedSkills,
			CreatedAt:     eval.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("failed to save history: %w", err)
		}
		logging.Info().Str("history_id", saved.ID.String()).Msg("saved to history")
	}

	if matchJSON {
		return writeJSON(cmd, eval)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintEvaluation(eval)
	return nil
}

// writeJSON prints v as indented JSON on the command's output.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
