package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-matcher/internal/ingestion"
	"github.com/jonathan/resume-matcher/internal/observability"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare two résumé variants against one job description",
	Long:  "Score two résumé variants against the same job description and report both results with B minus A deltas.",
	RunE:  runCompare,
}

var (
	compareResumeA string
	compareResumeB string
	compareJDFile  string
	compareJDURL   string
	compareJSON    bool
)

func init() {
	compareCmd.Flags().StringVarP(&compareResumeA, "resume-a", "a", "", "Path to résumé variant A")
	compareCmd.Flags().StringVarP(&compareResumeB, "resume-b", "b", "", "Path to résumé variant B")
	compareCmd.Flags().StringVarP(&compareJDFile, "jd", "j", "", "Path to the job description")
	compareCmd.Flags().StringVar(&compareJDURL, "jd-url", "", "URL of the job posting")
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "Print the comparison as JSON")

	_ = compareCmd.MarkFlagRequired("resume-a")
	_ = compareCmd.MarkFlagRequired("resume-b")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	var cleanup closers
	defer cleanup.close()

	store, err := openCache(ctx, settings)
	if err != nil {
		return err
	}
	cleanup.add(func() { _ = store.Close() })

	resumeA, err := ingestion.ReadFile(compareResumeA)
	if err != nil {
		return fmt.Errorf("failed to read résumé A: %w", err)
	}
	resumeB, err := ingestion.ReadFile(compareResumeB)
	if err != nil {
		return fmt.Errorf("failed to read résumé B: %w", err)
	}
	jobDescription, err := readJobDescription(ctx, compareJDFile, compareJDURL, store)
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}

	engine, err := buildEngine(ctx, settings, store, &cleanup)
	if err != nil {
		return err
	}

	cmp, err := engine.Compare(ctx, resumeA, resumeB, jobDescription)
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	if compareJSON {
		return writeJSON(cmd, cmp)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintComparison(cmp)
	return nil
}
