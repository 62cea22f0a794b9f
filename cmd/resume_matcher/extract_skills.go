package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-matcher/internal/ingestion"
	"github.com/jonathan/resume-matcher/internal/observability"
)

var extractSkillsCmd = &cobra.Command{
	Use:   "extract-skills [file]",
	Short: "List the vocabulary skills found in a document",
	Long:  "Extract the canonical skills found in a résumé or job description file, or in --text.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExtractSkills,
}

var (
	extractText string
	extractJSON bool
)

func init() {
	extractSkillsCmd.Flags().StringVarP(&extractText, "text", "t", "", "Text to scan instead of a file")
	extractSkillsCmd.Flags().BoolVar(&extractJSON, "json", false, "Print the skills as JSON")
	rootCmd.AddCommand(extractSkillsCmd)
}

func runExtractSkills(cmd *cobra.Command, args []string) error {
	text := extractText
	title := "skills"
	switch {
	case len(args) == 1 && text != "":
		return fmt.Errorf("use either a file or --text, not both")
	case len(args) == 1:
		content, err := ingestion.ReadFile(args[0])
		if err != nil {
			return err
		}
		text = content
		title = "skills in " + filepath.Base(args[0])
	case text == "":
		return fmt.Errorf("a file or --text is required")
	}

	var cleanup closers
	defer cleanup.close()

	// Extraction does not use the semantic scorer.
	cfg := *settings
	cfg.SemanticMethod = ""
	engine, err := buildEngine(cmd.Context(), &cfg, nil, &cleanup)
	if err != nil {
		return err
	}

	found, err := engine.ExtractSkills(text)
	if err != nil {
		return err
	}

	if extractJSON {
		return writeJSON(cmd, map[string]any{"skills": found})
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintSkills(title, found)
	return nil
}
