package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-matcher/internal/vocabulary"
)

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Inspect skill vocabularies",
}

var vocabValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a skill vocabulary file",
	Long: "Validate a YAML or JSON skill vocabulary against the vocabulary schema and check that names and " +
		"aliases are unique after normalization. Without a file the configured vocabulary is checked.",
	Args: cobra.MaximumNArgs(1),
	RunE: runVocabValidate,
}

func init() {
	vocabCmd.AddCommand(vocabValidateCmd)
	rootCmd.AddCommand(vocabCmd)
}

func runVocabValidate(cmd *cobra.Command, args []string) error {
	path := settings.VocabularyPath
	if len(args) == 1 {
		path = args[0]
	}

	vocab, err := vocabulary.LoadOrDefault(path)
	if err != nil {
		return err
	}

	source := path
	if source == "" {
		source = "built-in vocabulary"
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s is valid: version %s, %d skills\n", source, vocab.Version(), vocab.Len())
	return err
}
