package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-matcher/internal/db"
	"github.com/jonathan/resume-matcher/internal/observability"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show saved scan history (requires DATABASE_URL)",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's saved scans, newest first",
	RunE:  runHistoryList,
}

var historyMissingCmd = &cobra.Command{
	Use:   "missing",
	Short: "Show the skills most often missing across a user's scans",
	RunE:  runHistoryMissing,
}

var (
	historyEmail string
	historyLimit int
	historyJSON  bool
)

func init() {
	historyCmd.PersistentFlags().StringVarP(&historyEmail, "email", "e", "", "User email")
	historyCmd.PersistentFlags().BoolVar(&historyJSON, "json", false, "Print as JSON")
	_ = historyCmd.MarkPersistentFlagRequired("email")

	historyMissingCmd.Flags().IntVarP(&historyLimit, "limit", "n", db.DefaultTopMissing, "Number of skills to show")

	historyCmd.AddCommand(historyListCmd, historyMissingCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	database, err := openHistory(ctx, settings, true)
	if err != nil {
		return err
	}
	defer database.Close()

	entries, err := database.ListHistory(ctx, historyEmail)
	if err != nil {
		return err
	}

	if historyJSON {
		return writeJSON(cmd, map[string]any{
			"user_email": historyEmail,
			"entries":    entries,
			"trend":      db.ScoreTrend(entries),
		})
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintHistory(historyEmail, entries, db.TopMissingSkills(entries, db.DefaultTopMissing))
	return nil
}

func runHistoryMissing(cmd *cobra.Command, _ []string) error {
	if historyLimit < 1 {
		return fmt.Errorf("--limit must be at least 1")
	}

	ctx := cmd.Context()
	database, err := openHistory(ctx, settings, true)
	if err != nil {
		return err
	}
	defer database.Close()

	entries, err := database.ListHistory(ctx, historyEmail)
	if err != nil {
		return err
	}
	top := db.TopMissingSkills(entries, historyLimit)

	if historyJSON {
		return writeJSON(cmd, map[string]any{"scans": len(entries), "skills": top})
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintMissingSkills(historyEmail, len(entries), top)
	return nil
}
