// Package observability renders evaluation results as boxed text reports for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-matcher/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 64
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 12
	// barWidth is the width of score bars
	barWidth = 20
)

// Printer handles formatted report output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line))
	}
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintEvaluation outputs scores and the matched, missing and extra skills.
func (p *Printer) PrintEvaluation(eval *types.Evaluation) {
	if eval == nil {
		return
	}

	var sb strings.Builder
	writeScores(&sb, eval)
	sb.WriteString("\n")
	writeSkillList(&sb, "Matched", eval.Match.MatchedSkills)
	writeSkillList(&sb, "Missing", eval.Match.MissingSkills)
	writeSkillList(&sb, "Extra", eval.Match.ExtraSkills)
	fmt.Fprintf(&sb, "Vocabulary %s · %s", eval.VocabularyVersion, eval.ID)

	p.printBox("RESUME MATCH", sb.String())
}

// PrintComparison outputs both evaluations side by side with B minus A deltas.
func (p *Printer) PrintComparison(cmp *types.Comparison) {
	if cmp == nil || cmp.A == nil || cmp.B == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-16s %10s %10s %10s\n", "", "A", "B", "Δ (B−A)")
	fmt.Fprintf(&sb, "%-16s %9.2f%% %9.2f%% %+10.2f\n", "Skill match",
		cmp.A.Match.MatchPercentage, cmp.B.Match.MatchPercentage, cmp.MatchDelta)
	fmt.Fprintf(&sb, "%-16s %10.2f %10.2f %+10.2f\n", "Semantic",
		cmp.A.Semantic.Score, cmp.B.Semantic.Score, cmp.SemanticDelta)
	sb.WriteString("\n")

	onlyA := difference(cmp.A.Match.MatchedSkills, cmp.B.Match.MatchedSkills)
	onlyB := difference(cmp.B.Match.MatchedSkills, cmp.A.Match.MatchedSkills)
	writeSkillList(&sb, "Only A covers", onlyA)
	writeSkillList(&sb, "Only B covers", onlyB)
	writeSkillList(&sb, "Both miss", intersect(cmp.A.Match.MissingSkills, cmp.B.Match.MissingSkills))

	p.printBox("RESUME COMPARISON", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSkills outputs an extracted skill list.
func (p *Printer) PrintSkills(title string, skills []string) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d skills found\n\n", len(skills))
	if len(skills) == 0 {
		sb.WriteString("(none)")
	} else {
		sb.WriteString(wrap(strings.Join(skills, ", "), boxWidth-4))
	}
	p.printBox(strings.ToUpper(title), sb.String())
}

// PrintHistory outputs saved scans newest first and the most frequently missing skills.
func (p *Printer) PrintHistory(email string, entries []types.HistoryEntry, top []types.SkillCount) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "User:  %s\n", email)
	fmt.Fprintf(&sb, "Scans: %d\n", len(entries))

	if len(entries) > 0 {
		sb.WriteString("\n")
		count := min(len(entries), maxItemsToShow)
		for _, e := range entries[:count] {
			fmt.Fprintf(&sb, "%s  match %6.2f%%  semantic %6.2f\n",
				e.CreatedAt.Format("2006-01-02 15:04"), e.MatchScore, e.SemanticScore)
		}
		if len(entries) > maxItemsToShow {
			fmt.Fprintf(&sb, "... and %d more\n", len(entries)-maxItemsToShow)
		}
	}

	if len(top) > 0 {
		sb.WriteString("\n")
		writeMissingCounts(&sb, top)
	}

	p.printBox("SCAN HISTORY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMissingSkills outputs the skills most often missing across a user's scans.
func (p *Printer) PrintMissingSkills(email string, scans int, top []types.SkillCount) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "User:  %s\n", email)
	fmt.Fprintf(&sb, "Scans: %d\n\n", scans)
	if len(top) == 0 {
		sb.WriteString("(none)")
	} else {
		writeMissingCounts(&sb, top)
	}
	p.printBox("MISSING SKILLS", strings.TrimSuffix(sb.String(), "\n"))
}

func writeMissingCounts(sb *strings.Builder, top []types.SkillCount) {
	sb.WriteString("Most often missing:\n")
	most := top[0].Count
	for _, sc := range top {
		fmt.Fprintf(sb, "  %-18s %s %d\n", truncate(sc.Skill, 18), bar(float64(sc.Count), float64(most), barWidth), sc.Count)
	}
}

func writeScores(sb *strings.Builder, eval *types.Evaluation) {
	fmt.Fprintf(sb, "Skill match  %s %6.2f%%\n", bar(eval.Match.MatchPercentage, 100, barWidth), eval.Match.MatchPercentage)
	fmt.Fprintf(sb, "Semantic     %s %6.2f  (%s)\n", bar(eval.Semantic.Score, 100, barWidth), eval.Semantic.Score, eval.Semantic.Method)
	if eval.Semantic.Degraded {
		fmt.Fprintf(sb, "  ! degraded: %s\n", truncate(eval.Semantic.Warning, boxWidth-18))
	}
}

func writeSkillList(sb *strings.Builder, label string, skills []string) {
	fmt.Fprintf(sb, "%s (%d):\n", label, len(skills))
	if len(skills) == 0 {
		sb.WriteString("  -\n\n")
		return
	}
	shown := skills
	if len(shown) > maxItemsToShow {
		shown = shown[:maxItemsToShow]
	}
	for _, line := range strings.Split(wrap(strings.Join(shown, ", "), boxWidth-6), "\n") {
		fmt.Fprintf(sb, "  %s\n", line)
	}
	if len(skills) > maxItemsToShow {
		fmt.Fprintf(sb, "  ... and %d more\n", len(skills)-maxItemsToShow)
	}
	sb.WriteString("\n")
}

// bar renders value out of total as a fixed-width bar.
func bar(value, total float64, width int) string {
	filled := 0
	if total > 0 && value > 0 {
		filled = int(value/total*float64(width) + 0.5)
	}
	filled = min(filled, width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// pad truncates or right-pads line to the box's inner width, counting runes.
func pad(line string) string {
	line = truncate(line, boxWidth-4)
	return line + strings.Repeat(" ", boxWidth-4-utf8.RuneCountInString(line))
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// wrap breaks a comma separated list into lines of at most width runes.
func wrap(text string, width int) string {
	words := strings.Fields(text)
	var lines []string
	var cur string
	for _, w := range words {
		switch {
		case cur == "":
			cur = w
		case utf8.RuneCountInString(cur)+1+utf8.RuneCountInString(w) <= width:
			cur += " " + w
		default:
			lines = append(lines, cur)
			cur = w
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return strings.Join(lines, "\n")
}

func difference(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, s := range b {
		inB[s] = true
	}
	var out []string
	for _, s := range a {
		if !inB[s] {
			out = append(out, s)
		}
	}
	return out
}

func intersect(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, s := range b {
		inB[s] = true
	}
	var out []string
	for _, s := range a {
		if inB[s] {
			out = append(out, s)
		}
	}
	return out
}
