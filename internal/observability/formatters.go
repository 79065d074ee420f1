// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/talent-match/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// heatmapColumnWidth is the width of one entity column in the heatmap grid
	heatmapColumnWidth = 8
)

// Printer handles human-readable output of matching results
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
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to n runes, marking the cut with "..."
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func writeHighlights(sb *strings.Builder, highlights []types.Highlight) {
	for _, h := range highlights {
		sb.WriteString(fmt.Sprintf("    %s: %s\n", h.Field, truncate(strings.Join(h.Matches, ", "), 40)))
	}
}

func writeBreakdown(sb *strings.Builder, b *types.Breakdown) {
	if b == nil {
		return
	}
	sb.WriteString(fmt.Sprintf("    skills %.2f  semantic %.2f  exp %.2f  edu %.2f\n",
		b.Skills, b.Semantic, b.Experience, b.Education))
}

// PrintJobMatches outputs ranked jobs for an applicant.
func (p *Printer) PrintJobMatches(results []types.MatchResult[types.JobRecord], degraded bool) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Jobs ranked: %d\n", len(results)))
	if degraded {
		sb.WriteString("⚠ semantic scoring unavailable (lexical only)\n")
	}

	for i, r := range results {
		sb.WriteString("\n")
		title := r.Item.Title
		if r.Item.Company != "" {
			title += " @ " + r.Item.Company
		}
		sb.WriteString(fmt.Sprintf("#%d  %s  (%s)\n", i+1, title, r.Item.ID))
		sb.WriteString(fmt.Sprintf("    Score: %.2f\n", r.Score))
		writeBreakdown(&sb, r.Breakdown)
		writeHighlights(&sb, r.Highlights)
	}

	p.printBox("JOB MATCHES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCandidateMatches outputs ranked candidates for a job.
func (p *Printer) PrintCandidateMatches(results []types.MatchResult[types.CandidateRecord], degraded bool) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidates ranked: %d\n", len(results)))
	if degraded {
		sb.WriteString("⚠ semantic scoring unavailable (lexical only)\n")
	}

	for i, r := range results {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("#%d  %s  (%s)\n", i+1, r.Item.Name, r.Item.ID))
		sb.WriteString(fmt.Sprintf("    Score: %.2f\n", r.Score))
		writeBreakdown(&sb, r.Breakdown)
		writeHighlights(&sb, r.Highlights)
	}

	p.printBox("CANDIDATE MATCHES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintComparisons outputs peer similarity, skill gaps and recommendations.
func (p *Printer) PrintComparisons(results []types.ComparisonResult) {
	if len(results) == 0 {
		p.printBox("PEER COMPARISON", "No peers compared")
		return
	}

	var sb strings.Builder
	for i, r := range results {
		sb.WriteString(fmt.Sprintf("%s vs %s: %.2f\n", r.SubjectID, r.PeerID, r.SimilarityScore))
		if len(r.SkillGaps) > 0 {
			count := min(len(r.SkillGaps), maxItemsToShow)
			sb.WriteString(fmt.Sprintf("  Gaps: %s\n", strings.Join(r.SkillGaps[:count], ", ")))
		}
		for _, rec := range r.Recommendations {
			sb.WriteString(fmt.Sprintf("  • %s\n", rec))
		}
		if i < len(results)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("PEER COMPARISON", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintHeatmap outputs the heatmap as a grid, one row per skill and one
// column per entity in first-seen order.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintHeatmap(cells []types.HeatmapCell) {
	if len(cells) == 0 {
		p.printBox("SKILL HEATMAP", "No skills to compare")
		return
	}

	var skills, labels []string
	seenSkill := make(map[string]bool)
	seenLabel := make(map[string]bool)
	values := make(map[[2]string]float64, len(cells))
	for _, c := range cells {
		if !seenSkill[c.Skill] {
			seenSkill[c.Skill] = true
			skills = append(skills, c.Skill)
		}
		if !seenLabel[c.SubjectLabel] {
			seenLabel[c.SubjectLabel] = true
			labels = append(labels, c.SubjectLabel)
		}
		values[[2]string{c.Skill, c.SubjectLabel}] = c.Value
	}

	skillWidth := 0
	for _, s := range skills {
		skillWidth = max(skillWidth, len([]rune(s)))
	}
	skillWidth = min(skillWidth, 20)

	fmt.Fprintf(p.out, "%-*s", skillWidth, "")
	for _, l := range labels {
		fmt.Fprintf(p.out, " %*s", heatmapColumnWidth, truncate(l, heatmapColumnWidth))
	}
	fmt.Fprintln(p.out)
	for _, s := range skills {
		fmt.Fprintf(p.out, "%-*s", skillWidth, truncate(s, skillWidth))
		for _, l := range labels {
			fmt.Fprintf(p.out, " %*.2f", heatmapColumnWidth, values[[2]string{s, l}])
		}
		fmt.Fprintln(p.out)
	}
}

// PrintSummary outputs a record summary and its insights.
func (p *Printer) PrintSummary(summary *types.Summary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s\n\n", summary.Kind, summary.RecordID))
	sb.WriteString(wrap(summary.Summary, boxWidth-4))
	if len(summary.Insights) > 0 {
		sb.WriteString("\n\nInsights:\n")
		for _, in := range summary.Insights {
			sb.WriteString(fmt.Sprintf("  • %s\n", in))
		}
	}

	p.printBox("SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFeatureSet outputs the derived features of one record.
func (p *Printer) PrintFeatureSet(fs *types.FeatureSet) {
	if fs == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s (v%d)\n\n", fs.Kind, fs.RecordID, fs.Version))
	sb.WriteString(fmt.Sprintf("Experience: %.1f years\n", fs.ExperienceYears))
	education := fs.EducationTier.String()
	if fs.UnknownEducation {
		education = "unknown"
	}
	sb.WriteString(fmt.Sprintf("Education:  %s\n", education))
	sb.WriteString(fmt.Sprintf("Embedding:  %d dims\n", len(fs.Embedding)))
	sb.WriteString(fmt.Sprintf("Skills (%d):", len(fs.Skills)))
	if len(fs.Skills) > 0 {
		sb.WriteString("\n")
		sb.WriteString(wrap(strings.Join(fs.Skills, ", "), boxWidth-6))
	}

	p.printBox("FEATURES", sb.String())
}

// PrintWarm outputs the cache counters of a warm run followed by its diagnostics.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintWarm(kind types.RecordKind, hits, misses int64, diagnostics []types.Diagnostic) {
	fmt.Fprintf(p.out, "Warmed %s features: %d cached, %d extracted\n", kind, hits, misses)
	p.PrintDiagnostics(diagnostics)
}

// PrintDiagnostics outputs records excluded from a batch. Nothing is printed
// when there are none.
func (p *Printer) PrintDiagnostics(diagnostics []types.Diagnostic) {
	if len(diagnostics) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Skipped %d records:\n\n", len(diagnostics)))
	for i, d := range diagnostics {
		sb.WriteString(fmt.Sprintf("⚠ %s (%s)\n", d.RecordID, d.Kind))
		sb.WriteString(fmt.Sprintf("  %s", d.Message))
		if i < len(diagnostics)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("DIAGNOSTICS", sb.String())
}

// wrap breaks text into lines of at most width runes at word boundaries.
func wrap(text string, width int) string {
	var lines []string
	var line strings.Builder
	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && len([]rune(line.String()))+1+len([]rune(word)) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteString(" ")
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}
