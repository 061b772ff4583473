package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for console output
type Theme struct {
	Confidence lipgloss.Style
	Algorithm  lipgloss.Style
	Location   lipgloss.Style
	LineNum    lipgloss.Style
	Summary    lipgloss.Style
	Warn       lipgloss.Style
	Dim        lipgloss.Style
}

// DefaultTheme is the default color scheme
var DefaultTheme = Theme{
	Confidence: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
	Algorithm:  lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
	Location:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	LineNum:    lipgloss.NewStyle().Foreground(lipgloss.Color("221")),
	Summary:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82")),
	Warn:       lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	Dim:        lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

var theme = DefaultTheme

// PrintScanComplete prints scanning completion stats
func PrintScanComplete(fileCount, skippedCount int, duration time.Duration) {
	if skippedCount > 0 {
		fmt.Printf("Scanned %d files (%d skipped) in %s\n", fileCount, skippedCount, duration.Round(time.Millisecond))
		return
	}
	fmt.Printf("Scanned %d files in %s\n", fileCount, duration.Round(time.Millisecond))
}

// PrintAnalyzeComplete prints analysis completion stats
func PrintAnalyzeComplete(blockCount, cacheHits, cacheMisses int, duration time.Duration) {
	if cacheHits > 0 {
		fmt.Printf("Analyzed %d candidate blocks (%d files cached, %d tokenized) in %s\n",
			blockCount, cacheHits, cacheMisses, duration.Round(time.Millisecond))
		return
	}
	fmt.Printf("Analyzed %d candidate blocks in %s\n", blockCount, duration.Round(time.Millisecond))
}

// PrintDetectComplete prints detection completion
func PrintDetectComplete(groupCount int, duration time.Duration) {
	fmt.Printf("Detection found %s duplicate groups in %s\n",
		theme.Summary.Render(fmt.Sprintf("%d", groupCount)), duration.Round(time.Millisecond))
}

// PrintGroups prints the top duplicate groups with their member spans
func PrintGroups(groups []*DuplicateGroup, top int) {
	if top > len(groups) {
		top = len(groups)
	}
	for _, g := range groups[:top] {
		fmt.Printf("\n%s %s %s %s:\n",
			theme.Confidence.Render(fmt.Sprintf("%.0f%%", g.Confidence*100)),
			theme.Algorithm.Render(g.Algorithm),
			theme.Dim.Render(fmt.Sprintf("[%d lines total]", g.TotalLines)),
			theme.Dim.Render(fmt.Sprintf("saves ~%d lines", g.LineReduction)))
		for _, b := range g.Blocks {
			fmt.Printf("  %s%s%s\n",
				theme.Location.Render(b.File),
				theme.Dim.Render(":"),
				theme.LineNum.Render(fmt.Sprintf("%d-%d", b.StartLine, b.EndLine)))
		}
	}
}

// PrintHotspots prints the files carrying the most duplicated lines
func PrintHotspots(groups []*DuplicateGroup) {
	fileDupLines := make(map[string]int)
	for _, g := range groups {
		for _, b := range g.Blocks {
			fileDupLines[b.File] += b.LineSpan()
		}
	}

	type fileHotspot struct {
		filename string
		lines    int
	}
	var hotspots []fileHotspot
	for f, lines := range fileDupLines {
		hotspots = append(hotspots, fileHotspot{f, lines})
	}
	sort.Slice(hotspots, func(i, j int) bool {
		if hotspots[i].lines != hotspots[j].lines {
			return hotspots[i].lines > hotspots[j].lines
		}
		return hotspots[i].filename < hotspots[j].filename
	})

	if len(hotspots) == 0 {
		return
	}
	fmt.Printf("\n%s\n", theme.Summary.Render("Duplication hotspots (lines):"))
	show := 5
	if len(hotspots) < show {
		show = len(hotspots)
	}
	for i := 0; i < show; i++ {
		fmt.Printf("  %s %s\n",
			theme.LineNum.Render(fmt.Sprintf("%4d", hotspots[i].lines)),
			theme.Location.Render(hotspots[i].filename))
	}
}

// PrintApplySummary prints the write-back outcome
func PrintApplySummary(res *ApplyResult) {
	fmt.Printf("\nApplied %s actions (%s mode), wrote %s files\n",
		theme.Summary.Render(fmt.Sprintf("%d", res.ActionsApplied)),
		theme.Dim.Render(res.Mode),
		theme.Summary.Render(fmt.Sprintf("%d", len(res.FilesWritten))))
	for _, f := range res.FilesWritten {
		fmt.Printf("  %s\n", theme.Location.Render(f))
	}
	for _, f := range res.FilesSkipped {
		fmt.Printf("  %s %s\n", theme.Warn.Render("conflict:"), f)
	}
	for _, fl := range res.Failures {
		fmt.Printf("  %s %s: %s\n", theme.Warn.Render("failed:"), fl.Path, fl.Err)
	}
}

// PrintTotalSummary prints the final summary line
func PrintTotalSummary(groupCount, fileCount, totalLines int, elapsed time.Duration) {
	fmt.Printf("\nTotal: %s duplicate groups in %s files (%s lines) in %s\n",
		theme.Summary.Render(fmt.Sprintf("%d", groupCount)),
		theme.Summary.Render(fmt.Sprintf("%d", fileCount)),
		theme.Summary.Render(fmt.Sprintf("%d", totalLines)),
		theme.Summary.Render(elapsed.Round(time.Millisecond).String()))
}

// ActionsMarkdown renders the planned actions as a markdown preview: one
// section per action with the spans it touches and the synthesized
// declaration fenced in the group's language.
func ActionsMarkdown(actions []*RefactoringAction) string {
	var sb strings.Builder
	for i, a := range actions {
		g := a.Group
		sb.WriteString(fmt.Sprintf("## Action %d: %s\n\n", i+1, a.Strategy))
		sb.WriteString(fmt.Sprintf("**Algorithm:** %s  **Confidence:** %.0f%%  **Saves:** ~%d lines\n\n",
			g.Algorithm, g.Confidence*100, g.LineReduction))

		if a.Strategy == StrategyManualReview {
			sb.WriteString(fmt.Sprintf("Needs manual review: %s\n\n", a.Reason))
			for _, b := range g.Blocks {
				sb.WriteString(fmt.Sprintf("- `%s:%d-%d`\n", b.File, b.StartLine, b.EndLine))
			}
			sb.WriteString("\n---\n\n")
			continue
		}

		for j, e := range a.Edits {
			sb.WriteString(fmt.Sprintf("### Occurrence %d: `%s:%d-%d`\n\n", j+1, e.File, e.StartLine, e.EndLine))
			sb.WriteString(fmt.Sprintf("```%s\n%s\n```\n\n", g.Blocks[0].Language, e.Replacement))
		}

		sb.WriteString(fmt.Sprintf("### New declaration in `%s`\n\n", a.DeclFile))
		sb.WriteString(fmt.Sprintf("```%s\n%s\n```\n\n", g.Blocks[0].Language, a.Declaration))
		sb.WriteString("---\n\n")
	}
	return sb.String()
}

// RenderMarkdown renders markdown for the terminal, falling back to the raw
// text when the renderer cannot be built.
func RenderMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(0))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// BuildReport assembles the structured JSON report.
func BuildReport(files []*SourceFile, skipped []SkippedFile, groups []*DuplicateGroup, actions []*RefactoringAction) *JSONReport {
	report := &JSONReport{
		TotalFiles:  len(files) + len(skipped),
		ParsedFiles: len(files),
		TotalGroups: len(groups),
		Groups:      make([]JSONGroup, 0, len(groups)),
	}
	for _, s := range skipped {
		report.Skipped = append(report.Skipped, JSONSkip{Path: s.Path, Reason: s.Reason})
	}

	groupIndex := make(map[*DuplicateGroup]int, len(groups))
	for i, g := range groups {
		groupIndex[g] = i
		report.Groups = append(report.Groups, groupToJSON(g))
	}
	for _, a := range actions {
		report.Actions = append(report.Actions, actionToJSON(a, groupIndex[a.Group]))
	}
	return report
}

// WriteJSONReport writes the report to <root>/.dupfix/results.json, or to an
// explicit path when one is configured.
func WriteJSONReport(report *JSONReport, root, path string) error {
	if path == "" {
		path = filepath.Join(root, ".dupfix", "results.json")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing JSON file: %w", err)
	}

	fmt.Printf("Results written to: %s\n", theme.Location.Render(path))
	return nil
}
