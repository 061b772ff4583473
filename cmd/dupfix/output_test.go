package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildReportWiresGroupRefs(t *testing.T) {
	a := makeBlock(t, "a.py", "python", "x = 1\ny = 2")
	b := makeBlock(t, "b.py", "python", "x = 1\ny = 2")
	g1 := newGroup(AlgoExact, []*CodeBlock{a, b}, 1.0)
	g2 := newGroup(AlgoStructural, []*CodeBlock{a, b}, structuralConfidence)

	actions := []*RefactoringAction{
		{Strategy: StrategyManualReview, Group: g2, Reason: "shape mismatch"},
	}
	files := []*SourceFile{srcFile("a.py", "python", ""), srcFile("b.py", "python", "")}
	skipped := []SkippedFile{{Path: "c.bin", Reason: "unsupported language"}}

	report := BuildReport(files, skipped, []*DuplicateGroup{g1, g2}, actions)

	require.Equal(t, 3, report.TotalFiles)
	require.Equal(t, 2, report.ParsedFiles)
	require.Equal(t, 2, report.TotalGroups)
	require.Len(t, report.Groups, 2)
	require.Equal(t, 2, report.Groups[0].LineReduction)

	require.Len(t, report.Actions, 1)
	require.Equal(t, 1, report.Actions[0].GroupRef)
	require.Equal(t, "shape mismatch", report.Actions[0].Reason)
}

func TestWriteJSONReportDefaultsUnderRoot(t *testing.T) {
	dir := t.TempDir()
	report := &JSONReport{TotalFiles: 1, ParsedFiles: 1}

	require.NoError(t, WriteJSONReport(report, dir, ""))

	data, err := os.ReadFile(filepath.Join(dir, ".dupfix", "results.json"))
	require.NoError(t, err)

	var got JSONReport
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, 1, got.TotalFiles)
}

func TestActionsMarkdown(t *testing.T) {
	a := makeBlock(t, "a.py", "python", "print(a)\nprint(b)")
	b := makeBlock(t, "b.py", "python", "print(a)\nprint(b)")
	g := newGroup(AlgoExact, []*CodeBlock{a, b}, 1.0)

	actions := Plan([]*DuplicateGroup{g}, testConfig())
	require.Len(t, actions, 1)

	md := ActionsMarkdown(actions)
	require.Contains(t, md, "## Action 1: extract-method")
	require.Contains(t, md, "**Confidence:** 100%")
	require.Contains(t, md, "`a.py:1-2`")
	require.Contains(t, md, "```python")
	require.Contains(t, md, "def extracted_block_")
}
