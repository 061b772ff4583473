package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func srcFile(path, lang, text string) *SourceFile {
	lines := strings.Split(text, "\n")
	return &SourceFile{Path: path, Language: lang, Text: text, Lines: lines, LineCount: len(lines)}
}

func testConfig() *Config {
	return &Config{
		MinLines:            2,
		MinTokens:           4,
		SimilarityThreshold: 0.85,
		Languages:           []string{"python", "javascript"},
		SuppressDuplicates:  true,
		Workers:             2,
	}
}

func TestBuildBlocksWindows(t *testing.T) {
	cfg := testConfig()
	sf := srcFile("t.py", "python", "a = 1\nb = 2\nc = 3")

	_, blocks, skip := Analyze(sf, cfg)
	require.Nil(t, skip)
	require.Len(t, blocks, 3)

	require.Equal(t, 1, blocks[0].StartLine)
	require.Equal(t, 2, blocks[0].EndLine)
	require.Equal(t, 2, blocks[1].StartLine)
	require.Equal(t, 3, blocks[1].EndLine)

	// Third block covers the whole file.
	require.True(t, blocks[2].WholeFile)
	require.Equal(t, 1, blocks[2].StartLine)
	require.Equal(t, 3, blocks[2].EndLine)
	require.Len(t, blocks[2].Tokens, 9)
}

func TestBuildBlocksTokenThreshold(t *testing.T) {
	cfg := testConfig()
	cfg.MinTokens = 100
	sf := srcFile("t.py", "python", "a = 1\nb = 2\nc = 3")

	_, blocks, skip := Analyze(sf, cfg)
	require.Nil(t, skip)
	require.Empty(t, blocks)
}

func TestBlankAndCommentLinesFormNoStatements(t *testing.T) {
	cfg := testConfig()
	sf := srcFile("t.py", "python", "a = 1\n\n# note\nb = 2")

	_, blocks, skip := Analyze(sf, cfg)
	require.Nil(t, skip)
	require.Len(t, blocks, 1)

	// The single window spans from the first to the last statement line.
	require.Equal(t, 1, blocks[0].StartLine)
	require.Equal(t, 4, blocks[0].EndLine)
	require.True(t, blocks[0].WholeFile)
}

func TestAnalyzeSkipsUnsupportedLanguage(t *testing.T) {
	sf := srcFile("t.kt", "kotlin", "fun main() {}")
	_, _, skip := Analyze(sf, testConfig())

	require.NotNil(t, skip)
	require.Equal(t, "unsupported language", skip.Reason)
}

func TestAnalyzeSkipsEmptyFile(t *testing.T) {
	sf := srcFile("t.py", "python", "# only a comment\n")
	_, _, skip := Analyze(sf, testConfig())

	require.NotNil(t, skip)
	require.Equal(t, "no tokens", skip.Reason)
}

func TestStructuralSignatureIgnoresRenames(t *testing.T) {
	lang := LookupLanguage("python")
	a := tokenizeSource("total = price * qty", lang)
	b := tokenizeSource("sum = cost * n", lang)

	require.Equal(t, structuralSignature(a), structuralSignature(b))
}

func TestSignatureClassesTrackRepeats(t *testing.T) {
	lang := LookupLanguage("python")
	toks := tokenizeSource("x = x + y", lang)

	require.Equal(t, []string{"ID1", "", "ID1", "", "ID2"}, signatureClasses(toks))
}

func TestTokenSequenceNormalizesStringContent(t *testing.T) {
	lang := LookupLanguage("python")
	a := tokenizeSource(`print("alpha")`, lang)
	b := tokenizeSource(`print("beta")`, lang)

	require.Equal(t, tokenSequence(a), tokenSequence(b))

	// Numeric literal content is not normalized away.
	c := tokenizeSource("print(1)", lang)
	d := tokenizeSource("print(2)", lang)
	require.NotEqual(t, tokenSequence(c), tokenSequence(d))
}

func TestAnalyzeAllKeepsFileOrder(t *testing.T) {
	cfg := testConfig()
	files := []*SourceFile{
		srcFile("a.py", "python", "a = 1\nb = 2"),
		srcFile("b.py", "python", "c = 3\nd = 4"),
		srcFile("c.kt", "kotlin", "fun main() {}"),
	}

	blocks, skipped, hits, misses := AnalyzeAll(files, cfg, nil)
	require.Equal(t, 0, hits)
	require.Equal(t, 3, misses)
	require.Len(t, skipped, 1)
	require.Equal(t, "c.kt", skipped[0].Path)

	require.Len(t, blocks, 2)
	require.Equal(t, "a.py", blocks[0].File)
	require.Equal(t, "b.py", blocks[1].File)
}
