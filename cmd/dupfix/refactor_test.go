package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// makeBlock builds a block spanning an entire in-memory snippet.
func makeBlock(t *testing.T, path, langTag, text string) *CodeBlock {
	t.Helper()
	sf := srcFile(path, langTag, text)
	lang := LookupLanguage(langTag)
	require.NotNil(t, lang)
	toks := tokenizeSource(text, lang)
	require.NotEmpty(t, toks)
	return newBlock(sf, lang, toks, 1, len(sf.Lines))
}

func TestChooseStrategyTable(t *testing.T) {
	whole := makeBlock(t, "a.py", "python", "x = 1\ny = 2")
	whole.WholeFile = true
	whole2 := makeBlock(t, "b.py", "python", "x = 1\ny = 2")
	whole2.WholeFile = true

	strategy, _ := chooseStrategy(newGroup(AlgoExact, []*CodeBlock{whole, whole2}, 1.0))
	require.Equal(t, StrategyExtractModule, strategy)

	// One differing literal class, no function definitions.
	pa := makeBlock(t, "a.py", "python", "total = price * 3\nprint(total)")
	pb := makeBlock(t, "b.py", "python", "total = price * 9\nprint(total)")
	strategy, _ = chooseStrategy(newGroup(AlgoFuzzy, []*CodeBlock{pa, pb}, 0.9))
	require.Equal(t, StrategyParameterize, strategy)

	// One differing literal class across two function definitions.
	ca := makeBlock(t, "a.py", "python", "def a():\n    return 1\ndef b():\n    return 1")
	cb := makeBlock(t, "c.py", "python", "def a():\n    return 2\ndef b():\n    return 2")
	strategy, _ = chooseStrategy(newGroup(AlgoFuzzy, []*CodeBlock{ca, cb}, 0.9))
	require.Equal(t, StrategyExtractClass, strategy)

	// Token-identical non-whole-file blocks.
	ma := makeBlock(t, "a.py", "python", "print(a)\nprint(b)")
	mb := makeBlock(t, "b.py", "python", "print(a)\nprint(b)")
	strategy, _ = chooseStrategy(newGroup(AlgoExact, []*CodeBlock{ma, mb}, 1.0))
	require.Equal(t, StrategyExtractMethod, strategy)

	// Different shapes fit nothing.
	xa := makeBlock(t, "a.py", "python", "a = 1\nb = 2")
	xb := makeBlock(t, "b.py", "python", "a = 1\nb = 2\nc = 3")
	strategy, reason := chooseStrategy(newGroup(AlgoFuzzy, []*CodeBlock{xa, xb}, 0.9))
	require.Equal(t, StrategyManualReview, strategy)
	require.NotEmpty(t, reason)
}

func TestChooseStrategyTwoLiteralClassesNeedReview(t *testing.T) {
	// String content is normalized away by the token pass, so these blocks
	// are token-identical yet differ in two literal classes. Extracting the
	// canonical body would rewrite the second occurrence's strings, so the
	// review row must win over extract-method.
	a := makeBlock(t, "a.py", "python", "greet(\"hi\")\nwarn(\"no\")")
	b := makeBlock(t, "b.py", "python", "greet(\"yo\")\nwarn(\"na\")")
	require.Equal(t, a.TokenHash, b.TokenHash)

	strategy, reason := chooseStrategy(newGroup(AlgoToken, []*CodeBlock{a, b}, 1.0))
	require.Equal(t, StrategyManualReview, strategy)
	require.Contains(t, reason, "more than one")
}

func TestPlanExtractMethod(t *testing.T) {
	a := makeBlock(t, "a.py", "python", "    print(a)\n    print(b)")
	b := makeBlock(t, "b.py", "python", "    print(a)\n    print(b)")
	g := newGroup(AlgoExact, []*CodeBlock{a, b}, 1.0)

	actions := Plan([]*DuplicateGroup{g}, testConfig())
	require.Len(t, actions, 1)

	act := actions[0]
	require.Equal(t, StrategyExtractMethod, act.Strategy)
	require.Equal(t, "a.py", act.DeclFile)
	require.True(t, strings.HasPrefix(act.Declaration, "def extracted_block_"))
	require.Contains(t, act.Declaration, "\n    print(a)\n    print(b)")

	require.Len(t, act.Edits, 2)
	for _, e := range act.Edits {
		require.True(t, strings.HasPrefix(e.Replacement, "    extracted_block_"))
		require.True(t, strings.HasSuffix(e.Replacement, "()"))
		require.Equal(t, 1, e.StartLine)
		require.Equal(t, 2, e.EndLine)
	}
}

func TestPlanThreeOccurrencesYieldOneActionThreeEdits(t *testing.T) {
	snippet := "    value = escape(raw)\n    emit(value)"
	blocks := []*CodeBlock{
		makeBlock(t, "a.py", "python", snippet),
		makeBlock(t, "b.py", "python", snippet),
		makeBlock(t, "c.py", "python", snippet),
	}
	g := newGroup(AlgoToken, blocks, 1.0)

	actions := Plan([]*DuplicateGroup{g}, testConfig())
	require.Len(t, actions, 1)
	require.Equal(t, StrategyExtractMethod, actions[0].Strategy)
	require.Len(t, actions[0].Edits, 3)
	require.NotEmpty(t, actions[0].Declaration)
}

func TestPlanParameterizePromotesLiteral(t *testing.T) {
	a := makeBlock(t, "a.py", "python", "total = price * 3\nprint(total)")
	b := makeBlock(t, "b.py", "python", "total = price * 9\nprint(total)")
	g := newGroup(AlgoFuzzy, []*CodeBlock{a, b}, 0.9)

	actions := Plan([]*DuplicateGroup{g}, testConfig())
	require.Len(t, actions, 1)

	act := actions[0]
	require.Equal(t, StrategyParameterize, act.Strategy)
	require.Contains(t, act.Declaration, "(arg1):")
	require.Contains(t, act.Declaration, "total = price * arg1")

	require.Len(t, act.Edits, 2)
	require.True(t, strings.HasSuffix(act.Edits[0].Replacement, "(3)"))
	require.True(t, strings.HasSuffix(act.Edits[1].Replacement, "(9)"))
}

func TestPlanParameterizeHandlesRepeatsOnOneLine(t *testing.T) {
	a := makeBlock(t, "a.py", "python", "pair = (7, 7)\nprint(pair)")
	b := makeBlock(t, "b.py", "python", "pair = (9, 9)\nprint(pair)")
	g := newGroup(AlgoFuzzy, []*CodeBlock{a, b}, 0.9)

	actions := Plan([]*DuplicateGroup{g}, testConfig())
	require.Len(t, actions, 1)

	act := actions[0]
	require.Equal(t, StrategyParameterize, act.Strategy)
	require.Contains(t, act.Declaration, "pair = (arg1, arg1)")
	require.True(t, strings.HasSuffix(act.Edits[0].Replacement, "(7)"))
	require.True(t, strings.HasSuffix(act.Edits[1].Replacement, "(9)"))
}

func TestPlanExtractClassWrapsStaticMethod(t *testing.T) {
	a := makeBlock(t, "a.py", "python", "def a():\n    return 1\ndef b():\n    return 1")
	b := makeBlock(t, "c.py", "python", "def a():\n    return 2\ndef b():\n    return 2")
	g := newGroup(AlgoFuzzy, []*CodeBlock{a, b}, 0.93)

	actions := Plan([]*DuplicateGroup{g}, testConfig())
	require.Len(t, actions, 1)

	act := actions[0]
	require.Equal(t, StrategyExtractClass, act.Strategy)
	require.True(t, strings.HasPrefix(act.Declaration, "class Shared_helper_"))
	require.Contains(t, act.Declaration, "@staticmethod")
	require.Contains(t, act.Declaration, "def apply(arg1):")
	require.Contains(t, act.Declaration, "return arg1")

	require.Len(t, act.Edits, 2)
	require.Contains(t, act.Edits[0].Replacement, ".apply(1)")
	require.Contains(t, act.Edits[1].Replacement, ".apply(2)")
}

func TestPlanExtractModule(t *testing.T) {
	a := makeBlock(t, filepath.Join("src", "a.py"), "python", "x = 1\ny = 2")
	a.WholeFile = true
	b := makeBlock(t, filepath.Join("src", "b.py"), "python", "x = 1\ny = 2")
	b.WholeFile = true
	g := newGroup(AlgoExact, []*CodeBlock{a, b}, 1.0)

	actions := Plan([]*DuplicateGroup{g}, testConfig())
	require.Len(t, actions, 1)

	act := actions[0]
	require.Equal(t, StrategyExtractModule, act.Strategy)
	require.Equal(t, "x = 1\ny = 2", act.Declaration)
	require.Equal(t, "src", filepath.Dir(act.DeclFile))
	require.True(t, strings.HasSuffix(act.DeclFile, ".py"))

	require.Len(t, act.Edits, 2)
	require.True(t, strings.HasPrefix(act.Edits[0].Replacement, "# moved to shared_module_"))
}

func TestPlanManualReviewKeepsGroupVisible(t *testing.T) {
	a := makeBlock(t, "a.py", "python", "a = 1\nb = 2")
	b := makeBlock(t, "b.py", "python", "a = 1\nb = 2\nc = 3")
	g := newGroup(AlgoFuzzy, []*CodeBlock{a, b}, 0.9)

	actions := Plan([]*DuplicateGroup{g}, testConfig())
	require.Len(t, actions, 1)
	require.Equal(t, StrategyManualReview, actions[0].Strategy)
	require.NotEmpty(t, actions[0].Reason)
	require.Empty(t, actions[0].Edits)
}

func TestPlanSkipsGroupsBelowThreshold(t *testing.T) {
	a := makeBlock(t, "a.py", "python", "x = 1\ny = 2")
	b := makeBlock(t, "b.py", "python", "x = 1\ny = 2")
	g := newGroup(AlgoStructural, []*CodeBlock{a, b}, structuralConfidence)

	actions := Plan([]*DuplicateGroup{g}, testConfig())
	require.Empty(t, actions)
}

func TestDedent(t *testing.T) {
	in := []string{"    if x:", "        go()", "", "    done()"}
	require.Equal(t, []string{"if x:", "    go()", "", "done()"}, dedent(in))
}
