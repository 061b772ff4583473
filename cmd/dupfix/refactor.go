package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Plan turns detected groups into refactoring actions. Groups below the
// similarity threshold never get an action; synthesis failures degrade to
// manual-review instead of being dropped, so every planned group stays
// visible in the report.
func Plan(groups []*DuplicateGroup, cfg *Config) []*RefactoringAction {
	var actions []*RefactoringAction
	for _, g := range groups {
		if g.Confidence < cfg.SimilarityThreshold {
			continue
		}

		strategy, reason := chooseStrategy(g)
		var a *RefactoringAction
		var err error
		switch strategy {
		case StrategyExtractModule:
			a, err = synthModule(g)
		case StrategyExtractMethod:
			a, err = synthMethod(g)
		case StrategyParameterize:
			a, err = synthParameterize(g, false)
		case StrategyExtractClass:
			a, err = synthParameterize(g, true)
		default:
			a = &RefactoringAction{Strategy: StrategyManualReview, Group: g, Reason: reason}
		}
		if err != nil {
			a = &RefactoringAction{Strategy: StrategyManualReview, Group: g, Reason: err.Error()}
		}
		actions = append(actions, a)
	}
	return actions
}

// synthMethod extracts the canonical block into a new function and replaces
// every occurrence with a call.
func synthMethod(g *DuplicateGroup) (*RefactoringAction, error) {
	canon := g.Blocks[0]
	lang := LookupLanguage(canon.Language)
	if lang == nil {
		return nil, fmt.Errorf("no language table entry for %q", canon.Language)
	}

	name := lang.SymbolName("extracted_block", canon.ContentHash)
	decl, err := renderFuncDecl(lang, name, nil, dedent(canon.Lines))
	if err != nil {
		return nil, err
	}

	edits := make([]Edit, 0, len(g.Blocks))
	for _, b := range g.Blocks {
		edits = append(edits, Edit{
			File:        b.File,
			StartLine:   b.StartLine,
			EndLine:     b.EndLine,
			Replacement: leadingIndent(b.Lines) + lang.CallLine(name, nil),
		})
	}

	return &RefactoringAction{
		Strategy:    StrategyExtractMethod,
		Group:       g,
		Declaration: decl,
		DeclFile:    canon.File,
		Edits:       edits,
	}, nil
}

// synthParameterize extracts the canonical block with the differing
// identifier/literal leaves promoted to parameters. With asClass it wraps
// the result in a class holding one static method, for groups whose spans
// define multiple functions.
func synthParameterize(g *DuplicateGroup, asClass bool) (*RefactoringAction, error) {
	canon := g.Blocks[0]
	lang := LookupLanguage(canon.Language)
	if lang == nil {
		return nil, fmt.Errorf("no language table entry for %q", canon.Language)
	}

	params, err := paramTable(g)
	if err != nil {
		return nil, err
	}

	// Substitute the parameter name at every differing position of the
	// canonical body, then dedent.
	repl := make(map[int]string)
	lines := make(map[int]bool)
	for _, p := range params {
		for _, pos := range p.positions {
			t := canon.Tokens[pos]
			idx := t.Line - canon.StartLine
			if idx < 0 || idx >= len(canon.Lines) {
				return nil, fmt.Errorf("token line %d outside block span", t.Line)
			}
			repl[pos] = p.name
			lines[idx] = true
		}
	}

	body := append([]string(nil), canon.Lines...)
	for idx := range lines {
		replaced, ok := substituteLine(body[idx], canon.Tokens, canon.StartLine+idx, repl)
		if !ok {
			return nil, fmt.Errorf("cannot substitute parameters on line %d", canon.StartLine+idx)
		}
		body[idx] = replaced
	}
	body = dedent(body)

	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.name
	}

	var decl, callee string
	if asClass {
		className := upperFirst(lang.SymbolName("shared_helper", canon.SigHash))
		decl, err = renderClassDecl(lang, className, names, body)
		callee = className + ".apply"
	} else {
		fn := lang.SymbolName("extracted_block", canon.SigHash)
		decl, err = renderFuncDecl(lang, fn, names, body)
		callee = fn
	}
	if err != nil {
		return nil, err
	}

	edits := make([]Edit, 0, len(g.Blocks))
	for _, b := range g.Blocks {
		args := make([]string, len(params))
		for i, p := range params {
			args[i] = b.Tokens[p.positions[0]].Text
		}
		edits = append(edits, Edit{
			File:        b.File,
			StartLine:   b.StartLine,
			EndLine:     b.EndLine,
			Replacement: leadingIndent(b.Lines) + lang.CallLine(callee, args),
		})
	}

	strategy := StrategyParameterize
	if asClass {
		strategy = StrategyExtractClass
	}
	return &RefactoringAction{
		Strategy:    strategy,
		Group:       g,
		Declaration: decl,
		DeclFile:    canon.File,
		Edits:       edits,
	}, nil
}

// synthModule turns a whole-file duplicate group into one shared module file
// plus comment stubs referencing it.
func synthModule(g *DuplicateGroup) (*RefactoringAction, error) {
	canon := g.Blocks[0]
	lang := LookupLanguage(canon.Language)
	if lang == nil {
		return nil, fmt.Errorf("no language table entry for %q", canon.Language)
	}

	name := lang.SymbolName("shared_module", canon.ContentHash)
	declFile := filepath.Join(filepath.Dir(canon.File), name+filepath.Ext(canon.File))

	edits := make([]Edit, 0, len(g.Blocks))
	for _, b := range g.Blocks {
		edits = append(edits, Edit{
			File:        b.File,
			StartLine:   b.StartLine,
			EndLine:     b.EndLine,
			Replacement: lang.CommentLine("moved to " + filepath.Base(declFile)),
		})
	}

	return &RefactoringAction{
		Strategy:    StrategyExtractModule,
		Group:       g,
		Declaration: strings.Join(canon.Lines, "\n"),
		DeclFile:    declFile,
		Edits:       edits,
	}, nil
}

// param is one promoted argument: all canonical token positions of its
// placeholder class that differ somewhere in the group, in source order.
type param struct {
	name      string
	positions []int
}

// paramTable computes the promoted parameters for a group, ordered by first
// differing position so parameter numbering is deterministic.
func paramTable(g *DuplicateGroup) ([]param, error) {
	canon := g.Blocks[0]
	classes := signatureClasses(canon.Tokens)

	byClass := make(map[string][]int)
	var order []string
	for _, b := range g.Blocks[1:] {
		if len(b.Tokens) != len(canon.Tokens) {
			return nil, fmt.Errorf("token streams differ in length")
		}
		for i := range canon.Tokens {
			if b.Tokens[i].Text == canon.Tokens[i].Text && b.Tokens[i].Kind == canon.Tokens[i].Kind {
				continue
			}
			class := classes[i]
			if class == "" {
				return nil, fmt.Errorf("blocks differ outside identifier/literal leaves")
			}
			if !containsInt(byClass[class], i) {
				if len(byClass[class]) == 0 {
					order = append(order, class)
				}
				byClass[class] = append(byClass[class], i)
			}
		}
	}

	// A class is only expressible as one parameter when each block carries a
	// single value across all of the class's positions.
	for _, ps := range byClass {
		sort.Ints(ps)
		for _, b := range g.Blocks {
			first := b.Tokens[ps[0]].Text
			for _, pos := range ps[1:] {
				if b.Tokens[pos].Text != first {
					return nil, fmt.Errorf("occurrences disagree within a placeholder class")
				}
			}
		}
	}

	params := make([]param, len(order))
	for i, class := range order {
		params[i] = param{name: fmt.Sprintf("arg%d", i+1), positions: byClass[class]}
	}
	return params, nil
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// substituteLine rewrites one source line, replacing the tokens listed in
// repl (keyed by token index) with parameter names. Tokens are located left
// to right with a moving cursor, so a parameter name inserted earlier can
// never be mistaken for a later token's text.
func substituteLine(line string, tokens []Token, lineNo int, repl map[int]string) (string, bool) {
	var sb strings.Builder
	cursor := 0
	for i, t := range tokens {
		if t.Line != lineNo {
			continue
		}
		at := strings.Index(line[cursor:], t.Text)
		if at < 0 {
			return "", false
		}
		at += cursor
		if name, ok := repl[i]; ok {
			sb.WriteString(line[cursor:at])
			sb.WriteString(name)
		} else {
			sb.WriteString(line[cursor : at+len(t.Text)])
		}
		cursor = at + len(t.Text)
	}
	sb.WriteString(line[cursor:])
	return sb.String(), true
}

// renderFuncDecl renders a function declaration holding the dedented body,
// in the language's own syntax.
func renderFuncDecl(lang *Language, name string, params, body []string) (string, error) {
	args := strings.Join(params, ", ")
	indent := func(lines []string) []string { return indentLines(lines, lang.IndentUnit) }

	var out []string
	switch lang.Tag {
	case "python":
		out = append([]string{fmt.Sprintf("def %s(%s):", name, args)}, indent(body)...)
	case "ruby":
		out = append([]string{fmt.Sprintf("def %s(%s)", name, args)}, indent(body)...)
		out = append(out, "end")
	case "go":
		out = append([]string{fmt.Sprintf("func %s(%s) {", name, args)}, indent(body)...)
		out = append(out, "}")
	case "rust":
		out = append([]string{fmt.Sprintf("fn %s(%s) {", name, args)}, indent(body)...)
		out = append(out, "}")
	case "javascript", "typescript", "php":
		out = append([]string{fmt.Sprintf("function %s(%s) {", name, args)}, indent(body)...)
		out = append(out, "}")
	case "java", "csharp":
		out = append([]string{fmt.Sprintf("static void %s(%s) {", name, args)}, indent(body)...)
		out = append(out, "}")
	case "c", "cpp":
		out = append([]string{fmt.Sprintf("void %s(%s) {", name, args)}, indent(body)...)
		out = append(out, "}")
	default:
		return "", fmt.Errorf("no function syntax for %q", lang.Tag)
	}
	return strings.Join(out, "\n"), nil
}

// renderClassDecl wraps the body in a class exposing one static apply
// method. Languages without classes report an error and the caller falls
// back to manual-review.
func renderClassDecl(lang *Language, name string, params, body []string) (string, error) {
	args := strings.Join(params, ", ")
	u := lang.IndentUnit
	inner := indentLines(indentLines(body, u), u)

	var out []string
	switch lang.Tag {
	case "python":
		out = append(out, fmt.Sprintf("class %s:", name), u+"@staticmethod",
			fmt.Sprintf("%sdef apply(%s):", u, args))
		out = append(out, inner...)
	case "ruby":
		out = append(out, fmt.Sprintf("class %s", name),
			fmt.Sprintf("%sdef self.apply(%s)", u, args))
		out = append(out, inner...)
		out = append(out, u+"end", "end")
	case "javascript", "typescript":
		out = append(out, fmt.Sprintf("class %s {", name),
			fmt.Sprintf("%sstatic apply(%s) {", u, args))
		out = append(out, inner...)
		out = append(out, u+"}", "}")
	case "java", "csharp":
		out = append(out, fmt.Sprintf("class %s {", name),
			fmt.Sprintf("%sstatic void apply(%s) {", u, args))
		out = append(out, inner...)
		out = append(out, u+"}", "}")
	case "php":
		out = append(out, fmt.Sprintf("class %s {", name),
			fmt.Sprintf("%sstatic function apply(%s) {", u, args))
		out = append(out, inner...)
		out = append(out, u+"}", "}")
	default:
		return "", fmt.Errorf("no class syntax for %q", lang.Tag)
	}
	return strings.Join(out, "\n"), nil
}

// dedent strips the longest common leading whitespace from non-blank lines.
func dedent(lines []string) []string {
	common := ""
	first := true
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		ws := l[:len(l)-len(strings.TrimLeft(l, " \t"))]
		if first {
			common = ws
			first = false
			continue
		}
		for !strings.HasPrefix(l, common) {
			common = common[:len(common)-1]
		}
	}

	out := make([]string, len(lines))
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			out[i] = ""
			continue
		}
		out[i] = strings.TrimPrefix(l, common)
	}
	return out
}

// leadingIndent returns the indentation of the first non-blank line, used to
// keep synthesized call sites aligned with the code they replace.
func leadingIndent(lines []string) string {
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		return l[:len(l)-len(strings.TrimLeft(l, " \t"))]
	}
	return ""
}

func indentLines(lines []string, unit string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		if l == "" {
			out[i] = ""
			continue
		}
		out[i] = unit + l
	}
	return out
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
