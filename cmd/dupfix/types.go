package main

// TokenKind classifies a token independently of the source language.
type TokenKind uint8

const (
	KindIdent TokenKind = iota
	KindKeyword
	KindLiteral
	KindOperator
	KindPunct
)

func (k TokenKind) String() string {
	switch k {
	case KindIdent:
		return "ident"
	case KindKeyword:
		return "keyword"
	case KindLiteral:
		return "literal"
	case KindOperator:
		return "operator"
	default:
		return "punct"
	}
}

// Token is one lexical unit of a source file. The owning file is carried by
// the SourceFile / CodeBlock that holds the token.
type Token struct {
	Kind TokenKind
	Text string
	Line int // 1-based source line
}

// SourceFile is one scanned input file. Immutable once scanned.
type SourceFile struct {
	Path      string
	Language  string
	Text      string
	Lines     []string
	LineCount int
}

// CodeBlock is a contiguous candidate span of a SourceFile.
type CodeBlock struct {
	File      string
	Language  string
	StartLine int
	EndLine   int
	Tokens    []Token
	Lines     []string // raw source lines of the span, including blank lines
	WholeFile bool

	ContentHash uint64 // hash of whitespace-collapsed raw text
	TokenHash   uint64 // hash of the kind+text token sequence
	Signature   string // token-kind sequence with idents/literals abstracted
	SigHash     uint64
}

// LineSpan returns the number of source lines the block covers.
func (b *CodeBlock) LineSpan() int {
	return b.EndLine - b.StartLine + 1
}

// Detection algorithms in suppression priority order (strongest first).
const (
	AlgoExact      = "exact"
	AlgoToken      = "token"
	AlgoFuzzy      = "fuzzy"
	AlgoStructural = "structural"
)

// algorithmRank orders algorithms for suppression; lower is stronger.
var algorithmRank = map[string]int{
	AlgoExact:      0,
	AlgoToken:      1,
	AlgoFuzzy:      2,
	AlgoStructural: 3,
}

// DuplicateGroup is a set of blocks one detection pass considers duplicates.
type DuplicateGroup struct {
	Algorithm     string
	Blocks        []*CodeBlock
	Confidence    float64
	TotalLines    int
	LineReduction int // lines saved if all but one occurrence is replaced
}

// Refactoring strategies.
const (
	StrategyExtractMethod = "extract-method"
	StrategyExtractClass  = "extract-class"
	StrategyExtractModule = "extract-module"
	StrategyParameterize  = "parameterize"
	StrategyManualReview  = "manual-review"
)

// Edit replaces the inclusive line span [StartLine, EndLine] of File with
// Replacement (possibly multiple lines joined by "\n").
type Edit struct {
	File        string
	StartLine   int
	EndLine     int
	Replacement string
}

// RefactoringAction is a planned transformation for one duplicate group.
// Manual-review actions carry a Reason and no edits.
type RefactoringAction struct {
	Strategy    string
	Group       *DuplicateGroup
	Declaration string // synthesized shared declaration, empty for manual-review
	DeclFile    string // file the declaration is appended to (or created as)
	Edits       []Edit
	Reason      string
}

// Write-back modes.
const (
	ModePreview = "preview"
	ModeSafe    = "safe"
	ModeInplace = "inplace"
)

// WriteFailure records a filesystem error for one file's write set.
type WriteFailure struct {
	Path string
	Err  string
}

// ApplyResult summarizes a write-back run.
type ApplyResult struct {
	Mode           string
	FilesWritten   []string
	FilesSkipped   []string // skipped due to edit conflicts
	Failures       []WriteFailure
	ActionsApplied int
}

// SkippedFile records a file excluded from analysis with the reason why.
type SkippedFile struct {
	Path   string
	Reason string
}

// JSON serialization of the structured results.

type JSONBlock struct {
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

type JSONGroup struct {
	Algorithm     string      `json:"algorithm"`
	Confidence    float64     `json:"confidence"`
	Blocks        []JSONBlock `json:"blocks"`
	LineReduction int         `json:"line_reduction_estimate"`
}

type JSONEdit struct {
	File        string `json:"file"`
	StartLine   int    `json:"start_line"`
	EndLine     int    `json:"end_line"`
	Replacement string `json:"replacement_text"`
}

type JSONAction struct {
	Strategy    string     `json:"strategy"`
	GroupRef    int        `json:"group_ref"`
	Edits       []JSONEdit `json:"edits"`
	Declaration string     `json:"synthesized_declaration"`
	Reason      string     `json:"reason,omitempty"`
}

type JSONSkip struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

type JSONReport struct {
	TotalFiles  int              `json:"total_files"`
	ParsedFiles int              `json:"parsed_files"`
	Skipped     []JSONSkip       `json:"skipped_files"`
	TotalGroups int              `json:"total_groups"`
	Groups      []JSONGroup      `json:"groups"`
	Actions     []JSONAction     `json:"actions,omitempty"`
	Apply       *JSONApplyResult `json:"apply_result,omitempty"`
}

type JSONApplyResult struct {
	Mode           string   `json:"mode"`
	FilesWritten   []string `json:"files_written"`
	FilesSkipped   []string `json:"files_skipped_due_to_conflict"`
	ActionsApplied int      `json:"actions_applied"`
}

func groupToJSON(g *DuplicateGroup) JSONGroup {
	blocks := make([]JSONBlock, len(g.Blocks))
	for i, b := range g.Blocks {
		blocks[i] = JSONBlock{File: b.File, StartLine: b.StartLine, EndLine: b.EndLine}
	}
	return JSONGroup{
		Algorithm:     g.Algorithm,
		Confidence:    g.Confidence,
		Blocks:        blocks,
		LineReduction: g.LineReduction,
	}
}

func applyToJSON(res *ApplyResult) *JSONApplyResult {
	return &JSONApplyResult{
		Mode:           res.Mode,
		FilesWritten:   res.FilesWritten,
		FilesSkipped:   res.FilesSkipped,
		ActionsApplied: res.ActionsApplied,
	}
}

func actionToJSON(a *RefactoringAction, groupRef int) JSONAction {
	edits := make([]JSONEdit, len(a.Edits))
	for i, e := range a.Edits {
		edits[i] = JSONEdit{File: e.File, StartLine: e.StartLine, EndLine: e.EndLine, Replacement: e.Replacement}
	}
	return JSONAction{
		Strategy:    a.Strategy,
		GroupRef:    groupRef,
		Edits:       edits,
		Declaration: a.Declaration,
		Reason:      a.Reason,
	}
}
