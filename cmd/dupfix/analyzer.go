package main

import (
	"fmt"
	"runtime"
	"strconv"
	"sync"
)

// Analyze turns one source file into its token stream and candidate blocks.
// Files the tokenizer cannot make sense of yield an empty token stream and a
// skip record; they never abort the run.
func Analyze(sf *SourceFile, cfg *Config) ([]Token, []*CodeBlock, *SkippedFile) {
	lang := LookupLanguage(sf.Language)
	if lang == nil {
		return nil, nil, &SkippedFile{Path: sf.Path, Reason: "unsupported language"}
	}

	tokens := tokenizeSource(sf.Text, lang)
	if len(tokens) == 0 {
		return nil, nil, &SkippedFile{Path: sf.Path, Reason: "no tokens"}
	}

	blocks := buildBlocks(sf, lang, tokens, cfg)
	blocks = append(blocks, embeddedCSSBlocks(sf, cfg)...)
	return tokens, blocks, nil
}

// statement groups the tokens that share one source line. Lines without
// tokens (blank lines, comment-only lines) form no statement.
type statement struct {
	line     int
	tokStart int // index into the file token slice
	tokEnd   int // exclusive
}

func splitStatements(tokens []Token) []statement {
	var stmts []statement
	for i := 0; i < len(tokens); {
		line := tokens[i].Line
		j := i
		for j < len(tokens) && tokens[j].Line == line {
			j++
		}
		stmts = append(stmts, statement{line: line, tokStart: i, tokEnd: j})
		i = j
	}
	return stmts
}

// buildBlocks generates statement-aligned overlapping windows. A window
// starts at every statement (stride of one statement), covers MinLines
// consecutive statements and must also satisfy MinTokens. One whole-file
// block is added so module-level duplication is visible to the detector.
func buildBlocks(sf *SourceFile, lang *Language, tokens []Token, cfg *Config) []*CodeBlock {
	stmts := splitStatements(tokens)
	if len(stmts) < cfg.MinLines {
		return nil
	}

	var blocks []*CodeBlock
	for i := 0; i+cfg.MinLines <= len(stmts); i++ {
		first, last := stmts[i], stmts[i+cfg.MinLines-1]
		if last.tokEnd-first.tokStart < cfg.MinTokens {
			continue
		}
		b := newBlock(sf, lang, tokens[first.tokStart:last.tokEnd], first.line, last.line)
		if len(stmts) == cfg.MinLines {
			b.WholeFile = true
		}
		blocks = append(blocks, b)
	}

	if len(stmts) > cfg.MinLines && len(tokens) >= cfg.MinTokens {
		whole := newBlock(sf, lang, tokens, stmts[0].line, stmts[len(stmts)-1].line)
		whole.WholeFile = true
		blocks = append(blocks, whole)
	}

	return blocks
}

func newBlock(sf *SourceFile, lang *Language, tokens []Token, startLine, endLine int) *CodeBlock {
	lines := sf.Lines[startLine-1 : endLine]
	sig := structuralSignature(tokens)
	return &CodeBlock{
		File:        sf.Path,
		Language:    sf.Language,
		StartLine:   startLine,
		EndLine:     endLine,
		Tokens:      tokens,
		Lines:       lines,
		ContentHash: hashText(normalizeText(lines)),
		TokenHash:   hashParts(tokenSequence(tokens)),
		Signature:   sig,
		SigHash:     hashText(sig),
	}
}

// tokenSequence renders tokens for the token-equality pass: kind plus text,
// except string literal content which the pass normalizes away (raw layout
// signals like string content belong to the exact pass only).
func tokenSequence(tokens []Token) []string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		text := t.Text
		if t.Kind == KindLiteral && isStringLiteral(text) {
			text = "STR"
		}
		parts[i] = t.Kind.String() + "|" + text
	}
	return parts
}

// structuralSignature abstracts identifiers and literals to positional
// placeholders (ID1, ID2, ... / LIT1, LIT2, ... by first occurrence) so two
// blocks with the same shape but renamed identifiers produce identical
// signatures.
func structuralSignature(tokens []Token) string {
	classes := signatureClasses(tokens)
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		if classes[i] != "" {
			parts[i] = classes[i]
		} else {
			parts[i] = t.Text
		}
	}
	buf := make([]byte, 0, len(parts)*4)
	for i, p := range parts {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, p...)
	}
	return string(buf)
}

// signatureClasses returns, per token position, the placeholder class of the
// token ("" for keywords, operators and punctuation).
func signatureClasses(tokens []Token) []string {
	classes := make([]string, len(tokens))
	ids := make(map[string]string)
	lits := make(map[string]string)
	for i, t := range tokens {
		switch t.Kind {
		case KindIdent:
			cls, ok := ids[t.Text]
			if !ok {
				cls = "ID" + strconv.Itoa(len(ids)+1)
				ids[t.Text] = cls
			}
			classes[i] = cls
		case KindLiteral:
			cls, ok := lits[t.Text]
			if !ok {
				cls = "LIT" + strconv.Itoa(len(lits)+1)
				lits[t.Text] = cls
			}
			classes[i] = cls
		}
	}
	return classes
}

// analysisResult keeps per-file analysis output in original file order.
type analysisResult struct {
	tokens []Token
	blocks []*CodeBlock
	skip   *SkippedFile
}

// AnalyzeAll analyzes files on a bounded worker pool. Results are collected
// into original file order before detection, so output is deterministic
// regardless of completion order.
func AnalyzeAll(files []*SourceFile, cfg *Config, cache *TokenCache) ([]*CodeBlock, []SkippedFile, int, int) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]analysisResult, len(files))
	var cacheHits, cacheMisses int
	var statMu sync.Mutex

	work := make(chan int, len(files))
	for i := range files {
		work <- i
	}
	close(work)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				sf := files[idx]
				lang := LookupLanguage(sf.Language)

				if cached, ok := cache.Lookup(sf.Path); ok && lang != nil {
					// The cache holds host tokens only; embedded CSS is
					// re-extracted from the text either way.
					blocks := buildBlocks(sf, lang, cached, cfg)
					blocks = append(blocks, embeddedCSSBlocks(sf, cfg)...)
					results[idx] = analysisResult{tokens: cached, blocks: blocks}
					statMu.Lock()
					cacheHits++
					statMu.Unlock()
					continue
				}

				tokens, blocks, skip := Analyze(sf, cfg)
				results[idx] = analysisResult{tokens: tokens, blocks: blocks, skip: skip}
				statMu.Lock()
				cacheMisses++
				statMu.Unlock()
			}
		}()
	}
	wg.Wait()

	var blocks []*CodeBlock
	var skipped []SkippedFile
	for i, r := range results {
		if r.skip != nil {
			skipped = append(skipped, *r.skip)
			continue
		}
		blocks = append(blocks, r.blocks...)
		cache.Store(files[i].Path, r.tokens)
	}
	return blocks, skipped, cacheHits, cacheMisses
}

// DescribeBlock is a short human-readable block reference for reports.
func DescribeBlock(b *CodeBlock) string {
	return fmt.Sprintf("%s:%d-%d", b.File, b.StartLine, b.EndLine)
}
