package main

import (
	"strings"
	"unicode"
)

// Multi-rune operators, longest first so matching is greedy.
var multiCharOps = []string{
	"<<=", ">>=", "===", "!==", "**=", "...",
	"==", "!=", "<=", ">=", "&&", "||", "<<", ">>",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	":=", "=>", "->", "::", "++", "--", "**",
}

const punctChars = "()[]{};,."

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func matchAt(rs []rune, i int, s string) bool {
	for _, r := range s {
		if i >= len(rs) || rs[i] != r {
			return false
		}
		i++
	}
	return true
}

func runeLen(s string) int {
	return len([]rune(s))
}

// tokenizeSource performs the deterministic lexical scan for one file.
// Comments are stripped, string and number literals are recognized as single
// tokens, identifiers are classified against the language's keyword set.
func tokenizeSource(text string, lang *Language) []Token {
	rs := []rune(text)
	var tokens []Token
	line := 1
	i := 0

	for i < len(rs) {
		r := rs[i]
		switch {
		case r == '\n':
			line++
			i++

		case r == ' ' || r == '\t' || r == '\r':
			i++

		case lang.LineComment != "" && matchAt(rs, i, lang.LineComment):
			for i < len(rs) && rs[i] != '\n' {
				i++
			}

		case lang.BlockStart != "" && matchAt(rs, i, lang.BlockStart):
			i += runeLen(lang.BlockStart)
			for i < len(rs) && !matchAt(rs, i, lang.BlockEnd) {
				if rs[i] == '\n' {
					line++
				}
				i++
			}
			if i < len(rs) {
				i += runeLen(lang.BlockEnd)
			}

		case strings.ContainsRune(lang.StringDelims, r):
			start := i
			startLine := line
			delim := r
			i++
			for i < len(rs) {
				if rs[i] == '\\' && delim != '`' {
					i += 2
					continue
				}
				if rs[i] == '\n' {
					line++
				}
				if rs[i] == delim {
					i++
					break
				}
				i++
			}
			tokens = append(tokens, Token{Kind: KindLiteral, Text: string(rs[start:min(i, len(rs))]), Line: startLine})

		case r >= '0' && r <= '9':
			start := i
			for i < len(rs) && (isIdentPart(rs[i]) || rs[i] == '.') {
				i++
			}
			tokens = append(tokens, Token{Kind: KindLiteral, Text: string(rs[start:i]), Line: line})

		case isIdentStart(r):
			start := i
			for i < len(rs) && isIdentPart(rs[i]) {
				i++
			}
			word := string(rs[start:i])
			kind := KindIdent
			if lang.Keywords[word] {
				kind = KindKeyword
			}
			tokens = append(tokens, Token{Kind: kind, Text: word, Line: line})

		default:
			matched := ""
			for _, op := range multiCharOps {
				if matchAt(rs, i, op) {
					matched = op
					break
				}
			}
			if matched != "" {
				tokens = append(tokens, Token{Kind: KindOperator, Text: matched, Line: line})
				i += len(matched)
			} else if strings.ContainsRune(punctChars, r) {
				tokens = append(tokens, Token{Kind: KindPunct, Text: string(r), Line: line})
				i++
			} else {
				tokens = append(tokens, Token{Kind: KindOperator, Text: string(r), Line: line})
				i++
			}
		}
	}

	return tokens
}

// isStringLiteral reports whether a literal token is a quoted string (as
// opposed to a numeric literal).
func isStringLiteral(text string) bool {
	if text == "" {
		return false
	}
	switch text[0] {
	case '"', '\'', '`':
		return true
	}
	return false
}
