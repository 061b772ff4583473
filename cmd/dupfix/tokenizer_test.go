package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/stretchr/testify/require"
)

func TestTokenizerDataDriven(t *testing.T) {
	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			var tag string
			d.ScanArgs(t, "lang", &tag)
			lang := LookupLanguage(tag)
			require.NotNil(t, lang, "unknown language %q", tag)

			switch d.Cmd {
			case "tokenize":
				var sb strings.Builder
				for _, tok := range tokenizeSource(d.Input, lang) {
					fmt.Fprintf(&sb, "%d %s %s\n", tok.Line, tok.Kind, tok.Text)
				}
				return sb.String()
			case "signature":
				return structuralSignature(tokenizeSource(d.Input, lang)) + "\n"
			default:
				t.Fatalf("unknown command: %s", d.Cmd)
				return ""
			}
		})
	})
}

func TestStringLiteralsKeepStartLine(t *testing.T) {
	lang := LookupLanguage("javascript")
	toks := tokenizeSource("x = `first\nsecond`\ny = 1", lang)

	require.Len(t, toks, 6)
	require.Equal(t, KindLiteral, toks[2].Kind)
	require.Equal(t, 1, toks[2].Line)
	require.Equal(t, "y", toks[3].Text)
	require.Equal(t, 3, toks[3].Line)
}

func TestEscapedQuoteStaysInsideLiteral(t *testing.T) {
	lang := LookupLanguage("python")
	toks := tokenizeSource(`s = "a\"b"`, lang)

	require.Len(t, toks, 3)
	require.Equal(t, KindLiteral, toks[2].Kind)
	require.Equal(t, `"a\"b"`, toks[2].Text)
}

func TestKeywordClassification(t *testing.T) {
	lang := LookupLanguage("go")
	toks := tokenizeSource("func run() { return }", lang)

	kinds := make([]TokenKind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	require.Equal(t, []TokenKind{KindKeyword, KindIdent, KindPunct, KindPunct,
		KindPunct, KindKeyword, KindPunct}, kinds)
}
