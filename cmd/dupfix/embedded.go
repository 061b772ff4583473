package main

import "strings"

// cssSegment is one run of embedded CSS inside a host file: the raw segment
// text plus the host line it starts on.
type cssSegment struct {
	startLine int
	text      string
}

// extractEmbeddedCSS pulls stylesheet fragments out of non-CSS hosts so they
// join the same detection passes as stand-alone .css files: <style> elements
// in HTML, and CSS-in-JS template literals in JavaScript/TypeScript.
func extractEmbeddedCSS(sf *SourceFile) []cssSegment {
	switch sf.Language {
	case "html":
		return styleElementSegments(sf.Text)
	case "javascript", "typescript":
		return templateLiteralSegments(sf.Text)
	}
	return nil
}

// styleElementSegments returns the inner text of every <style ...>...</style>
// element, matched case-insensitively.
func styleElementSegments(text string) []cssSegment {
	lower := strings.ToLower(text)
	var segs []cssSegment
	pos := 0
	for {
		open := strings.Index(lower[pos:], "<style")
		if open < 0 {
			return segs
		}
		open += pos
		gt := strings.IndexByte(lower[open:], '>')
		if gt < 0 {
			return segs
		}
		start := open + gt + 1
		end := strings.Index(lower[start:], "</style>")
		if end < 0 {
			return segs
		}
		end += start
		segs = append(segs, cssSegment{
			startLine: strings.Count(text[:start], "\n") + 1,
			text:      text[start:end],
		})
		pos = end + len("</style>")
	}
}

// templateLiteralSegments returns the content of backtick template literals
// that look like stylesheets (css`...`, styled.div`...` and friends all scan
// the same way: what matters is the literal's content, not its tag).
func templateLiteralSegments(text string) []cssSegment {
	var segs []cssSegment
	pos := 0
	for {
		open := strings.IndexByte(text[pos:], '`')
		if open < 0 {
			return segs
		}
		open += pos
		inner := strings.IndexByte(text[open+1:], '`')
		if inner < 0 {
			return segs
		}
		start := open + 1
		end := start + inner
		if body := text[start:end]; looksLikeCSS(body) {
			segs = append(segs, cssSegment{
				startLine: strings.Count(text[:start], "\n") + 1,
				text:      body,
			})
		}
		pos = end + 1
	}
}

// looksLikeCSS decides whether a template literal holds a stylesheet: a brace
// pair plus at least one "property: value" colon with content before the line
// (or declaration) ends.
func looksLikeCSS(s string) bool {
	if !strings.Contains(s, "{") || !strings.Contains(s, "}") {
		return false
	}
	seenColon := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ':':
			seenColon = true
		case '\n', ';':
			seenColon = false
		case ' ', '\t':
		default:
			if seenColon {
				return true
			}
		}
	}
	return false
}

// embeddedCSSBlocks tokenizes the CSS segments embedded in a host file and
// windows them exactly like a stand-alone stylesheet. The resulting blocks
// keep the host path and absolute host line numbers but carry the css
// language, so the detector matches them against .css files and against
// segments in other host types. A segment is never a whole-file duplicate of
// its host, so the whole-file flag stays off.
func embeddedCSSBlocks(sf *SourceFile, cfg *Config) []*CodeBlock {
	segs := extractEmbeddedCSS(sf)
	if len(segs) == 0 {
		return nil
	}
	css := LookupLanguage("css")

	var blocks []*CodeBlock
	for _, seg := range segs {
		tokens := tokenizeSource(seg.text, css)
		if len(tokens) == 0 {
			continue
		}
		for i := range tokens {
			tokens[i].Line += seg.startLine - 1
		}

		// A shadow view of the host whose lines are the segment's own, padded
		// so absolute line numbers index correctly. Block text must come from
		// the segment, not the host: on boundary lines the host still carries
		// the surrounding markup.
		segLines := strings.Split(seg.text, "\n")
		view := &SourceFile{Path: sf.Path, Language: "css"}
		view.Lines = make([]string, seg.startLine-1, seg.startLine-1+len(segLines))
		view.Lines = append(view.Lines, segLines...)

		for _, b := range buildBlocks(view, css, tokens, cfg) {
			b.WholeFile = false
			blocks = append(blocks, b)
		}
	}
	return blocks
}
