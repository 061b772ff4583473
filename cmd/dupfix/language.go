package main

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Language is one row of the closed tokenizer table. Adding support for a
// new language means adding a row here, nothing else.
type Language struct {
	Tag          string
	Extensions   []string
	LineComment  string
	BlockStart   string
	BlockEnd     string
	StringDelims string // each rune is a string delimiter
	Keywords     map[string]bool

	// Synthesis hints for the refactor engine.
	FuncKeywords    []string // tokens that open a function declaration
	SnakeCase       bool     // naming style for synthesized symbols
	StatementSuffix string   // appended to synthesized call lines
	IndentUnit      string
}

func keywordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// languages is the closed language table. Tags follow the configuration
// surface ("python", "javascript", ...).
var languages = []*Language{
	{
		Tag:          "python",
		Extensions:   []string{".py"},
		LineComment:  "#",
		StringDelims: `"'`,
		Keywords: keywordSet("def", "class", "return", "if", "elif", "else", "for",
			"while", "in", "not", "and", "or", "import", "from", "as", "with",
			"try", "except", "finally", "raise", "pass", "break", "continue",
			"lambda", "yield", "global", "nonlocal", "assert", "del", "is",
			"None", "True", "False", "async", "await"),
		FuncKeywords:    []string{"def"},
		SnakeCase:       true,
		StatementSuffix: "",
		IndentUnit:      "    ",
	},
	{
		Tag:          "javascript",
		Extensions:   []string{".js", ".jsx", ".mjs"},
		LineComment:  "//",
		BlockStart:   "/*",
		BlockEnd:     "*/",
		StringDelims: "\"'`",
		Keywords: keywordSet("function", "var", "let", "const", "return", "if",
			"else", "for", "while", "do", "switch", "case", "default", "break",
			"continue", "new", "delete", "typeof", "instanceof", "in", "of",
			"class", "extends", "super", "this", "null", "undefined", "true",
			"false", "try", "catch", "finally", "throw", "async", "await",
			"yield", "import", "export"),
		FuncKeywords:    []string{"function"},
		StatementSuffix: ";",
		IndentUnit:      "  ",
	},
	{
		Tag:          "typescript",
		Extensions:   []string{".ts", ".tsx"},
		LineComment:  "//",
		BlockStart:   "/*",
		BlockEnd:     "*/",
		StringDelims: "\"'`",
		Keywords: keywordSet("function", "var", "let", "const", "return", "if",
			"else", "for", "while", "do", "switch", "case", "default", "break",
			"continue", "new", "typeof", "instanceof", "in", "of", "class",
			"extends", "implements", "interface", "type", "enum", "namespace",
			"this", "null", "undefined", "true", "false", "try", "catch",
			"finally", "throw", "async", "await", "import", "export", "public",
			"private", "protected", "readonly"),
		FuncKeywords:    []string{"function"},
		StatementSuffix: ";",
		IndentUnit:      "  ",
	},
	{
		Tag:          "java",
		Extensions:   []string{".java"},
		LineComment:  "//",
		BlockStart:   "/*",
		BlockEnd:     "*/",
		StringDelims: `"'`,
		Keywords: keywordSet("public", "private", "protected", "static", "final",
			"void", "int", "long", "double", "float", "boolean", "char", "byte",
			"short", "class", "interface", "enum", "extends", "implements",
			"return", "if", "else", "for", "while", "do", "switch", "case",
			"default", "break", "continue", "new", "this", "super", "null",
			"true", "false", "try", "catch", "finally", "throw", "throws",
			"import", "package", "abstract", "synchronized", "instanceof"),
		StatementSuffix: ";",
		IndentUnit:      "    ",
	},
	{
		Tag:          "c",
		Extensions:   []string{".c", ".h"},
		LineComment:  "//",
		BlockStart:   "/*",
		BlockEnd:     "*/",
		StringDelims: `"'`,
		Keywords: keywordSet("int", "long", "short", "char", "float", "double",
			"void", "unsigned", "signed", "struct", "union", "enum", "typedef",
			"static", "extern", "const", "volatile", "return", "if", "else",
			"for", "while", "do", "switch", "case", "default", "break",
			"continue", "goto", "sizeof"),
		SnakeCase:       true,
		StatementSuffix: ";",
		IndentUnit:      "    ",
	},
	{
		Tag:          "cpp",
		Extensions:   []string{".cpp", ".cc", ".cxx", ".hpp", ".hh"},
		LineComment:  "//",
		BlockStart:   "/*",
		BlockEnd:     "*/",
		StringDelims: `"'`,
		Keywords: keywordSet("int", "long", "short", "char", "float", "double",
			"void", "unsigned", "signed", "bool", "struct", "union", "enum",
			"typedef", "static", "extern", "const", "volatile", "return", "if",
			"else", "for", "while", "do", "switch", "case", "default", "break",
			"continue", "goto", "sizeof", "class", "public", "private",
			"protected", "virtual", "override", "template", "typename",
			"namespace", "using", "new", "delete", "this", "nullptr", "true",
			"false", "try", "catch", "throw", "auto"),
		SnakeCase:       true,
		StatementSuffix: ";",
		IndentUnit:      "    ",
	},
	{
		Tag:          "csharp",
		Extensions:   []string{".cs"},
		LineComment:  "//",
		BlockStart:   "/*",
		BlockEnd:     "*/",
		StringDelims: `"'`,
		Keywords: keywordSet("public", "private", "protected", "internal",
			"static", "readonly", "void", "int", "long", "double", "float",
			"bool", "string", "char", "byte", "class", "struct", "interface",
			"enum", "return", "if", "else", "for", "foreach", "while", "do",
			"switch", "case", "default", "break", "continue", "new", "this",
			"base", "null", "true", "false", "try", "catch", "finally",
			"throw", "using", "namespace", "var", "async", "await", "override",
			"virtual", "abstract", "sealed"),
		StatementSuffix: ";",
		IndentUnit:      "    ",
	},
	{
		Tag:          "go",
		Extensions:   []string{".go"},
		LineComment:  "//",
		BlockStart:   "/*",
		BlockEnd:     "*/",
		StringDelims: "\"'`",
		Keywords: keywordSet("func", "var", "const", "type", "struct",
			"interface", "map", "chan", "return", "if", "else", "for", "range",
			"switch", "case", "default", "break", "continue", "go", "defer",
			"select", "package", "import", "nil", "true", "false", "make",
			"new", "len", "cap", "append", "fallthrough", "goto"),
		FuncKeywords:    []string{"func"},
		StatementSuffix: "",
		IndentUnit:      "\t",
	},
	{
		Tag:          "ruby",
		Extensions:   []string{".rb"},
		LineComment:  "#",
		StringDelims: `"'`,
		Keywords: keywordSet("def", "end", "class", "module", "return", "if",
			"elsif", "else", "unless", "case", "when", "for", "while", "until",
			"do", "begin", "rescue", "ensure", "raise", "yield", "self", "nil",
			"true", "false", "and", "or", "not", "require", "attr_accessor"),
		FuncKeywords:    []string{"def"},
		SnakeCase:       true,
		StatementSuffix: "",
		IndentUnit:      "  ",
	},
	{
		Tag:          "php",
		Extensions:   []string{".php"},
		LineComment:  "//",
		BlockStart:   "/*",
		BlockEnd:     "*/",
		StringDelims: `"'`,
		Keywords: keywordSet("function", "return", "if", "else", "elseif",
			"for", "foreach", "while", "do", "switch", "case", "default",
			"break", "continue", "class", "extends", "implements", "interface",
			"public", "private", "protected", "static", "new", "this", "null",
			"true", "false", "try", "catch", "finally", "throw", "namespace",
			"use", "echo", "require", "include"),
		SnakeCase:       true,
		StatementSuffix: ";",
		IndentUnit:      "    ",
	},
	{
		Tag:          "rust",
		Extensions:   []string{".rs"},
		LineComment:  "//",
		BlockStart:   "/*",
		BlockEnd:     "*/",
		StringDelims: `"'`,
		Keywords: keywordSet("fn", "let", "mut", "const", "static", "struct",
			"enum", "impl", "trait", "return", "if", "else", "for", "while",
			"loop", "match", "break", "continue", "pub", "use", "mod", "crate",
			"self", "Self", "true", "false", "as", "in", "ref", "move",
			"async", "await", "dyn", "where", "unsafe"),
		FuncKeywords:    []string{"fn"},
		SnakeCase:       true,
		StatementSuffix: ";",
		IndentUnit:      "    ",
	},
	{
		Tag:          "html",
		Extensions:   []string{".html", ".htm"},
		BlockStart:   "<!--",
		BlockEnd:     "-->",
		StringDelims: `"'`,
		Keywords:     keywordSet(),
		IndentUnit:   "  ",
	},
	{
		Tag:          "css",
		Extensions:   []string{".css", ".scss", ".less"},
		BlockStart:   "/*",
		BlockEnd:     "*/",
		StringDelims: `"'`,
		Keywords:     keywordSet(),
		IndentUnit:   "  ",
	},
}

var languageByTag = func() map[string]*Language {
	m := make(map[string]*Language, len(languages))
	for _, l := range languages {
		m[l.Tag] = l
	}
	return m
}()

// LookupLanguage returns the table row for a tag, or nil for unknown tags.
func LookupLanguage(tag string) *Language {
	return languageByTag[tag]
}

// extensionTable builds ext -> language for the configured allow-list.
func extensionTable(tags []string) map[string]*Language {
	m := make(map[string]*Language)
	for _, tag := range tags {
		lang := languageByTag[tag]
		if lang == nil {
			continue
		}
		for _, ext := range lang.Extensions {
			m[ext] = lang
		}
	}
	return m
}

// DetectLanguage maps a file path to a language tag via its extension.
// Returns "" when the extension is not in the table.
func DetectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	for _, l := range languages {
		for _, e := range l.Extensions {
			if e == ext {
				return l.Tag
			}
		}
	}
	return ""
}

// SymbolName derives a synthesized symbol name from a content hash,
// following the language's naming style.
func (l *Language) SymbolName(prefix string, hash uint64) string {
	if l.SnakeCase {
		return fmt.Sprintf("%s_%08x", prefix, uint32(hash))
	}
	// prefix is snake_case internally; camel-case it
	parts := strings.Split(prefix, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return fmt.Sprintf("%s%08x", strings.Join(parts, ""), uint32(hash))
}

// CallLine renders an invocation of a synthesized symbol.
func (l *Language) CallLine(name string, args []string) string {
	return fmt.Sprintf("%s(%s)%s", name, strings.Join(args, ", "), l.StatementSuffix)
}

// CommentLine renders a one-line comment, falling back to the block
// delimiters for languages without a line comment.
func (l *Language) CommentLine(text string) string {
	if l.LineComment != "" {
		return l.LineComment + " " + text
	}
	if l.BlockStart != "" {
		return l.BlockStart + " " + text + " " + l.BlockEnd
	}
	return text
}
