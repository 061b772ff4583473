package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// defaultSkipDirs are never descended into, independent of the configured
// exclude patterns.
var defaultSkipDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	"node_modules": {},
	"vendor":       {},
	"dist":         {},
	"build":        {},
	"target":       {},
	".venv":        {},
	"__pycache__":  {},
}

// ScanFiles walks the configured root and yields SourceFile records for
// every readable file whose language is in the allow-list and whose path
// does not match an exclude pattern. The walk order is lexical, so the
// returned sequence is deterministic.
func ScanFiles(cfg *Config) ([]*SourceFile, []SkippedFile, error) {
	exts := extensionTable(cfg.Languages)
	matcher := ignore.CompileIgnoreLines(cfg.Exclude...)

	var files []*SourceFile
	var skipped []SkippedFile

	root := cfg.Root
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		name := d.Name()

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := defaultSkipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		lang, ok := exts[ext]
		if !ok {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if matcher.MatchesPath(rel) {
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			skipped = append(skipped, SkippedFile{Path: path, Reason: fmt.Sprintf("unreadable: %v", readErr)})
			return nil
		}

		text := string(data)
		lines := strings.Split(text, "\n")
		files = append(files, &SourceFile{
			Path:      path,
			Language:  lang.Tag,
			Text:      text,
			Lines:     lines,
			LineCount: len(lines),
		})
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walking %s: %w", root, err)
	}

	return files, skipped, nil
}
