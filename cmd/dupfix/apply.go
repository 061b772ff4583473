package main

import (
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
)

// fileJob is the accumulated write set for one output file: the line edits
// of every committed action touching it plus any declarations appended to
// its end.
type fileJob struct {
	path    string
	lines   []string // nil when the file is created by this run
	existed bool
	edits   []Edit
	decls   []string
}

type lineRange struct{ start, end int }

// Apply validates the planned actions against each other and, outside
// preview mode, writes the results. Validation is strictly sequential in
// action order: an action whose edit overlaps a span an earlier action
// already committed is skipped whole and its files reported as conflicts.
// In-place mode is additionally all-or-nothing per file: a conflict on a
// file discards that file's entire write set, so the original is left
// untouched rather than rewritten with a partial subset of the plan.
// Writes then run in parallel across distinct files; one file is only ever
// written by one worker, and each file is a single WriteFile call so an
// in-place write either fully lands or fails without partial content.
func Apply(actions []*RefactoringAction, files []*SourceFile, mode string, workers int) *ApplyResult {
	byPath := make(map[string]*SourceFile, len(files))
	for _, f := range files {
		byPath[f.Path] = f
	}

	res := &ApplyResult{Mode: mode}
	committed := make(map[string][]lineRange)
	jobs := make(map[string]*fileJob)
	skipped := make(map[string]bool)

	jobFor := func(path string) *fileJob {
		j, ok := jobs[path]
		if !ok {
			j = &fileJob{path: path}
			if sf, exists := byPath[path]; exists {
				j.lines = append([]string(nil), sf.Lines...)
				j.existed = true
			}
			jobs[path] = j
		}
		return j
	}

	for _, a := range actions {
		if a.Strategy == StrategyManualReview || len(a.Edits) == 0 {
			continue
		}

		conflict := false
		for _, e := range a.Edits {
			if overlapsAny(committed[e.File], e.StartLine, e.EndLine) {
				skipped[e.File] = true
				conflict = true
			}
		}
		if conflict {
			continue
		}

		for _, e := range a.Edits {
			committed[e.File] = append(committed[e.File], lineRange{e.StartLine, e.EndLine})
			jobFor(e.File).edits = append(jobFor(e.File).edits, e)
		}
		if a.Declaration != "" {
			jobFor(a.DeclFile).decls = append(jobFor(a.DeclFile).decls, a.Declaration)
		}
		res.ActionsApplied++
	}

	res.FilesSkipped = sortedKeys(skipped)
	if mode == ModePreview {
		return res
	}

	if mode == ModeInplace {
		for path := range skipped {
			delete(jobs, path)
		}
	}

	ordered := make([]*fileJob, 0, len(jobs))
	for _, j := range jobs {
		ordered = append(ordered, j)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].path < ordered[j].path })

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	work := make(chan *fileJob, len(ordered))
	for _, j := range ordered {
		work <- j
	}
	close(work)

	var mu sync.Mutex
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range work {
				path, err := writeJob(j, mode)
				mu.Lock()
				if err != nil {
					res.Failures = append(res.Failures, WriteFailure{Path: j.path, Err: err.Error()})
				} else {
					res.FilesWritten = append(res.FilesWritten, path)
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	sort.Strings(res.FilesWritten)
	sort.Slice(res.Failures, func(i, j int) bool { return res.Failures[i].Path < res.Failures[j].Path })
	return res
}

// writeJob renders one output file and writes it, returning the path that
// was actually written.
func writeJob(j *fileJob, mode string) (string, error) {
	lines := j.lines

	// Bottom-up so earlier spans keep their line numbers while later ones
	// are replaced.
	sort.Slice(j.edits, func(a, b int) bool { return j.edits[a].StartLine > j.edits[b].StartLine })
	for _, e := range j.edits {
		repl := strings.Split(e.Replacement, "\n")
		tail := append([]string(nil), lines[e.EndLine:]...)
		lines = append(lines[:e.StartLine-1], repl...)
		lines = append(lines, tail...)
	}

	for _, d := range j.decls {
		if len(lines) > 0 && lines[len(lines)-1] != "" {
			lines = append(lines, "")
		}
		lines = append(lines, strings.Split(d, "\n")...)
	}

	path := j.path
	if mode == ModeSafe && j.existed {
		path += ".refactored"
	}
	content := strings.Join(lines, "\n")
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func overlapsAny(ranges []lineRange, start, end int) bool {
	for _, r := range ranges {
		if start <= r.end && end >= r.start {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
