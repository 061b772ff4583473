package main

// suppressRedundant drops groups that are strict subsets (same or fewer
// participating blocks, same file spans) of an equal-or-higher-confidence
// group from a stronger algorithm. Priority order:
// exact > token > fuzzy > structural.
func suppressRedundant(groups []*DuplicateGroup) []*DuplicateGroup {
	kept := make([]*DuplicateGroup, 0, len(groups))
	for _, g := range groups {
		redundant := false
		for _, h := range groups {
			if h == g {
				continue
			}
			if algorithmRank[h.Algorithm] < algorithmRank[g.Algorithm] &&
				h.Confidence >= g.Confidence &&
				spanSubset(g, h) {
				redundant = true
				break
			}
		}
		if !redundant {
			kept = append(kept, g)
		}
	}
	return kept
}

// spanSubset reports whether every block span of g also appears in h.
func spanSubset(g, h *DuplicateGroup) bool {
	if len(g.Blocks) > len(h.Blocks) {
		return false
	}
	spans := make(map[span]bool, len(h.Blocks))
	for _, b := range h.Blocks {
		spans[span{b.File, b.StartLine, b.EndLine}] = true
	}
	for _, b := range g.Blocks {
		if !spans[span{b.File, b.StartLine, b.EndLine}] {
			return false
		}
	}
	return true
}

type span struct {
	file       string
	start, end int
}
