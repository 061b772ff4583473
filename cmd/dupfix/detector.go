package main

import (
	"runtime"
	"sort"
	"sync"
)

// Length-ratio tolerance for the fuzzy pass: only blocks within 0.5-2.0x of
// each other's token count are compared, which bounds the O(n^2) pairwise
// cost. With candidates sorted by length a single upper bound covers both
// directions. Exact, token and structural passes are O(n) via hashing.
const fuzzyMaxLenRatio = 2.0

// Fixed confidence of the structural pass, below the exact/token tiers.
const structuralConfidence = 0.75

// Detect runs the four detection passes over the analyzer's blocks, then
// merges, suppresses and sorts the resulting groups. Zero-token blocks are
// excluded up front so no pass ever sees malformed input.
func Detect(blocks []*CodeBlock, cfg *Config) []*DuplicateGroup {
	usable := make([]*CodeBlock, 0, len(blocks))
	for _, b := range blocks {
		if len(b.Tokens) > 0 {
			usable = append(usable, b)
		}
	}

	var groups []*DuplicateGroup
	groups = append(groups, detectExact(usable)...)
	groups = append(groups, detectToken(usable)...)
	groups = append(groups, detectFuzzy(usable, cfg)...)
	groups = append(groups, detectStructural(usable)...)

	if cfg.SuppressDuplicates {
		groups = suppressRedundant(groups)
	}
	sortGroups(groups)
	return groups
}

// langKey buckets hashes per language. Byte-identical text in, say, a .py
// and a .js file must never form one group: synthesis renders declarations in
// the group's language, which only makes sense for single-language members.
type langKey struct {
	lang string
	hash uint64
}

// detectExact groups blocks by the hash of their whitespace-collapsed raw
// text. Confidence 1.0.
func detectExact(blocks []*CodeBlock) []*DuplicateGroup {
	byHash := make(map[langKey][]*CodeBlock)
	for _, b := range blocks {
		k := langKey{b.Language, b.ContentHash}
		byHash[k] = append(byHash[k], b)
	}
	return hashGroups(byHash, AlgoExact, 1.0, nil)
}

// detectToken groups blocks by their kind+text token sequence, which ignores
// the original formatting the exact pass still sees. Confidence 1.0.
func detectToken(blocks []*CodeBlock) []*DuplicateGroup {
	byHash := make(map[langKey][]*CodeBlock)
	for _, b := range blocks {
		k := langKey{b.Language, b.TokenHash}
		byHash[k] = append(byHash[k], b)
	}
	return hashGroups(byHash, AlgoToken, 1.0, nil)
}

// detectStructural groups blocks by identical structural signature while
// requiring at least two distinct token sequences in the set; signature
// groups that are token-identical are already owned by the stronger passes.
func detectStructural(blocks []*CodeBlock) []*DuplicateGroup {
	byHash := make(map[langKey][]*CodeBlock)
	for _, b := range blocks {
		k := langKey{b.Language, b.SigHash}
		byHash[k] = append(byHash[k], b)
	}
	accept := func(members []*CodeBlock) bool {
		first := members[0].TokenHash
		for _, m := range members[1:] {
			if m.TokenHash != first {
				return true
			}
		}
		return false
	}
	return hashGroups(byHash, AlgoStructural, structuralConfidence, accept)
}

// hashGroups turns a hash bucket map into groups, keeping buckets with at
// least two non-overlapping members that pass the optional accept filter.
func hashGroups(byHash map[langKey][]*CodeBlock, algo string, confidence float64, accept func([]*CodeBlock) bool) []*DuplicateGroup {
	var groups []*DuplicateGroup
	for _, members := range byHash {
		if len(members) < 2 {
			continue
		}
		if accept != nil && !accept(members) {
			continue
		}
		members = dropOverlapping(members)
		if len(members) < 2 {
			continue
		}
		groups = append(groups, newGroup(algo, members, confidence))
	}
	return groups
}

// fuzzyEdge is one accepted pairwise comparison.
type fuzzyEdge struct {
	a, b  int
	ratio float64
}

// detectFuzzy compares token sequences of comparable length pairwise and
// unions pairs at or above the similarity threshold into connected
// components. Comparisons run on a worker pool; the union-find reduction is
// strictly single-threaded after all comparisons complete, so group
// membership is deterministic.
func detectFuzzy(blocks []*CodeBlock, cfg *Config) []*DuplicateGroup {
	n := len(blocks)
	if n < 2 {
		return nil
	}

	// Sort indices by token length so the length-ratio window is a
	// contiguous range.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return len(blocks[order[i]].Tokens) < len(blocks[order[j]].Tokens)
	})

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	edgeLists := make([][]fuzzyEdge, workers)
	work := make(chan int, n)
	for i := 0; i < n; i++ {
		work <- i
	}
	close(work)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			var local []fuzzyEdge
			for oi := range work {
				a := blocks[order[oi]]
				maxLen := int(float64(len(a.Tokens)) * fuzzyMaxLenRatio)
				for oj := oi + 1; oj < n; oj++ {
					b := blocks[order[oj]]
					if len(b.Tokens) > maxLen {
						break
					}
					if b.Language != a.Language {
						continue
					}
					ratio := lcsRatio(a.Tokens, b.Tokens)
					if ratio >= cfg.SimilarityThreshold {
						local = append(local, fuzzyEdge{a: order[oi], b: order[oj], ratio: ratio})
					}
				}
			}
			edgeLists[slot] = local
		}(w)
	}
	wg.Wait()

	// Deterministic reduction: merge edges in a fixed order.
	var edges []fuzzyEdge
	for _, l := range edgeLists {
		edges = append(edges, l...)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].a != edges[j].a {
			return edges[i].a < edges[j].a
		}
		return edges[i].b < edges[j].b
	})

	uf := newUnionFind(n)
	for _, e := range edges {
		uf.union(e.a, e.b)
	}

	members := make(map[int][]*CodeBlock)
	for i, b := range blocks {
		root := uf.find(i)
		members[root] = append(members[root], b)
	}

	// Confidence is the ratio at the weakest edge inside each component.
	weakest := make(map[int]float64)
	for _, e := range edges {
		root := uf.find(e.a)
		if cur, ok := weakest[root]; !ok || e.ratio < cur {
			weakest[root] = e.ratio
		}
	}

	var groups []*DuplicateGroup
	for root, blks := range members {
		if len(blks) < 2 {
			continue
		}
		blks = dropOverlapping(blks)
		if len(blks) < 2 {
			continue
		}
		groups = append(groups, newGroup(AlgoFuzzy, blks, weakest[root]))
	}
	return groups
}

// dropOverlapping removes same-file members whose spans overlap an earlier
// member, keeping the earliest occurrence. Overlapping windows from one file
// would otherwise report a block as a duplicate of itself.
func dropOverlapping(members []*CodeBlock) []*CodeBlock {
	sortBlocks(members)
	lastEnd := make(map[string]int)
	kept := members[:0:0]
	for _, b := range members {
		if end, ok := lastEnd[b.File]; ok && b.StartLine <= end {
			continue
		}
		kept = append(kept, b)
		lastEnd[b.File] = b.EndLine
	}
	return kept
}

func sortBlocks(members []*CodeBlock) {
	sort.Slice(members, func(i, j int) bool {
		if members[i].File != members[j].File {
			return members[i].File < members[j].File
		}
		return members[i].StartLine < members[j].StartLine
	})
}

func newGroup(algo string, members []*CodeBlock, confidence float64) *DuplicateGroup {
	sortBlocks(members)
	total := 0
	for _, b := range members {
		total += b.LineSpan()
	}
	return &DuplicateGroup{
		Algorithm:     algo,
		Blocks:        members,
		Confidence:    confidence,
		TotalLines:    total,
		LineReduction: members[0].LineSpan() * (len(members) - 1),
	}
}

// sortGroups orders the final report: confidence descending, total lines
// affected descending, then first block location and algorithm name so the
// order is fully deterministic.
func sortGroups(groups []*DuplicateGroup) {
	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.TotalLines != b.TotalLines {
			return a.TotalLines > b.TotalLines
		}
		af, bf := a.Blocks[0], b.Blocks[0]
		if af.File != bf.File {
			return af.File < bf.File
		}
		if af.StartLine != bf.StartLine {
			return af.StartLine < bf.StartLine
		}
		return algorithmRank[a.Algorithm] < algorithmRank[b.Algorithm]
	})
}
