package main

// Strategy selection is a decision table evaluated in fixed priority order:
//
//	all blocks whole-file duplicates          -> extract-module
//	same structural signature, one differing
//	identifier/literal class                  -> extract-class when the span
//	                                             holds multiple functions,
//	                                             parameterize otherwise
//	same structural signature, several
//	differing classes                         -> manual-review
//	exact/token duplicates, single-function   -> extract-method
//	nothing matches                           -> manual-review
//
// The several-classes row sits above extract-method on purpose: a token
// group whose blocks differ in the content of two or more string literals
// would otherwise extract the canonical body and rewrite the literals of
// every other occurrence.
//
// The outcome is always a single tagged strategy; nothing falls through
// silently.
func chooseStrategy(g *DuplicateGroup) (string, string) {
	if allWholeFile(g) {
		return StrategyExtractModule, ""
	}

	if sameSignature(g) {
		classes, expressible := differingClasses(g)
		if expressible && classes == 1 {
			if functionCount(g.Blocks[0]) > 1 {
				return StrategyExtractClass, ""
			}
			return StrategyParameterize, ""
		}
		if expressible && classes > 1 {
			return StrategyManualReview, "blocks differ in more than one identifier/literal class"
		}
	}

	if (g.Algorithm == AlgoExact || g.Algorithm == AlgoToken) && functionCount(g.Blocks[0]) <= 1 {
		return StrategyExtractMethod, ""
	}

	return StrategyManualReview, "no strategy preconditions met"
}

func allWholeFile(g *DuplicateGroup) bool {
	for _, b := range g.Blocks {
		if !b.WholeFile {
			return false
		}
	}
	return true
}

func sameSignature(g *DuplicateGroup) bool {
	first := g.Blocks[0].SigHash
	for _, b := range g.Blocks[1:] {
		if b.SigHash != first {
			return false
		}
	}
	return true
}

// differingClasses counts the distinct placeholder classes at which the
// group's token streams disagree. The second return is false when some
// difference is not confined to identifier/literal leaves (then the group is
// not expressible as parameters).
func differingClasses(g *DuplicateGroup) (int, bool) {
	canon := g.Blocks[0]
	classes := signatureClasses(canon.Tokens)
	distinct := make(map[string]bool)

	for _, b := range g.Blocks[1:] {
		if len(b.Tokens) != len(canon.Tokens) {
			return 0, false
		}
		for i := range canon.Tokens {
			if b.Tokens[i].Text == canon.Tokens[i].Text && b.Tokens[i].Kind == canon.Tokens[i].Kind {
				continue
			}
			if classes[i] == "" {
				return 0, false
			}
			distinct[classes[i]] = true
		}
	}
	return len(distinct), true
}

// functionCount counts function-declaration keywords in a block, a cheap
// proxy for "how many functions does this span define". Languages without a
// function keyword (Java, C#) report zero and are treated as
// single-function-sized.
func functionCount(b *CodeBlock) int {
	lang := LookupLanguage(b.Language)
	if lang == nil || len(lang.FuncKeywords) == 0 {
		return 0
	}
	kw := make(map[string]bool, len(lang.FuncKeywords))
	for _, w := range lang.FuncKeywords {
		kw[w] = true
	}
	count := 0
	for _, t := range b.Tokens {
		if t.Kind == KindKeyword && kw[t.Text] {
			count++
		}
	}
	return count
}
