package main

import (
	"hash/fnv"
	"strings"
)

// Stable FNV-1a 64 hashing. The unit separator join avoids accidental
// collisions from plain concatenation (["ab","c"] vs ["a","bc"]).
const tokenSep = "\x1f"

func hashText(text string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(text))
	return h.Sum64()
}

func hashParts(parts []string) uint64 {
	h := fnv.New64a()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte(tokenSep))
		}
		h.Write([]byte(p))
	}
	return h.Sum64()
}

// normalizeText collapses all whitespace runs to single spaces so the exact
// pass is insensitive to formatting.
func normalizeText(lines []string) string {
	return strings.Join(strings.Fields(strings.Join(lines, "\n")), " ")
}
