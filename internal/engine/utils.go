// Completion: 100% - Utility module complete
package engine

import (
	"cmp"
	"slices"
)

// utils.go - "did you mean" hints for mistyped command names

// suggestionDistance is the largest edit distance still offered as a hint
const suggestionDistance = 2

// levenshteinDistance counts the single-byte insertions, deletions and
// substitutions that turn a into b. Only two rows are kept.
func levenshteinDistance(a, b string) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			sub := prev[j-1]
			if a[i-1] != b[j-1] {
				sub++
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, sub)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// Suggest returns up to maxSuggestions candidates within edit distance 2 of
// name, closest first and then alphabetically. An exact match is not a
// suggestion.
func Suggest(name string, candidates []string, maxSuggestions int) []string {
	type scored struct {
		name string
		dist int
	}
	var near []scored
	for _, c := range candidates {
		if d := levenshteinDistance(name, c); d > 0 && d <= suggestionDistance {
			near = append(near, scored{c, d})
		}
	}
	slices.SortFunc(near, func(x, y scored) int {
		return cmp.Or(cmp.Compare(x.dist, y.dist), cmp.Compare(x.name, y.name))
	})

	out := make([]string, 0, min(len(near), max(maxSuggestions, 0)))
	for _, s := range near {
		if len(out) == cap(out) {
			break
		}
		out = append(out, s.name)
	}
	return out
}
