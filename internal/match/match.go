// Package match scores candidate names against a target on a 0-100
// similarity scale so minor spelling variations still resolve to the right
// workspace user.
package match

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// DefaultThreshold is the minimum score a candidate must reach to be
// accepted as a match.
const DefaultThreshold = 70

// Score returns the Levenshtein similarity of two names scaled to 0-100.
// Comparison is case-insensitive and ignores surrounding whitespace.
func Score(a, b string) int {
	lev := metrics.NewLevenshtein()
	lev.CaseSensitive = false

	sim := strutil.Similarity(strings.TrimSpace(a), strings.TrimSpace(b), lev)
	return int(sim*100 + 0.5)
}

// Best returns the index and score of the candidate most similar to target.
// Ties are broken by first-encountered order. ok is false when no candidate
// reaches the threshold (or the list is empty).
func Best(target string, candidates []string, threshold int) (index, score int, ok bool) {
	bestIndex, bestScore := -1, -1
	for i, candidate := range candidates {
		if s := Score(target, candidate); s > bestScore {
			bestIndex, bestScore = i, s
		}
	}

	if bestIndex < 0 || bestScore < threshold {
		return -1, bestScore, false
	}
	return bestIndex, bestScore, true
}
