// Package suggest ranks unit names against a partially typed query for
// autocomplete.
package suggest

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// penaltyFront is paid per candidate letter skipped before the first
	// query letter matches.
	penaltyFront = 100
	// penaltyGap is paid per candidate letter skipped between matched letters.
	penaltyGap = 1000
	// penaltySkipLetter is paid per query letter that matches nothing.
	penaltySkipLetter = 10000
	// distanceCutoff rejects candidates with no plausible alignment.
	distanceCutoff = 20100
)

// Normalize lower-cases s, decomposes it and drops combining marks so that
// "Šabac" and "sabac" compare equal.
// A chain carries per-use state, so every call builds its own.
func Normalize(s string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(stripMarks, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// Score aligns query against candidate as an ordered subsequence; both must
// already be normalized. Lower is better. ok is false when the best
// alignment reaches the cutoff.
func Score(query, candidate string) (score int, ok bool) {
	q := []rune(query)
	c := []rune(candidate)
	m, n := len(q), len(c)

	// next holds row i+1, cur row i; dp is filled from the ends.
	next := make([]int, n+1)
	cur := make([]int, n+1)
	for j := 0; j <= n; j++ {
		next[j] = n - j
	}
	for i := m - 1; i >= 0; i-- {
		cur[n] = (m - i) * penaltySkipLetter
		move := penaltyGap
		if i == 0 {
			move = penaltyFront
		}
		for j := n - 1; j >= 0; j-- {
			best := distanceCutoff
			if q[i] == c[j] {
				best = min(best, next[j+1])
			}
			best = min(best, next[j]+penaltySkipLetter)
			best = min(best, cur[j+1]+move)
			cur[j] = best
		}
		next, cur = cur, next
	}

	score = next[0]
	if score >= distanceCutoff {
		return score, false
	}
	return score, true
}
