// Package fuzzy implements the subsequence path matcher used to answer
// "fuzzy find" queries against a worktree snapshot (spec.md §4.6).
//
// A query matches a candidate path when every character of the query
// appears in the candidate in order, not necessarily contiguously (e.g.
// "bna" matches "banana/carrot"). Before running the (relatively) expensive
// subsequence check against every candidate, each candidate's charbag.CharBag
// is checked as a cheap superset test: a query whose bag is not a subset of
// a candidate's bag cannot possibly match it, so the candidate is skipped
// without ever touching its path bytes.
package fuzzy

import (
	"sort"
	"strings"

	"github.com/worktreekit/worktree/internal/charbag"
)

// Candidate is one path considered for a query, along with the combined
// CharBag (root name bag plus the path's own letters) used for pre-filtering.
type Candidate struct {
	Path    string
	CharBag charbag.CharBag
}

// Match is a candidate that passed the subsequence test, with a score used
// to rank results — higher is a better match.
type Match struct {
	Path  string
	Score int
}

// MatchPaths filters and ranks candidates against query, returning matches
// best-first. Matching and scoring are case-insensitive.
func MatchPaths(query string, candidates []Candidate) []Match {
	if query == "" {
		matches := make([]Match, len(candidates))
		for i, c := range candidates {
			matches[i] = Match{Path: c.Path, Score: 0}
		}
		return matches
	}

	queryBag := charbag.FromString(query)
	queryLower := strings.ToLower(query)

	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		if !c.CharBag.IsSupersetOf(queryBag) {
			continue
		}
		score, ok := matchSubsequence(queryLower, c.Path)
		if !ok {
			continue
		}
		matches = append(matches, Match{Path: c.Path, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// matchSubsequence reports whether every rune of query appears, in order,
// within path (case-insensitively), and if so returns a score rewarding
// matches that land on path-segment boundaries and consecutive characters.
func matchSubsequence(queryLower, path string) (int, bool) {
	pathLower := strings.ToLower(path)

	score := 0
	qi := 0
	lastMatched := -2
	for i := 0; qi < len(queryLower) && i < len(pathLower); i++ {
		if pathLower[i] != queryLower[qi] {
			continue
		}
		switch {
		case i == lastMatched+1:
			score += 3 // consecutive run
		case i == 0 || pathLower[i-1] == '/' || pathLower[i-1] == '_' || pathLower[i-1] == '-':
			score += 2 // segment boundary
		default:
			score++
		}
		lastMatched = i
		qi++
	}
	return score, qi == len(queryLower)
}
