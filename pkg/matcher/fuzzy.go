// Romshelf
// Copyright (c) 2026 The Romshelf Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Romshelf.
//
// Romshelf is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Romshelf is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Romshelf.  If not, see <http://www.gnu.org/licenses/>.

// Package matcher resolves free-text queries against candidate name sets.
package matcher

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// DefaultThreshold is the minimum edit-similarity ratio for inclusion.
const DefaultThreshold = 0.6

// Scores assigned by the first matching strategy.
const (
	ScoreExact     = 1.0
	ScoreSubstring = 0.9
)

// Match is a candidate that matched the query with a similarity score.
type Match struct {
	Candidate string
	Score     float64
}

// Resolve returns candidates matching query, best first. Strategy order
// per candidate: case-insensitive equality (1.0), case-insensitive
// substring containment (0.9), then an LCS-based edit-similarity ratio
// kept only when it reaches threshold. Ties preserve candidate input
// order. An empty candidate set yields an empty result.
func Resolve(query string, candidates []string, threshold float64) []Match {
	queryLower := strings.ToLower(query)

	var matches []Match
	for _, candidate := range candidates {
		candidateLower := strings.ToLower(candidate)

		if queryLower == candidateLower {
			matches = append(matches, Match{Candidate: candidate, Score: ScoreExact})
			continue
		}

		if strings.Contains(candidateLower, queryLower) {
			matches = append(matches, Match{Candidate: candidate, Score: ScoreSubstring})
			continue
		}

		ratio := lcsRatio(queryLower, candidateLower)
		if ratio >= threshold {
			matches = append(matches, Match{Candidate: candidate, Score: ratio})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches
}

// lcsRatio is the normalized longest-common-subsequence similarity,
// 2*LCS/(len(a)+len(b)), in [0,1].
func lcsRatio(a, b string) float64 {
	total := len([]rune(a)) + len([]rune(b))
	if total == 0 {
		return 0
	}
	lcs := edlib.LCS(a, b)
	return 2 * float64(lcs) / float64(total)
}

// AutoAccept reports whether matches may be confirmed without listing
// alternatives: exactly one result, and it is an exact match.
func AutoAccept(matches []Match) (string, bool) {
	if len(matches) == 1 && matches[0].Score == ScoreExact {
		return matches[0].Candidate, true
	}
	return "", false
}
