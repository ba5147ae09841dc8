package search

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// Threshold is the score a candidate must strictly exceed to be returned.
const Threshold = 60

// Candidate is one named row considered by Rank.
type Candidate[T any] struct {
	Name  string
	Value T
}

// Match is a candidate that scored above Threshold.
type Match[T any] struct {
	Value T
	Score int
}

// Rank scores every candidate against query, keeps scores above Threshold and
// sorts them by descending score. Equal scores keep the candidates' input order.
//
// The scan is linear in the number of candidates; it is meant for catalogs of
// moderate size, not as a search index.
func Rank[T any](query string, candidates []Candidate[T]) []Match[T] {
	q := Normalize(query)
	matches := make([]Match[T], 0)
	if q == "" {
		return matches
	}

	for _, c := range candidates {
		score := scoreNormalized(q, Normalize(c.Name))
		if score > Threshold {
			matches = append(matches, Match[T]{Value: c.Value, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// Score returns the 0-100 similarity between a and b.
func Score(a, b string) int {
	return scoreNormalized(Normalize(a), Normalize(b))
}

// Normalize lower-cases s, turns every rune that is not a letter or digit into
// a space and collapses runs of spaces.
func Normalize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

func scoreNormalized(a, b string) int {
	if a == "" && b == "" {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}

	shorter, longer := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	full := ratio(shorter, longer)
	lenRatio := float64(len(longer)) / float64(len(shorter))
	if lenRatio < 1.5 {
		return full
	}

	scale := 0.9
	if lenRatio >= 8 {
		scale = 0.6
	}
	partial := int(math.Round(float64(partialRatio(shorter, longer)) * scale))
	if partial > full {
		return partial
	}
	return full
}

func ratio(a, b []rune) int {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(string(a), string(b))
	return int(math.Round(100 * (1 - float64(dist)/float64(maxLen))))
}

// partialRatio is the best ratio of shorter against any same-length window of longer.
func partialRatio(shorter, longer []rune) int {
	best := 0
	for start := 0; start+len(shorter) <= len(longer); start++ {
		r := ratio(shorter, longer[start:start+len(shorter)])
		if r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}
