package grading

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ToleranceRatio is the share of the expected length that may be misspelled
const ToleranceRatio = 0.2

// Result describes how a typed answer compared to the expected word
type Result struct {
	Correct   bool
	Distance  int
	Threshold int
	Attempt   string // normalized
	Expected  string // normalized
}

// Normalize decomposes the text, drops combining marks, trims surrounding
// whitespace and lowercases it, so "Mädchen " and "madchen" compare equal
func Normalize(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(t, text)
	if err != nil {
		stripped = text
	}
	return strings.ToLower(strings.TrimSpace(stripped))
}

// Levenshtein returns the edit distance between a and b counted in runes
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// Threshold returns the largest distance still accepted for an expected
// answer of the given normalized length
func Threshold(expectedLen int) int {
	return max(1, int(float64(expectedLen)*ToleranceRatio))
}

// Grade compares a typed attempt with the expected word. The attempt is
// correct when the normalized forms are equal or their distance is within
// the threshold. The threshold never drops below 1, so an empty expected
// word still accepts any single character attempt.
func Grade(attempt, expected string) Result {
	a := Normalize(attempt)
	e := Normalize(expected)
	distance := Levenshtein(a, e)
	threshold := Threshold(len([]rune(e)))

	return Result{
		Correct:   distance <= threshold || a == e,
		Distance:  distance,
		Threshold: threshold,
		Attempt:   a,
		Expected:  e,
	}
}
