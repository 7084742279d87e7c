package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Mädchen ", "madchen"},
		{"Schön", "schon"},
		{"FRANÇAIS", "francais"},
		{"Straße", "straße"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"haus", "haus", 0},
		{"straße", "strase", 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b), "Levenshtein(%q, %q)", tt.a, tt.b)
		assert.Equal(t, tt.want, Levenshtein(tt.b, tt.a), "distance must be symmetric")
	}
}

func TestThreshold(t *testing.T) {
	assert.Equal(t, 1, Threshold(0))
	assert.Equal(t, 1, Threshold(4))
	assert.Equal(t, 1, Threshold(7))
	assert.Equal(t, 2, Threshold(10))
	assert.Equal(t, 3, Threshold(15))
}

func TestGrade(t *testing.T) {
	tests := []struct {
		name     string
		attempt  string
		expected string
		correct  bool
	}{
		{"diacritics and case ignored", "madchen", "Mädchen", true},
		{"surrounding whitespace ignored", "  Haus ", "Haus", true},
		{"one typo in short word", "Hause", "Haus", true},
		{"two typos in short word", "Hauss2", "Haus", false},
		{"two typos in ten letter word", "Kranknhauz", "Krankenhaus", true},
		{"unrelated word", "Katze", "Hund", false},
		{"empty against single letter", "", "a", true},
		{"vowel typo within threshold", "Hund", "Hand", true},
		{"distance above threshold", "xyz", "Haus", false},
		{"single letter against empty expected", "a", "", true},
		{"two letters against empty expected", "ab", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Grade(tt.attempt, tt.expected)
			assert.Equal(t, tt.correct, res.Correct, "distance=%d threshold=%d", res.Distance, res.Threshold)
		})
	}
}

func TestGradeExactMatchAlwaysCorrect(t *testing.T) {
	for _, word := range []string{"a", "ob", "Übung", "Entschuldigung", "gern geschehen"} {
		res := Grade(word, word)
		assert.True(t, res.Correct, word)
		assert.Zero(t, res.Distance, word)
	}
}
