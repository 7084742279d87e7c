package spaced_repetition

import (
	"testing"
	"time"

	"github.com/example/flashdeck/pkg/models"
	"github.com/stretchr/testify/assert"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func card(word string) models.Flashcard {
	return models.Flashcard{GermanWord: word, EnglishTranslation: word, Category: "noun"}
}

func lookupFrom(stats map[string]models.CardStats) StatsLookup {
	return func(key string) *models.CardStats {
		s, ok := stats[key]
		if !ok {
			return nil
		}
		return &s
	}
}

func words(cards []models.Flashcard) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.GermanWord
	}
	return out
}

func TestPriority(t *testing.T) {
	r := NewRanker()

	assert.InDelta(t, 3.5, r.Priority(nil, now), 1e-9)

	// reviewed just now: 1/2 + 0
	s := &models.CardStats{Seen: 1, Correct: 1, LastReviewed: now.UnixMilli()}
	assert.InDelta(t, 0.5, r.Priority(s, now), 1e-9)

	// one day ago, 2 wrong 1 right: 3/2 + 1
	s = &models.CardStats{Seen: 3, Correct: 1, Incorrect: 2, LastReviewed: now.Add(-24 * time.Hour).UnixMilli()}
	assert.InDelta(t, 2.5, r.Priority(s, now), 1e-9)

	// recency is capped at two days
	s = &models.CardStats{Seen: 1, Correct: 1, LastReviewed: now.AddDate(0, 0, -30).UnixMilli()}
	assert.InDelta(t, 2.5, r.Priority(s, now), 1e-9)
}

func TestRankUnseenAheadOfMastered(t *testing.T) {
	stats := map[string]models.CardStats{
		"a|noun": {Seen: 10, Correct: 10, LastReviewed: now.UnixMilli()},
	}
	got := NewRanker().Rank([]models.Flashcard{card("A"), card("B")}, lookupFrom(stats), now)
	assert.Equal(t, []string{"B", "A"}, words(got))
}

func TestRankOrdersByPriority(t *testing.T) {
	stats := map[string]models.CardStats{
		"easy|noun":  {Seen: 5, Correct: 5, LastReviewed: now.UnixMilli()},
		"hard|noun":  {Seen: 5, Incorrect: 5, LastReviewed: now.UnixMilli()},
		"stale|noun": {Seen: 2, Correct: 1, Incorrect: 1, LastReviewed: now.AddDate(0, 0, -5).UnixMilli()},
	}
	cards := []models.Flashcard{card("easy"), card("stale"), card("hard"), card("new")}

	got := NewRanker().Rank(cards, lookupFrom(stats), now)
	// hard: 6/1 = 6, new: 3.5, stale: 1 + 2 = 3, easy: 1/6
	assert.Equal(t, []string{"hard", "new", "stale", "easy"}, words(got))
	assert.Equal(t, []string{"easy", "stale", "hard", "new"}, words(cards), "input untouched")
}

func TestRankIsStable(t *testing.T) {
	cards := []models.Flashcard{card("one"), card("two"), card("three"), card("four")}
	got := NewRanker().Rank(cards, lookupFrom(nil), now)
	assert.Equal(t, words(cards), words(got))
}

func TestRankEmpty(t *testing.T) {
	assert.Empty(t, NewRanker().Rank(nil, lookupFrom(nil), now))
}
