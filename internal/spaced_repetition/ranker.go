package spaced_repetition

import (
	"sort"
	"time"

	"github.com/example/flashdeck/pkg/models"
)

// StatsLookup returns the stats of a card, or nil if it was never reviewed
type StatsLookup func(cardKey string) *models.CardStats

// Ranker orders cards so that the ones most in need of practice come first
type Ranker struct {
	// Incorrect score for a card that was never reviewed
	UnseenIncorrectScore float64
	// Correct score for a card that was never reviewed
	UnseenCorrectScore float64
	// Upper bound of the recency boost, in days
	MaxRecencyDays float64
}

// NewRanker creates a Ranker with the default weights
func NewRanker() *Ranker {
	return &Ranker{
		UnseenIncorrectScore: 1.5,
		UnseenCorrectScore:   1,
		MaxRecencyDays:       2,
	}
}

// Priority scores a single card at time now. Higher means more urgent.
func (r *Ranker) Priority(stats *models.CardStats, now time.Time) float64 {
	if stats == nil {
		return r.UnseenIncorrectScore/r.UnseenCorrectScore + r.MaxRecencyDays
	}

	incorrectScore := float64(stats.Incorrect) + 1
	correctScore := float64(stats.Correct) + 1

	days := float64(now.UnixMilli()-stats.LastReviewed) / float64(24*time.Hour/time.Millisecond)
	recency := min(days, r.MaxRecencyDays)

	return incorrectScore/correctScore + recency
}

// Rank returns the cards ordered by descending priority. Cards with equal
// priority keep their input order. The input slice is not modified.
func (r *Ranker) Rank(cards []models.Flashcard, lookup StatsLookup, now time.Time) []models.Flashcard {
	type scored struct {
		card     models.Flashcard
		priority float64
	}

	items := make([]scored, len(cards))
	for i, c := range cards {
		items[i] = scored{card: c, priority: r.Priority(lookup(c.Key()), now)}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].priority > items[j].priority
	})

	out := make([]models.Flashcard, len(items))
	for i, it := range items {
		out[i] = it.card
	}
	return out
}
