package progress

import (
	"time"

	"github.com/example/flashdeck/pkg/models"
)

// Ledger holds per-card statistics keyed by flashcard key
type Ledger map[string]models.CardStats

// Record applies one review outcome to the card and returns its new stats
func (l Ledger) Record(cardKey string, isCorrect bool, now time.Time) models.CardStats {
	s := l[cardKey]
	s.Seen++
	if isCorrect {
		s.Correct++
	} else {
		s.Incorrect++
	}
	s.LastReviewed = now.UnixMilli()
	l[cardKey] = s
	return s
}

// Stats returns the statistics of a card, if it was ever reviewed
func (l Ledger) Stats(cardKey string) (models.CardStats, bool) {
	s, ok := l[cardKey]
	return s, ok
}

// Lookup adapts the ledger to the ranking lookup signature
func (l Ledger) Lookup(cardKey string) *models.CardStats {
	s, ok := l[cardKey]
	if !ok {
		return nil
	}
	return &s
}

// Totals summarises the ledger
type Totals struct {
	Reviews      int // sum of seen
	Correct      int
	StudiedCards int // cards with seen > 0
	NeedPractice int // cards with more incorrect than correct answers
}

// Totals computes aggregate counters over every card
func (l Ledger) Totals() Totals {
	var t Totals
	for _, s := range l {
		t.Reviews += s.Seen
		t.Correct += s.Correct
		if s.Seen > 0 {
			t.StudiedCards++
		}
		if s.Incorrect > s.Correct {
			t.NeedPractice++
		}
	}
	return t
}

// Accuracy returns the rounded percentage of correct reviews
func (t Totals) Accuracy() int {
	if t.Reviews == 0 {
		return 0
	}
	return int(float64(t.Correct)/float64(t.Reviews)*100 + 0.5)
}
