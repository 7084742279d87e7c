package quiz

import "github.com/example/flashdeck/pkg/models"

// Walk steps through a deck of flashcards, one card at a time
type Walk struct {
	deck    models.Category
	index   int
	flipped bool
}

// NewWalk starts at the first card of deck, front side up
func NewWalk(deck models.Category) *Walk {
	return &Walk{deck: deck}
}

// Deck returns the deck being studied
func (w *Walk) Deck() models.Category { return w.deck }

// Current returns the card on display
func (w *Walk) Current() (models.Flashcard, bool) {
	if len(w.deck.Flashcards) == 0 {
		return models.Flashcard{}, false
	}
	return w.deck.Flashcards[w.index], true
}

// Flip turns the current card over
func (w *Walk) Flip() { w.flipped = !w.flipped }

// Flipped reports whether the back of the card is showing
func (w *Walk) Flipped() bool { return w.flipped }

// Next moves forward, wrapping to the first card
func (w *Walk) Next() { w.move(1) }

// Prev moves back, wrapping to the last card
func (w *Walk) Prev() { w.move(-1) }

func (w *Walk) move(step int) {
	n := len(w.deck.Flashcards)
	if n == 0 {
		return
	}
	w.index = ((w.index+step)%n + n) % n
	w.flipped = false
}

// Index is the 0-based position of the current card
func (w *Walk) Index() int { return w.index }

// Len is the number of cards in the deck
func (w *Walk) Len() int { return len(w.deck.Flashcards) }

// Replace swaps the card at the current position, used after an edit
func (w *Walk) Replace(card models.Flashcard) {
	if len(w.deck.Flashcards) == 0 {
		return
	}
	cards := make([]models.Flashcard, len(w.deck.Flashcards))
	copy(cards, w.deck.Flashcards)
	cards[w.index] = card
	w.deck.Flashcards = cards
}
