package quiz

import (
	"errors"
	"strings"

	"github.com/example/flashdeck/internal/grading"
	"github.com/example/flashdeck/pkg/models"
)

// ErrBlankAnswer is returned when an empty answer is submitted
var ErrBlankAnswer = errors.New("answer is empty")

// WritingResult is the graded outcome of a typed answer
type WritingResult struct {
	Outcome
	Grade grading.Result
}

// Writing is a typed-answer session: the learner sees the English
// translation and types the German word
type Writing struct {
	cards    []models.Flashcard
	current  int
	score    int
	answered bool
}

// NewWriting creates a writing session over cards
func NewWriting(cards []models.Flashcard) *Writing {
	return &Writing{cards: cards}
}

// Current returns the card being asked
func (w *Writing) Current() (models.Flashcard, bool) {
	if w.Finished() {
		return models.Flashcard{}, false
	}
	return w.cards[w.current], true
}

// Submit grades the typed answer against the current card's German word
func (w *Writing) Submit(answer string) (WritingResult, error) {
	card, ok := w.Current()
	if !ok {
		return WritingResult{}, ErrFinished
	}
	if w.answered {
		return WritingResult{}, ErrAlreadyAnswered
	}
	if strings.TrimSpace(answer) == "" {
		return WritingResult{}, ErrBlankAnswer
	}

	g := grading.Grade(answer, card.GermanWord)
	w.answered = true
	if g.Correct {
		w.score++
	}
	return WritingResult{
		Outcome: Outcome{Card: card, Correct: g.Correct, Answer: answer},
		Grade:   g,
	}, nil
}

// Next moves to the following card and reports whether there is one
func (w *Writing) Next() bool {
	if w.Finished() {
		return false
	}
	w.current++
	w.answered = false
	return !w.Finished()
}

// Answered reports whether the current card was already graded
func (w *Writing) Answered() bool { return w.answered }

// Finished reports whether every card has been asked
func (w *Writing) Finished() bool { return w.current >= len(w.cards) }

// Index is the 0-based position of the current card
func (w *Writing) Index() int { return w.current }

// Len is the number of cards
func (w *Writing) Len() int { return len(w.cards) }

// Score is the number of correct answers
func (w *Writing) Score() int { return w.score }
