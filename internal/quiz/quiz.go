package quiz

import (
	"errors"
	"math/rand"
	"time"

	"github.com/example/flashdeck/internal/deck"
	"github.com/example/flashdeck/pkg/models"
)

// QuestionTime is how long the learner has to answer a quiz question
const QuestionTime = 15 * time.Second

var (
	// ErrFinished is returned when the session has no current item
	ErrFinished = errors.New("session finished")
	// ErrAlreadyAnswered is returned when the current item was already scored
	ErrAlreadyAnswered = errors.New("already answered")
	// ErrInvalidOption is returned for an option index outside the question
	ErrInvalidOption = errors.New("invalid option")
)

// Question is one multiple choice question
type Question struct {
	Card         models.Flashcard
	Options      []string // possible translations
	CorrectIndex int      // index of the correct translation in Options
}

// Outcome is the scored result of one question or card, to be recorded
type Outcome struct {
	Card     models.Flashcard
	Correct  bool
	Answer   string
	TimedOut bool
}

// Quiz is a multiple choice session over a fixed deck. Every question is
// scored exactly once, by an answer or by its timer running out.
type Quiz struct {
	questions []Question
	current   int
	score     int
	answered  bool
}

// New builds a quiz with one question per card
func New(cards []models.Flashcard, rnd *rand.Rand) *Quiz {
	questions := make([]Question, 0, len(cards))
	for _, card := range cards {
		options := deck.QuizOptions(card, cards, rnd)
		correct := 0
		for i, o := range options {
			if o == card.EnglishTranslation {
				correct = i
				break
			}
		}
		questions = append(questions, Question{Card: card, Options: options, CorrectIndex: correct})
	}
	return &Quiz{questions: questions}
}

// Current returns the question being asked
func (q *Quiz) Current() (Question, bool) {
	if q.Finished() {
		return Question{}, false
	}
	return q.questions[q.current], true
}

// Answer scores the current question with the chosen option
func (q *Quiz) Answer(option int) (Outcome, error) {
	question, err := q.pending()
	if err != nil {
		return Outcome{}, err
	}
	if option < 0 || option >= len(question.Options) {
		return Outcome{}, ErrInvalidOption
	}

	chosen := question.Options[option]
	return q.finish(Outcome{
		Card:    question.Card,
		Correct: chosen == question.Card.EnglishTranslation,
		Answer:  chosen,
	}), nil
}

// Expire scores the current question as incorrect because time ran out
func (q *Quiz) Expire() (Outcome, error) {
	question, err := q.pending()
	if err != nil {
		return Outcome{}, err
	}
	return q.finish(Outcome{Card: question.Card, TimedOut: true}), nil
}

// Next moves to the following question and reports whether there is one
func (q *Quiz) Next() bool {
	if q.Finished() {
		return false
	}
	q.current++
	q.answered = false
	return !q.Finished()
}

func (q *Quiz) pending() (Question, error) {
	question, ok := q.Current()
	if !ok {
		return Question{}, ErrFinished
	}
	if q.answered {
		return Question{}, ErrAlreadyAnswered
	}
	return question, nil
}

func (q *Quiz) finish(o Outcome) Outcome {
	q.answered = true
	if o.Correct {
		q.score++
	}
	return o
}

// Answered reports whether the current question was already scored
func (q *Quiz) Answered() bool { return q.answered }

// Finished reports whether every question has been asked
func (q *Quiz) Finished() bool { return q.current >= len(q.questions) }

// Index is the 0-based position of the current question
func (q *Quiz) Index() int { return q.current }

// Len is the number of questions
func (q *Quiz) Len() int { return len(q.questions) }

// Score is the number of correctly answered questions
func (q *Quiz) Score() int { return q.score }

// Percent returns the rounded score percentage
func (q *Quiz) Percent() int {
	if len(q.questions) == 0 {
		return 0
	}
	return int(float64(q.score)/float64(len(q.questions))*100 + 0.5)
}
