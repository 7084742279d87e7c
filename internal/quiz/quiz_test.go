package quiz

import (
	"math/rand"
	"testing"

	"github.com/example/flashdeck/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cards() []models.Flashcard {
	return []models.Flashcard{
		{GermanWord: "Haus", EnglishTranslation: "house", Category: "noun"},
		{GermanWord: "Katze", EnglishTranslation: "cat", Category: "noun"},
		{GermanWord: "gehen", EnglishTranslation: "to go", Category: "verb"},
		{GermanWord: "schön", EnglishTranslation: "beautiful", Category: "adjective"},
		{GermanWord: "Krankenhaus", EnglishTranslation: "hospital", Category: "noun"},
	}
}

func TestQuizAnswerFlow(t *testing.T) {
	q := New(cards(), rand.New(rand.NewSource(1)))
	require.Equal(t, 5, q.Len())

	question, ok := q.Current()
	require.True(t, ok)
	assert.Len(t, question.Options, 4)
	assert.Equal(t, question.Card.EnglishTranslation, question.Options[question.CorrectIndex])

	out, err := q.Answer(question.CorrectIndex)
	require.NoError(t, err)
	assert.True(t, out.Correct)
	assert.Equal(t, question.Card, out.Card)
	assert.Equal(t, 1, q.Score())

	// scored once only
	_, err = q.Answer(question.CorrectIndex)
	assert.ErrorIs(t, err, ErrAlreadyAnswered)
	_, err = q.Expire()
	assert.ErrorIs(t, err, ErrAlreadyAnswered)

	require.True(t, q.Next())
	question, _ = q.Current()
	wrong := (question.CorrectIndex + 1) % len(question.Options)
	out, err = q.Answer(wrong)
	require.NoError(t, err)
	assert.False(t, out.Correct)
	assert.Equal(t, question.Options[wrong], out.Answer)
	assert.Equal(t, 1, q.Score())

	require.True(t, q.Next())
	_, err = q.Answer(9)
	assert.ErrorIs(t, err, ErrInvalidOption)
	assert.False(t, q.Answered())
}

func TestQuizTimeoutCountsAsIncorrect(t *testing.T) {
	q := New(cards(), rand.New(rand.NewSource(2)))

	out, err := q.Expire()
	require.NoError(t, err)
	assert.False(t, out.Correct)
	assert.True(t, out.TimedOut)
	assert.True(t, q.Answered())
	assert.Zero(t, q.Score())
}

func TestQuizFinishes(t *testing.T) {
	q := New(cards()[:2], rand.New(rand.NewSource(3)))

	_, err := q.Expire()
	require.NoError(t, err)
	require.True(t, q.Next())
	question, _ := q.Current()
	_, err = q.Answer(question.CorrectIndex)
	require.NoError(t, err)

	assert.False(t, q.Next())
	assert.True(t, q.Finished())
	assert.False(t, q.Next())
	_, err = q.Expire()
	assert.ErrorIs(t, err, ErrFinished)
	assert.Equal(t, 1, q.Score())
	assert.Equal(t, 50, q.Percent())
}

func TestWriting(t *testing.T) {
	w := NewWriting(cards()[3:])

	_, err := w.Submit("   ")
	assert.ErrorIs(t, err, ErrBlankAnswer)
	assert.False(t, w.Answered())

	res, err := w.Submit("schon")
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, "schön", res.Card.GermanWord)

	_, err = w.Submit("schön")
	assert.ErrorIs(t, err, ErrAlreadyAnswered)

	require.True(t, w.Next())
	res, err = w.Submit("Hospital")
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, "krankenhaus", res.Grade.Expected)

	assert.False(t, w.Next())
	_, err = w.Submit("x")
	assert.ErrorIs(t, err, ErrFinished)
	assert.Equal(t, 1, w.Score())
	assert.Equal(t, 2, w.Len())
}

func TestWalk(t *testing.T) {
	w := NewWalk(models.Category{Name: "noun", Flashcards: cards()[:3]})

	c, ok := w.Current()
	require.True(t, ok)
	assert.Equal(t, "Haus", c.GermanWord)

	w.Flip()
	assert.True(t, w.Flipped())
	w.Next()
	assert.False(t, w.Flipped(), "moving shows the front again")
	assert.Equal(t, 1, w.Index())

	w.Next()
	w.Next()
	assert.Equal(t, 0, w.Index(), "wraps forward")
	w.Prev()
	assert.Equal(t, 2, w.Index(), "wraps backward")

	edited := models.Flashcard{GermanWord: "laufen", EnglishTranslation: "to run", Category: "verb"}
	w.Replace(edited)
	c, _ = w.Current()
	assert.Equal(t, edited, c)
	assert.Equal(t, "gehen", cards()[2].GermanWord)

	empty := NewWalk(models.Category{Name: "empty"})
	_, ok = empty.Current()
	assert.False(t, ok)
	empty.Next()
	assert.Equal(t, 0, empty.Index())
}
