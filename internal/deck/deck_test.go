package deck

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/example/flashdeck/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func pool(n int) []models.Flashcard {
	cards := make([]models.Flashcard, n)
	for i := range cards {
		cards[i] = models.Flashcard{
			GermanWord:         fmt.Sprintf("Wort%d", i),
			EnglishTranslation: fmt.Sprintf("word %d", i),
			Category:           "noun",
		}
	}
	return cards
}

func keys(cards []models.Flashcard) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Key()
	}
	return out
}

func TestShuffleIsPermutation(t *testing.T) {
	cards := pool(20)
	shuffled := Shuffle(cards, newRand())

	require.Len(t, shuffled, len(cards))
	want, got := keys(cards), keys(shuffled)
	sort.Strings(want)
	sort.Strings(got)
	assert.Equal(t, want, got)
	assert.NotEqual(t, keys(cards), keys(shuffled), "seeded shuffle of 20 cards should move something")
	assert.Equal(t, "wort0|noun", cards[0].Key(), "input untouched")
}

func TestShuffleEmpty(t *testing.T) {
	assert.Empty(t, Shuffle(nil, newRand()))
}

func TestQuizDeck(t *testing.T) {
	all := pool(50)

	deck := QuizDeck(all, 3, newRand())
	require.Len(t, deck, 3)
	assert.Len(t, distinct(deck), 3)

	assert.Len(t, QuizDeck(all, 10, newRand()), 10)
	assert.Len(t, QuizDeck(all, 0, newRand()), MinQuestions)
	assert.Len(t, QuizDeck(pool(3), 10, newRand()), 3, "never padded")
	assert.Empty(t, QuizDeck(nil, 10, newRand()))

	assert.Len(t, WritingDeck(all, 7, newRand()), 7)
}

func distinct(cards []models.Flashcard) map[string]struct{} {
	set := make(map[string]struct{})
	for _, c := range cards {
		set[c.Key()] = struct{}{}
	}
	return set
}

func TestClampQuestions(t *testing.T) {
	assert.Equal(t, 5, ClampQuestions(1))
	assert.Equal(t, 12, ClampQuestions(12))
	assert.Equal(t, 30, ClampQuestions(99))
}

func TestThemedDeck(t *testing.T) {
	categories := []models.Category{
		{Name: "Noun", Flashcards: pool(4)},
		{Name: "verb", Flashcards: []models.Flashcard{{GermanWord: "gehen", EnglishTranslation: "to go", Category: "verb"}}},
		{Name: "adverb"},
	}

	d, err := ThemedDeck(categories, []string{"verb", "noun"}, 30)
	require.NoError(t, err)
	assert.Equal(t, "Theme: verb, noun", d.Name)
	assert.True(t, d.IsShuffled)
	require.Len(t, d.Flashcards, 5)
	assert.Equal(t, "Wort0", d.Flashcards[0].GermanWord, "category order, not selection order")
	assert.Equal(t, "gehen", d.Flashcards[4].GermanWord)

	d, err = ThemedDeck(categories, []string{"noun"}, 2)
	require.NoError(t, err)
	assert.Len(t, d.Flashcards, 2)

	d, err = ThemedDeck(categories, []string{"noun"}, 0)
	require.NoError(t, err)
	assert.Len(t, d.Flashcards, 1)

	_, err = ThemedDeck(categories, nil, 10)
	assert.ErrorIs(t, err, ErrEmptySelection)

	_, err = ThemedDeck(categories, []string{"adverb", "missing"}, 10)
	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.ErrorIs(t, err, ErrNoThemedCards)
}

func TestQuizOptions(t *testing.T) {
	cards := pool(10)
	card := cards[3]

	for seed := int64(0); seed < 20; seed++ {
		opts := QuizOptions(card, cards, rand.New(rand.NewSource(seed)))
		require.Len(t, opts, OptionCount)
		assert.Contains(t, opts, card.EnglishTranslation)

		seen := make(map[string]bool)
		for _, o := range opts {
			assert.False(t, seen[o], "duplicate option %q", o)
			seen[o] = true
		}
	}
}

func TestQuizOptionsSmallPool(t *testing.T) {
	cards := []models.Flashcard{
		{GermanWord: "a", EnglishTranslation: "same"},
		{GermanWord: "b", EnglishTranslation: "same"},
		{GermanWord: "c", EnglishTranslation: "other"},
	}
	opts := QuizOptions(cards[0], cards, newRand())
	assert.ElementsMatch(t, []string{"same", "other"}, opts)

	opts = QuizOptions(cards[0], cards[:1], newRand())
	assert.Equal(t, []string{"same"}, opts)
}

func TestNamedDecks(t *testing.T) {
	all := pool(5)

	s := ShuffleDeck(all, newRand())
	assert.Equal(t, ShuffleDeckName, s.Name)
	assert.True(t, s.IsShuffled)
	assert.Len(t, s.Flashcards, 5)

	f := FavoritesDeck(all[:2])
	assert.Equal(t, FavoritesDeckName, f.Name)
	assert.True(t, f.IsFavorites)
	assert.Equal(t, all[:2], f.Flashcards)

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	reviewed := map[string]models.CardStats{
		all[0].Key(): {Seen: 3, Correct: 3, LastReviewed: now.UnixMilli()},
	}
	sp := SpacedDeck(all, func(key string) *models.CardStats {
		if s, ok := reviewed[key]; ok {
			return &s
		}
		return nil
	}, now)
	assert.Equal(t, SpacedDeckName, sp.Name)
	require.Len(t, sp.Flashcards, 5)
	assert.Equal(t, all[0], sp.Flashcards[4], "well-known card goes last")
	assert.Equal(t, all[1], sp.Flashcards[0], "ties keep input order")
}

func TestFilter(t *testing.T) {
	categories := []models.Category{
		{Name: "Noun", Flashcards: []models.Flashcard{
			{GermanWord: "Haus", EnglishTranslation: "house", Category: "Noun"},
			{GermanWord: "Krankenhaus", EnglishTranslation: "hospital", Category: "Noun"},
		}},
		{Name: "verb", Flashcards: []models.Flashcard{
			{GermanWord: "gehen", EnglishTranslation: "to go", Category: "verb"},
		}},
		{Name: "expression", Flashcards: []models.Flashcard{
			{GermanWord: "Entschuldigen Sie bitte vielmals", EnglishTranslation: "excuse me very much", Category: "expression"},
		}},
	}
	favorites := map[string]bool{"gehen|verb": true}
	isFavorite := func(key string) bool { return favorites[key] }

	names := func(cs []models.Category) []string {
		var out []string
		for _, c := range cs {
			out = append(out, c.Name)
		}
		return out
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"default drops long words", DefaultFilter(), []string{"Noun", "verb"}},
		{"unbounded length", Filter{}, []string{"Noun", "verb", "expression"}},
		{"type", Filter{Type: "noun"}, []string{"Noun"}},
		{"search category name", Filter{Search: " VERB "}, []string{"verb"}},
		{"search matches translations too", Filter{Search: "ver"}, []string{"verb", "expression"}},
		{"search translation", Filter{Search: "hospital"}, []string{"Noun"}},
		{"search german word", Filter{Search: "entschuldigen"}, []string{"expression"}},
		{"favorites only", Filter{FavoritesOnly: true}, []string{"verb"}},
		{"min length", Filter{MinLength: 6}, []string{"Noun", "expression"}},
		{"no match", Filter{Search: "zzz"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(tt.filter.Apply(categories, isFavorite)))
		})
	}
}

func TestCategoryTypes(t *testing.T) {
	types := CategoryTypes([]models.Category{{Name: "verb"}, {Name: "Noun"}, {Name: "noun"}, {Name: "adverb"}})
	assert.Equal(t, []CategoryType{
		{Value: "adverb", Label: "adverb"},
		{Value: "noun", Label: "Noun"},
		{Value: "verb", Label: "verb"},
	}, types)
}
