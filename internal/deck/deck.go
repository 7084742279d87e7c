package deck

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/example/flashdeck/internal/spaced_repetition"
	"github.com/example/flashdeck/pkg/models"
)

// Deck names shown to the learner
const (
	ShuffleDeckName   = "Shuffle Deck"
	FavoritesDeckName = "Favorite Cards"
	SpacedDeckName    = "Spaced Practice"
	ThemePrefix       = "Theme: "
)

// Question count bounds for quiz and writing practice
const (
	MinQuestions     = 5
	MaxQuestions     = 30
	DefaultQuestions = 10
	DefaultThemeSize = 30
	OptionCount      = 4
)

var (
	// ErrEmptySelection is returned when a themed deck is requested without
	// any category selected
	ErrEmptySelection = errors.New("select at least one category for themed practice")
	// ErrNoThemedCards is returned when the selected categories hold no cards
	ErrNoThemedCards = fmt.Errorf("%w: no flashcards found for the selected categories", ErrEmptySelection)
)

// NewRand returns a random source seeded from the clock
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Shuffle returns a uniformly shuffled copy of cards
func Shuffle(cards []models.Flashcard, rnd *rand.Rand) []models.Flashcard {
	out := make([]models.Flashcard, len(cards))
	copy(out, cards)
	// Fisher-Yates
	for i := len(out) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// ClampQuestions bounds a requested question count to [MinQuestions, MaxQuestions]
func ClampQuestions(n int) int {
	return min(max(n, MinQuestions), MaxQuestions)
}

// QuizDeck draws up to count distinct random cards for a quiz. A
// non-positive count falls back to MinQuestions.
func QuizDeck(all []models.Flashcard, count int, rnd *rand.Rand) []models.Flashcard {
	if count <= 0 {
		count = MinQuestions
	}
	shuffled := Shuffle(all, rnd)
	return shuffled[:min(count, len(shuffled))]
}

// WritingDeck draws cards for writing practice the same way as QuizDeck
func WritingDeck(all []models.Flashcard, count int, rnd *rand.Rand) []models.Flashcard {
	return QuizDeck(all, count, rnd)
}

// ShuffleDeck is every card in random order
func ShuffleDeck(all []models.Flashcard, rnd *rand.Rand) models.Category {
	return models.Category{Name: ShuffleDeckName, Flashcards: Shuffle(all, rnd), IsShuffled: true}
}

// FavoritesDeck is every favorite card, in the order given
func FavoritesDeck(favorites []models.Flashcard) models.Category {
	return models.Category{Name: FavoritesDeckName, Flashcards: favorites, IsFavorites: true}
}

// SpacedDeck is every card ordered by practice priority
func SpacedDeck(all []models.Flashcard, lookup spaced_repetition.StatsLookup, now time.Time) models.Category {
	ranked := spaced_repetition.NewRanker().Rank(all, lookup, now)
	return models.Category{Name: SpacedDeckName, Flashcards: ranked, IsShuffled: true}
}

// ThemedDeck concatenates the cards of the selected categories (matched
// case-insensitively, in category order) and keeps at most max(1, limit)
func ThemedDeck(categories []models.Category, selected []string, limit int) (models.Category, error) {
	names := make([]string, 0, len(selected))
	wanted := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		n := strings.ToLower(strings.TrimSpace(s))
		if n == "" {
			continue
		}
		if _, dup := wanted[n]; dup {
			continue
		}
		wanted[n] = struct{}{}
		names = append(names, n)
	}
	if len(wanted) == 0 {
		return models.Category{}, ErrEmptySelection
	}

	var cards []models.Flashcard
	for _, c := range categories {
		if _, ok := wanted[strings.ToLower(c.Name)]; ok {
			cards = append(cards, c.Flashcards...)
		}
	}
	if len(cards) == 0 {
		return models.Category{}, ErrNoThemedCards
	}

	cards = cards[:min(len(cards), max(1, limit))]
	return models.Category{
		Name:       ThemePrefix + strings.Join(names, ", "),
		Flashcards: cards,
		IsShuffled: true,
	}, nil
}

// QuizOptions builds the answer choices for a card: its translation plus up
// to OptionCount-1 other distinct translations drawn at random from pool
func QuizOptions(card models.Flashcard, pool []models.Flashcard, rnd *rand.Rand) []string {
	options := []string{card.EnglishTranslation}
	used := map[string]struct{}{card.EnglishTranslation: {}}

	candidates := make([]models.Flashcard, len(pool))
	copy(candidates, pool)
	for len(options) < OptionCount && len(candidates) > 0 {
		i := rnd.Intn(len(candidates))
		t := candidates[i].EnglishTranslation
		candidates[i] = candidates[len(candidates)-1]
		candidates = candidates[:len(candidates)-1]

		if _, ok := used[t]; ok {
			continue
		}
		used[t] = struct{}{}
		options = append(options, t)
	}

	rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}
