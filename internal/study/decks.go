package study

import (
	"github.com/example/flashdeck/internal/deck"
	"github.com/example/flashdeck/pkg/models"
)

// ShuffleDeck returns every card in random order
func (c *Controller) ShuffleDeck() models.Category {
	return deck.ShuffleDeck(c.all, c.rnd)
}

// FavoritesDeck returns the favorite cards, or false when there are none
func (c *Controller) FavoritesDeck() (models.Category, bool) {
	favorites := c.FavoriteCards()
	if len(favorites) == 0 {
		return models.Category{}, false
	}
	return deck.FavoritesDeck(favorites), true
}

// SpacedDeck returns every card ordered by practice priority
func (c *Controller) SpacedDeck() (models.Category, bool) {
	if len(c.all) == 0 {
		return models.Category{}, false
	}
	return deck.SpacedDeck(c.all, c.snap.CardStats.Lookup, c.now()), true
}

// QuizDeck draws count random cards for a quiz
func (c *Controller) QuizDeck(count int) []models.Flashcard {
	return deck.QuizDeck(c.all, count, c.rnd)
}

// WritingDeck draws count random cards for writing practice
func (c *Controller) WritingDeck(count int) []models.Flashcard {
	return deck.WritingDeck(c.all, count, c.rnd)
}

// ThemedDeck builds a deck from the named categories
func (c *Controller) ThemedDeck(names []string, limit int) (models.Category, error) {
	return deck.ThemedDeck(c.categories, names, limit)
}

// FilterCategories applies a category filter using the learner's favorites
func (c *Controller) FilterCategories(f deck.Filter) []models.Category {
	return f.Apply(c.categories, c.IsFavorite)
}

// CategoryTypes lists the selectable category types
func (c *Controller) CategoryTypes() []deck.CategoryType {
	return deck.CategoryTypes(c.categories)
}
