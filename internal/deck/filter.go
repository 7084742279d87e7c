package deck

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/example/flashdeck/pkg/models"
)

// AllTypes matches every category in Filter.Type
const AllTypes = "all"

// Filter narrows the category list
type Filter struct {
	Search        string
	Type          string // lowercased category name, or "" / "all"
	FavoritesOnly bool
	MinLength     int
	MaxLength     int // 0 means unbounded
}

// DefaultFilter matches what the category screen starts with
func DefaultFilter() Filter {
	return Filter{Type: AllTypes, MinLength: 0, MaxLength: 20}
}

// Apply returns the categories that pass the filter, unchanged and in order
func (f Filter) Apply(categories []models.Category, isFavorite func(cardKey string) bool) []models.Category {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	typ := strings.ToLower(strings.TrimSpace(f.Type))

	var out []models.Category
	for _, c := range categories {
		if typ != "" && typ != AllTypes && strings.ToLower(c.Name) != typ {
			continue
		}

		candidates := c.Flashcards
		if f.FavoritesOnly {
			candidates = nil
			for _, card := range c.Flashcards {
				if isFavorite != nil && isFavorite(card.Key()) {
					candidates = append(candidates, card)
				}
			}
			if len(candidates) == 0 {
				continue
			}
		}

		if !f.anyWithinLength(candidates) {
			continue
		}

		if search != "" && !strings.Contains(strings.ToLower(c.Name), search) && !anyMatches(candidates, search) {
			continue
		}

		out = append(out, c)
	}
	return out
}

func (f Filter) anyWithinLength(cards []models.Flashcard) bool {
	for _, card := range cards {
		n := utf8.RuneCountInString(card.GermanWord)
		if n >= f.MinLength && (f.MaxLength <= 0 || n <= f.MaxLength) {
			return true
		}
	}
	return false
}

func anyMatches(cards []models.Flashcard, search string) bool {
	for _, card := range cards {
		if strings.Contains(strings.ToLower(card.GermanWord), search) ||
			strings.Contains(strings.ToLower(card.EnglishTranslation), search) {
			return true
		}
	}
	return false
}

// CategoryType is a selectable category type: the lowercased name and the
// first display label seen for it
type CategoryType struct {
	Value string
	Label string
}

// CategoryTypes lists the distinct category types sorted by label
func CategoryTypes(categories []models.Category) []CategoryType {
	seen := make(map[string]bool)
	var types []CategoryType
	for _, c := range categories {
		v := strings.ToLower(c.Name)
		if seen[v] {
			continue
		}
		seen[v] = true
		types = append(types, CategoryType{Value: v, Label: c.Name})
	}
	sort.SliceStable(types, func(i, j int) bool {
		return strings.ToLower(types[i].Label) < strings.ToLower(types[j].Label)
	})
	return types
}
