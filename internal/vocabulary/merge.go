package vocabulary

import "github.com/example/flashdeck/pkg/models"

// Merge concatenates the base and custom entries without deduplicating
func Merge(base, custom []models.VocabularyEntry) []models.VocabularyEntry {
	out := make([]models.VocabularyEntry, 0, len(base)+len(custom))
	out = append(out, base...)
	return append(out, custom...)
}

// Dedupe collapses entries sharing an identity. The last entry wins and
// takes the position of the first occurrence.
func Dedupe(entries []models.VocabularyEntry) []models.VocabularyEntry {
	index := make(map[models.Identity]int, len(entries))
	out := make([]models.VocabularyEntry, 0, len(entries))
	for _, e := range entries {
		id := e.Identity()
		if i, ok := index[id]; ok {
			out[i] = e
			continue
		}
		index[id] = len(out)
		out = append(out, e)
	}
	return out
}

// Upsert removes existing entries that share an identity with any incoming
// entry and appends the incoming ones (deduplicated, last wins)
func Upsert(existing, incoming []models.VocabularyEntry) []models.VocabularyEntry {
	incoming = Dedupe(incoming)
	ids := make([]models.Identity, len(incoming))
	for i, e := range incoming {
		ids[i] = e.Identity()
	}
	return append(Remove(existing, ids...), incoming...)
}

// Remove returns entries without the ones matching any of ids
func Remove(entries []models.VocabularyEntry, ids ...models.Identity) []models.VocabularyEntry {
	drop := make(map[models.Identity]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	out := make([]models.VocabularyEntry, 0, len(entries))
	for _, e := range entries {
		if _, ok := drop[e.Identity()]; ok {
			continue
		}
		out = append(out, e)
	}
	return out
}

// BuildCategories groups entries by their exact category string, keeping the
// order in which categories and entries first appear
func BuildCategories(entries []models.VocabularyEntry) []models.Category {
	index := make(map[string]int)
	var categories []models.Category
	for _, e := range entries {
		i, ok := index[e.Category]
		if !ok {
			i = len(categories)
			index[e.Category] = i
			categories = append(categories, models.Category{Name: e.Category})
		}
		categories[i].Flashcards = append(categories[i].Flashcards, e.Flashcard())
	}
	return categories
}

// AllFlashcards flattens categories into one list in category order
func AllFlashcards(categories []models.Category) []models.Flashcard {
	var n int
	for _, c := range categories {
		n += len(c.Flashcards)
	}
	out := make([]models.Flashcard, 0, n)
	for _, c := range categories {
		out = append(out, c.Flashcards...)
	}
	return out
}

// EntriesFromCategories converts categories back to entries, the category
// name becoming each entry's category
func EntriesFromCategories(categories []models.Category) []models.VocabularyEntry {
	var out []models.VocabularyEntry
	for _, c := range categories {
		for _, f := range c.Flashcards {
			e := f.Entry()
			e.Category = c.Name
			out = append(out, e)
		}
	}
	return out
}
