package vocabulary

import (
	"bufio"
	_ "embed"
	"strings"
	"sync"

	"github.com/example/flashdeck/pkg/models"
)

// baseWordList holds the built-in vocabulary, one "germanWord;englishTranslation;category" item per line
//
//go:embed base_words.txt
var baseWordList string

var (
	baseOnce    sync.Once
	baseEntries []models.VocabularyEntry
)

// Base returns a copy of the built-in vocabulary
func Base() []models.VocabularyEntry {
	baseOnce.Do(func() {
		baseEntries = ParseWordList(baseWordList)
	})
	out := make([]models.VocabularyEntry, len(baseEntries))
	copy(out, baseEntries)
	return out
}

// BaseWordList returns the raw built-in list, as sent to the remote generator
func BaseWordList() string {
	return baseWordList
}

// ParseWordList reads "word;translation;category" lines. Lines with fewer
// than three fields are skipped; extra fields in the middle are ignored and
// the last field is taken as the category.
func ParseWordList(list string) []models.VocabularyEntry {
	var entries []models.VocabularyEntry
	scanner := bufio.NewScanner(strings.NewReader(list))
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), ";")
		if len(fields) < 3 {
			continue
		}
		entry := models.VocabularyEntry{
			GermanWord:         strings.TrimSpace(fields[0]),
			EnglishTranslation: strings.TrimSpace(fields[1]),
			Category:           strings.TrimSpace(fields[len(fields)-1]),
		}
		if entry.GermanWord == "" || entry.Category == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}
