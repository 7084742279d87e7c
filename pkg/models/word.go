package models

import "strings"

// VocabularyEntry is one vocabulary item as imported, exported and persisted
type VocabularyEntry struct {
	GermanWord                 string `json:"germanWord" validate:"required"`
	EnglishTranslation         string `json:"englishTranslation" validate:"required"`
	Category                   string `json:"category" validate:"required"`
	GermanSentence             string `json:"germanSentence"`
	EnglishSentenceTranslation string `json:"englishSentenceTranslation"`
}

// Identity returns the (lowercased word, lowercased category) pair used to
// decide whether two entries describe the same item
func (e VocabularyEntry) Identity() Identity {
	return Identity{
		Word:     strings.ToLower(e.GermanWord),
		Category: strings.ToLower(e.Category),
	}
}

// Flashcard builds the study card for the entry
func (e VocabularyEntry) Flashcard() Flashcard {
	return Flashcard{
		GermanWord:                 e.GermanWord,
		EnglishTranslation:         e.EnglishTranslation,
		GermanSentence:             e.GermanSentence,
		EnglishSentenceTranslation: e.EnglishSentenceTranslation,
		Category:                   e.Category,
	}
}

// Identity identifies a vocabulary entry case-insensitively
type Identity struct {
	Word     string
	Category string
}

// Key renders the identity in flashcard key form
func (id Identity) Key() string {
	return id.Word + "|" + id.Category
}

// Flashcard is a vocabulary entry as presented for study
type Flashcard struct {
	GermanWord                 string `json:"germanWord"`
	EnglishTranslation         string `json:"englishTranslation"`
	GermanSentence             string `json:"germanSentence"`
	EnglishSentenceTranslation string `json:"englishSentenceTranslation"`
	Category                   string `json:"category,omitempty"`
}

// Key returns the stable card key: lowercase(germanWord) + "|" + lowercase(category)
func (f Flashcard) Key() string {
	return CardKey(f.GermanWord, f.Category)
}

// Entry converts the card back to a vocabulary entry
func (f Flashcard) Entry() VocabularyEntry {
	return VocabularyEntry{
		GermanWord:                 f.GermanWord,
		EnglishTranslation:         f.EnglishTranslation,
		Category:                   f.Category,
		GermanSentence:             f.GermanSentence,
		EnglishSentenceTranslation: f.EnglishSentenceTranslation,
	}
}

// CardKey builds a flashcard key from its parts
func CardKey(germanWord, category string) string {
	return strings.ToLower(germanWord) + "|" + strings.ToLower(category)
}

// Category is a named, ordered group of flashcards
type Category struct {
	Name        string      `json:"name"`
	Flashcards  []Flashcard `json:"flashcards"`
	IsShuffled  bool        `json:"isShuffled,omitempty"`
	IsFavorites bool        `json:"isFavorites,omitempty"`
}

// EntryColumns is the column order used by tabular import and export
var EntryColumns = []string{
	"germanWord",
	"englishTranslation",
	"category",
	"germanSentence",
	"englishSentenceTranslation",
}

// Row renders the entry in EntryColumns order
func (e VocabularyEntry) Row() []string {
	return []string{
		e.GermanWord,
		e.EnglishTranslation,
		e.Category,
		e.GermanSentence,
		e.EnglishSentenceTranslation,
	}
}
