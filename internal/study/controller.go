package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/example/flashdeck/internal/deck"
	"github.com/example/flashdeck/internal/keystore"
	"github.com/example/flashdeck/internal/progress"
	"github.com/example/flashdeck/internal/state"
	"github.com/example/flashdeck/internal/vocabulary"
	"github.com/example/flashdeck/pkg/models"
)

// ErrBlankName is returned when an empty display name is submitted
var ErrBlankName = errors.New("display name is empty")

// Controller owns one learner's vocabulary, favorites and progress. It is
// not safe for concurrent use; callers serialise events through it.
type Controller struct {
	store *state.Store
	log   *slog.Logger
	now   func() time.Time
	rnd   *rand.Rand

	base       []models.VocabularyEntry
	baseUnique int
	snap       state.Snapshot
	favorites  map[string]struct{}

	combined   []models.VocabularyEntry
	categories []models.Category
	all        []models.Flashcard
}

// Option configures a Controller
type Option func(*Controller)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithRand overrides the random source used for decks
func WithRand(rnd *rand.Rand) Option {
	return func(c *Controller) { c.rnd = rnd }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.log = logger }
}

// WithBase replaces the built-in vocabulary
func WithBase(entries []models.VocabularyEntry) Option {
	return func(c *Controller) { c.base = entries }
}

// New loads the learner state from kv
func New(ctx context.Context, kv keystore.KeyStore, opts ...Option) *Controller {
	c := &Controller{
		log: slog.Default(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rnd == nil {
		c.rnd = deck.NewRand()
	}
	if c.base == nil {
		c.base = vocabulary.Base()
	}
	c.baseUnique = len(vocabulary.Dedupe(c.base))

	c.store = state.New(kv, c.log)
	c.snap, _ = c.store.Load(ctx, c.now())
	c.indexFavorites()
	c.rebuild()
	return c
}

func (c *Controller) rebuild() {
	c.combined = vocabulary.Dedupe(vocabulary.Merge(c.base, c.snap.CustomEntries))
	c.categories = vocabulary.BuildCategories(c.combined)
	c.all = vocabulary.AllFlashcards(c.categories)
}

func (c *Controller) indexFavorites() {
	c.favorites = make(map[string]struct{}, len(c.snap.Favorites))
	for _, k := range c.snap.Favorites {
		c.favorites[k] = struct{}{}
	}
}

// DisplayName returns the learner's name, empty before onboarding
func (c *Controller) DisplayName() string {
	return c.snap.DisplayName
}

// SetDisplayName stores the trimmed name
func (c *Controller) SetDisplayName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrBlankName
	}
	c.snap.DisplayName = name
	return c.store.SaveDisplayName(ctx, name)
}

// CombinedEntries returns base and custom entries, deduplicated by identity
func (c *Controller) CombinedEntries() []models.VocabularyEntry {
	return c.combined
}

// CustomEntries returns the learner's own entries
func (c *Controller) CustomEntries() []models.VocabularyEntry {
	return c.snap.CustomEntries
}

// Categories returns the categories built from the combined entries
func (c *Controller) Categories() []models.Category {
	return c.categories
}

// AllFlashcards returns every card in category order
func (c *Controller) AllFlashcards() []models.Flashcard {
	return c.all
}

// Category finds a category by name, case-insensitively
func (c *Controller) Category(name string) (models.Category, bool) {
	name = strings.TrimSpace(name)
	for _, cat := range c.categories {
		if strings.EqualFold(cat.Name, name) {
			return cat, true
		}
	}
	return models.Category{}, false
}

// Card finds a flashcard by key
func (c *Controller) Card(key string) (models.Flashcard, bool) {
	for _, card := range c.all {
		if card.Key() == key {
			return card, true
		}
	}
	return models.Flashcard{}, false
}

// ImportResult reports a completed import
type ImportResult struct {
	Format   vocabulary.Format
	Imported int
	Skipped  int
}

// Import parses data and merges the entries into the custom entries,
// replacing prior entries with the same identity. On a parse error nothing
// is changed and the error wraps vocabulary.ErrImportParse.
func (c *Controller) Import(ctx context.Context, format vocabulary.Format, data []byte) (ImportResult, error) {
	entries, err := vocabulary.Parse(format, data)
	if err != nil {
		return ImportResult{Format: format}, err
	}
	if err := c.saveCustom(ctx, vocabulary.Upsert(c.snap.CustomEntries, entries)); err != nil {
		return ImportResult{Format: format}, err
	}
	c.log.Info("imported vocabulary", "format", format, "count", len(entries))
	return ImportResult{Format: format, Imported: len(entries)}, nil
}

// ImportGenerated adds remotely generated categories as custom entries.
// Incomplete flashcards are skipped.
func (c *Controller) ImportGenerated(ctx context.Context, categories []models.Category) (ImportResult, error) {
	var (
		valid   []models.VocabularyEntry
		skipped int
	)
	for _, e := range vocabulary.EntriesFromCategories(categories) {
		if err := vocabulary.ValidateEntry(e); err != nil {
			skipped++
			continue
		}
		valid = append(valid, e)
	}
	if len(valid) == 0 {
		return ImportResult{Skipped: skipped}, fmt.Errorf("%w: generated content has no usable flashcards", vocabulary.ErrImportParse)
	}
	if err := c.saveCustom(ctx, vocabulary.Upsert(c.snap.CustomEntries, valid)); err != nil {
		return ImportResult{}, err
	}
	return ImportResult{Format: vocabulary.FormatJSON, Imported: len(valid), Skipped: skipped}, nil
}

// ClearCustom removes every custom entry
func (c *Controller) ClearCustom(ctx context.Context) error {
	return c.saveCustom(ctx, []models.VocabularyEntry{})
}

// EditEntry replaces the entry identified by original with updated
func (c *Controller) EditEntry(ctx context.Context, original models.Identity, updated models.VocabularyEntry) error {
	updated = models.VocabularyEntry{
		GermanWord:                 strings.TrimSpace(updated.GermanWord),
		EnglishTranslation:         strings.TrimSpace(updated.EnglishTranslation),
		Category:                   strings.TrimSpace(updated.Category),
		GermanSentence:             strings.TrimSpace(updated.GermanSentence),
		EnglishSentenceTranslation: strings.TrimSpace(updated.EnglishSentenceTranslation),
	}
	if err := vocabulary.ValidateEntry(updated); err != nil {
		return fmt.Errorf("invalid entry: %w", err)
	}
	custom := vocabulary.Remove(c.snap.CustomEntries, original, updated.Identity())
	return c.saveCustom(ctx, append(custom, updated))
}

func (c *Controller) saveCustom(ctx context.Context, entries []models.VocabularyEntry) error {
	now := c.now()
	c.snap.CustomEntries = entries
	c.snap.CustomUpdatedAt = now.UnixMilli()
	c.rebuild()

	if err := c.store.SaveCustomEntries(ctx, entries); err != nil {
		return err
	}
	return c.store.SaveCustomUpdatedAt(ctx, now)
}

// Export encodes the combined entries
func (c *Controller) Export(format vocabulary.Format) ([]byte, error) {
	return vocabulary.Export(format, c.combined)
}

// IsFavorite reports whether the card key is a favorite
func (c *Controller) IsFavorite(key string) bool {
	_, ok := c.favorites[key]
	return ok
}

// ToggleFavorite flips the favorite flag of a card and returns the new state
func (c *Controller) ToggleFavorite(ctx context.Context, key string) (bool, error) {
	var favorite bool
	if c.IsFavorite(key) {
		keys := make([]string, 0, len(c.snap.Favorites))
		for _, k := range c.snap.Favorites {
			if k != key {
				keys = append(keys, k)
			}
		}
		c.snap.Favorites = keys
	} else {
		c.snap.Favorites = append(c.snap.Favorites, key)
		favorite = true
	}
	c.indexFavorites()
	return favorite, c.store.SaveFavorites(ctx, c.snap.Favorites)
}

// FavoriteCards returns the favorite cards in category order
func (c *Controller) FavoriteCards() []models.Flashcard {
	var out []models.Flashcard
	for _, card := range c.all {
		if c.IsFavorite(card.Key()) {
			out = append(out, card)
		}
	}
	return out
}

// Stats returns the statistics of one card
func (c *Controller) Stats(key string) (models.CardStats, bool) {
	return c.snap.CardStats.Stats(key)
}

// Session returns the current session statistics
func (c *Controller) Session() models.SessionStats {
	return c.snap.Session
}

// History returns the daily study history
func (c *Controller) History() models.StudyHistory {
	return c.snap.History
}

// RecordResult applies one review outcome to the card statistics, the
// session and today's history, then persists all three
func (c *Controller) RecordResult(ctx context.Context, card models.Flashcard, isCorrect bool) (models.CardStats, error) {
	now := c.now()
	stats := c.snap.CardStats.Record(card.Key(), isCorrect, now)
	c.snap.Session = progress.RecordSessionResult(c.snap.Session, isCorrect)
	c.snap.History = progress.RecordDay(c.snap.History, now, isCorrect)

	err := errors.Join(
		c.store.SaveCardStats(ctx, c.snap.CardStats),
		c.store.SaveSession(ctx, c.snap.Session),
		c.store.SaveHistory(ctx, c.snap.History),
	)
	if err != nil {
		c.log.Error("failed to persist review", "card", card.Key(), "error", err)
	}
	return stats, err
}

// AddNote prepends a note to the session. Blank notes are ignored.
func (c *Controller) AddNote(ctx context.Context, note string) (bool, error) {
	session, ok := progress.AddNote(c.snap.Session, note)
	if !ok {
		return false, nil
	}
	c.snap.Session = session
	return true, c.store.SaveSession(ctx, session)
}

// ResetSession starts a new empty session
func (c *Controller) ResetSession(ctx context.Context) error {
	c.snap.Session = progress.NewSession(c.now())
	c.log.Info("session reset", "session", c.snap.Session.ID)
	return c.store.SaveSession(ctx, c.snap.Session)
}
