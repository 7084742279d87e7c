package state

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/example/flashdeck/internal/keystore"
	"github.com/example/flashdeck/internal/progress"
	"github.com/example/flashdeck/internal/vocabulary"
	"github.com/example/flashdeck/pkg/models"
	"github.com/go-playground/validator/v10"
)

// Persisted keys, shared with the browser version of the app
const (
	KeyDisplayName     = "germanFlashcardsUserName"
	KeyCustomEntries   = "germanFlashcardsCustomEntries"
	KeyFavorites       = "germanFlashcardsFavorites"
	KeyCardStats       = "germanFlashcardsCardStats"
	KeyCustomUpdatedAt = "germanFlashcardsCustomUpdatedAt"
	KeySessionStats    = "germanFlashcardsSessionStats"
	KeyStudyHistory    = "germanFlashcardsStudyHistory"
)

var validate = validator.New()

// Snapshot is every persisted structure of one learner profile
type Snapshot struct {
	DisplayName     string
	CustomEntries   []models.VocabularyEntry
	Favorites       []string // flashcard keys
	CardStats       progress.Ledger
	CustomUpdatedAt int64 // Unix milliseconds, 0 when never imported
	Session         models.SessionStats
	History         models.StudyHistory
}

// Report maps each key that fell back to its default to the reason
type Report map[string]error

// Store reads and writes the persisted structures through a KeyStore
type Store struct {
	kv  keystore.KeyStore
	log *slog.Logger
}

// Profiles lists the profiles of a store that have completed onboarding,
// i.e. hold a display name, in key order
func Profiles(ctx context.Context, lister keystore.Lister) ([]string, error) {
	keys, err := lister.Keys(ctx, "")
	if err != nil {
		return nil, err
	}
	var profiles []string
	for _, key := range keys {
		if profile, ok := strings.CutSuffix(key, ":"+KeyDisplayName); ok && profile != "" {
			profiles = append(profiles, profile)
		}
	}
	return profiles, nil
}

// New creates a Store over kv
func New(kv keystore.KeyStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, log: logger}
}

// Load reads every structure once. Unreadable values are replaced by their
// defaults, logged and listed in the report; Load itself never fails.
func (s *Store) Load(ctx context.Context, now time.Time) (Snapshot, Report) {
	report := Report{}
	var snap Snapshot

	if raw, ok := s.get(ctx, KeyDisplayName, report); ok {
		snap.DisplayName = strings.TrimSpace(raw)
	}

	snap.CustomEntries = load(ctx, s, KeyCustomEntries, report, validateEntries, []models.VocabularyEntry{})
	snap.Favorites = load(ctx, s, KeyFavorites, report, validateFavorites, []string{})
	snap.CardStats = load(ctx, s, KeyCardStats, report, validateLedger, progress.Ledger{})
	snap.Session = load(ctx, s, KeySessionStats, report, validateSession, progress.NewSession(now))
	snap.History = load(ctx, s, KeyStudyHistory, report, validateHistory, models.StudyHistory{})

	if raw, ok := s.get(ctx, KeyCustomUpdatedAt, report); ok {
		ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil || ms < 0 {
			s.fallback(KeyCustomUpdatedAt, fmt.Errorf("%w: invalid timestamp %q", ErrStorageRead, raw), report)
		} else {
			snap.CustomUpdatedAt = ms
		}
	}

	// normalise what older writers may have left behind
	if snap.CustomEntries == nil {
		snap.CustomEntries = []models.VocabularyEntry{}
	}
	if snap.Favorites == nil {
		snap.Favorites = []string{}
	}
	if snap.CardStats == nil {
		snap.CardStats = progress.Ledger{}
	}
	if snap.History == nil {
		snap.History = models.StudyHistory{}
	}
	if snap.Session.Notes == nil {
		snap.Session.Notes = []string{}
	}
	snap.History = progress.Trim(snap.History, progress.HistoryDays)

	return snap, report
}

func load[T any](ctx context.Context, s *Store, key string, report Report, check func(T) error, def T) T {
	raw, ok := s.get(ctx, key, report)
	loaded := LoadOrDefault(raw, ok, check, def)
	if loaded.Source == Fallback {
		s.fallback(key, loaded.Err, report)
	}
	return loaded.Value
}

func (s *Store) get(ctx context.Context, key string, report Report) (string, bool) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.fallback(key, fmt.Errorf("%w: %v", ErrStorageRead, err), report)
		return "", false
	}
	return raw, ok
}

func (s *Store) fallback(key string, err error, report Report) {
	report[key] = err
	s.log.Warn("discarding unreadable stored value", "key", key, "error", err)
}

// SaveDisplayName stores the learner's display name
func (s *Store) SaveDisplayName(ctx context.Context, name string) error {
	return s.set(ctx, KeyDisplayName, name)
}

// SaveCustomEntries stores the learner's own vocabulary entries
func (s *Store) SaveCustomEntries(ctx context.Context, entries []models.VocabularyEntry) error {
	if entries == nil {
		entries = []models.VocabularyEntry{}
	}
	return s.setJSON(ctx, KeyCustomEntries, entries)
}

// SaveCustomUpdatedAt stores the time of the last import or clear
func (s *Store) SaveCustomUpdatedAt(ctx context.Context, at time.Time) error {
	return s.set(ctx, KeyCustomUpdatedAt, strconv.FormatInt(at.UnixMilli(), 10))
}

// SaveFavorites stores the favorite flashcard keys
func (s *Store) SaveFavorites(ctx context.Context, keys []string) error {
	if keys == nil {
		keys = []string{}
	}
	return s.setJSON(ctx, KeyFavorites, keys)
}

// SaveCardStats stores the per-card statistics
func (s *Store) SaveCardStats(ctx context.Context, ledger progress.Ledger) error {
	return s.setJSON(ctx, KeyCardStats, ledger)
}

// SaveSession stores the current session statistics
func (s *Store) SaveSession(ctx context.Context, session models.SessionStats) error {
	return s.setJSON(ctx, KeySessionStats, session)
}

// SaveHistory stores the daily study history
func (s *Store) SaveHistory(ctx context.Context, history models.StudyHistory) error {
	return s.setJSON(ctx, KeyStudyHistory, history)
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.set(ctx, key, string(data))
}

func (s *Store) set(ctx context.Context, key, value string) error {
	if err := s.kv.Set(ctx, key, value); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func validateEntries(entries []models.VocabularyEntry) error {
	for i, e := range entries {
		if err := vocabulary.ValidateEntry(e); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return nil
}

func validateFavorites(keys []string) error {
	for i, k := range keys {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("favorite %d is empty", i)
		}
	}
	return nil
}

func validateLedger(ledger progress.Ledger) error {
	for key, st := range ledger {
		if err := validate.Struct(st); err != nil {
			return fmt.Errorf("card %q: %w", key, err)
		}
		if !st.Consistent() {
			return fmt.Errorf("card %q: seen %d != correct %d + incorrect %d", key, st.Seen, st.Correct, st.Incorrect)
		}
	}
	return nil
}

func validateSession(session models.SessionStats) error {
	if err := validate.Struct(session); err != nil {
		return err
	}
	if !session.Consistent() {
		return fmt.Errorf("session: seen %d != correct %d + incorrect %d", session.Seen, session.Correct, session.Incorrect)
	}
	return nil
}

func validateHistory(history models.StudyHistory) error {
	for day, st := range history {
		if !progress.ValidDayKey(day) {
			return fmt.Errorf("invalid day key %q", day)
		}
		if err := validate.Struct(st); err != nil {
			return fmt.Errorf("day %s: %w", day, err)
		}
	}
	return nil
}
