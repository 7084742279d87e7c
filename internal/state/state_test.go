package state

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/example/flashdeck/internal/keystore"
	"github.com/example/flashdeck/internal/progress"
	"github.com/example/flashdeck/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadOrDefault(t *testing.T) {
	positive := func(n int) error {
		if n <= 0 {
			return errors.New("not positive")
		}
		return nil
	}

	l := LoadOrDefault("", false, positive, 7)
	assert.Equal(t, Loaded[int]{Value: 7, Source: Missing}, l)

	l = LoadOrDefault("42", true, positive, 7)
	assert.Equal(t, Loaded[int]{Value: 42, Source: Parsed}, l)

	l = LoadOrDefault("{oops", true, positive, 7)
	assert.Equal(t, 7, l.Value)
	assert.Equal(t, Fallback, l.Source)
	assert.ErrorIs(t, l.Err, ErrStorageRead)

	l = LoadOrDefault("-1", true, positive, 7)
	assert.Equal(t, 7, l.Value)
	assert.Equal(t, Fallback, l.Source)
	assert.ErrorIs(t, l.Err, ErrStorageRead)

	assert.Equal(t, "fallback", Fallback.String())
}

func TestLoadEmptyStore(t *testing.T) {
	s := New(keystore.NewMemory(), quietLogger())

	snap, report := s.Load(context.Background(), now)
	assert.Empty(t, report)
	assert.Empty(t, snap.DisplayName)
	assert.NotNil(t, snap.CustomEntries)
	assert.NotNil(t, snap.Favorites)
	assert.NotNil(t, snap.CardStats)
	assert.NotNil(t, snap.History)
	assert.Zero(t, snap.CustomUpdatedAt)
	assert.Equal(t, now.UnixMilli(), snap.Session.StartedAt)
	assert.NotEmpty(t, snap.Session.ID)
}

func TestSaveThenLoad(t *testing.T) {
	ctx := context.Background()
	kv := keystore.NewMemory()
	s := New(kv, quietLogger())

	entries := []models.VocabularyEntry{{GermanWord: "Haus", EnglishTranslation: "house", Category: "noun"}}
	ledger := progress.Ledger{"haus|noun": {Seen: 2, Correct: 1, Incorrect: 1, LastReviewed: now.UnixMilli()}}
	session := models.SessionStats{ID: "abc", Seen: 1, Correct: 1, Notes: []string{"n"}, StartedAt: now.UnixMilli()}
	history := models.StudyHistory{"2024-03-10": {Seen: 3, Correct: 2}}

	require.NoError(t, s.SaveDisplayName(ctx, "Anna"))
	require.NoError(t, s.SaveCustomEntries(ctx, entries))
	require.NoError(t, s.SaveCustomUpdatedAt(ctx, now))
	require.NoError(t, s.SaveFavorites(ctx, []string{"haus|noun"}))
	require.NoError(t, s.SaveCardStats(ctx, ledger))
	require.NoError(t, s.SaveSession(ctx, session))
	require.NoError(t, s.SaveHistory(ctx, history))

	snap, report := s.Load(ctx, now.Add(time.Hour))
	assert.Empty(t, report)
	assert.Equal(t, Snapshot{
		DisplayName:     "Anna",
		CustomEntries:   entries,
		Favorites:       []string{"haus|noun"},
		CardStats:       ledger,
		CustomUpdatedAt: now.UnixMilli(),
		Session:         session,
		History:         history,
	}, snap)

	raw, ok, err := kv.Get(ctx, KeyCardStats)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, fmt.Sprintf(`{"haus|noun":{"seen":2,"correct":1,"incorrect":1,"lastReviewed":%d}}`, now.UnixMilli()), raw)
}

func TestCorruptValuesFallBack(t *testing.T) {
	ctx := context.Background()
	kv := keystore.NewMemory()
	s := New(kv, quietLogger())

	good := progress.Ledger{"haus|noun": {Seen: 1, Correct: 1}}
	require.NoError(t, s.SaveCardStats(ctx, good))

	corrupt := map[string]string{
		KeyCustomEntries:   `[{"germanWord":"Haus"}]`,
		KeyFavorites:       `not json`,
		KeySessionStats:    `{"seen":3,"correct":1,"incorrect":1,"notes":[],"startedAt":0}`,
		KeyStudyHistory:    `{"yesterday":{"seen":1,"correct":1}}`,
		KeyCustomUpdatedAt: `soon`,
	}
	for k, v := range corrupt {
		require.NoError(t, kv.Set(ctx, k, v))
	}

	snap, report := s.Load(ctx, now)
	assert.Len(t, report, len(corrupt))
	for k := range corrupt {
		assert.ErrorIs(t, report[k], ErrStorageRead, k)
	}

	assert.Empty(t, snap.CustomEntries)
	assert.Empty(t, snap.Favorites)
	assert.Empty(t, snap.History)
	assert.Zero(t, snap.CustomUpdatedAt)
	assert.Zero(t, snap.Session.Seen)
	assert.Equal(t, good, snap.CardStats, "other structures are unaffected")
}

func TestInconsistentCardStatsFallBack(t *testing.T) {
	ctx := context.Background()
	kv := keystore.NewMemory()
	require.NoError(t, kv.Set(ctx, KeyCardStats, `{"haus|noun":{"seen":5,"correct":1,"incorrect":1,"lastReviewed":0}}`))

	snap, report := New(kv, quietLogger()).Load(ctx, now)
	assert.Contains(t, report, KeyCardStats)
	assert.Empty(t, snap.CardStats)
}

func TestLoadTrimsHistory(t *testing.T) {
	ctx := context.Background()
	kv := keystore.NewMemory()
	s := New(kv, quietLogger())

	history := models.StudyHistory{}
	for i := 0; i < 20; i++ {
		history[progress.DayKey(now.AddDate(0, 0, -i))] = models.DayStats{Seen: 1}
	}
	require.NoError(t, s.SaveHistory(ctx, history))

	snap, _ := s.Load(ctx, now)
	assert.Len(t, snap.History, progress.HistoryDays)
	assert.Contains(t, snap.History, progress.DayKey(now))
}

type failingStore struct{ keystore.KeyStore }

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("disk on fire")
}

func TestBackendErrors(t *testing.T) {
	s := New(failingStore{}, quietLogger())

	snap, report := s.Load(context.Background(), now)
	assert.Len(t, report, 7)
	assert.Empty(t, snap.CustomEntries)

	assert.Error(t, s.SaveFavorites(context.Background(), nil))
}

func TestNilSlicesPersistAsEmptyArrays(t *testing.T) {
	ctx := context.Background()
	kv := keystore.NewMemory()
	s := New(kv, quietLogger())

	require.NoError(t, s.SaveFavorites(ctx, nil))
	require.NoError(t, s.SaveCustomEntries(ctx, nil))

	raw, _, _ := kv.Get(ctx, KeyFavorites)
	assert.Equal(t, "[]", raw)
	raw, _, _ = kv.Get(ctx, KeyCustomEntries)
	assert.Equal(t, "[]", raw)
}

func TestProfiles(t *testing.T) {
	ctx := context.Background()
	root := keystore.NewMemory()
	require.NoError(t, root.Set(ctx, "local:"+KeyDisplayName, "Anna"))
	require.NoError(t, root.Set(ctx, "chat:7:"+KeyDisplayName, "Ben"))
	require.NoError(t, root.Set(ctx, "chat:8:"+KeyCardStats, "{}"))
	require.NoError(t, root.Set(ctx, "flashdeck:chats", "[7,8]"))

	profiles, err := Profiles(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, []string{"chat:7", "local"}, profiles)
}
