package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/flashdeck/internal/keystore"
)

var _ keystore.KeyStore = (*KeyValueRepository)(nil)

func setupTestDB(t *testing.T, driver string) *sqlx.DB {
	t.Helper()
	db, err := Open(driver, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestKeyValueRepository(t *testing.T) {
	for _, driver := range []string{DriverSQLite3, DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			repo := NewKeyValueRepository(setupTestDB(t, driver))

			_, ok, err := repo.Get(ctx, "germanFlashcardsUserName")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, repo.Set(ctx, "germanFlashcardsUserName", "Anna"))
			v, ok, err := repo.Get(ctx, "germanFlashcardsUserName")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "Anna", v)

			// upsert replaces the previous value
			require.NoError(t, repo.Set(ctx, "germanFlashcardsUserName", "Ben"))
			v, _, err = repo.Get(ctx, "germanFlashcardsUserName")
			require.NoError(t, err)
			assert.Equal(t, "Ben", v)

			require.NoError(t, repo.Remove(ctx, "germanFlashcardsUserName"))
			_, ok, err = repo.Get(ctx, "germanFlashcardsUserName")
			require.NoError(t, err)
			assert.False(t, ok)

			assert.NoError(t, repo.Remove(ctx, "never-stored"))
		})
	}
}

func TestKeyValueRepositoryKeys(t *testing.T) {
	ctx := context.Background()
	repo := NewKeyValueRepository(setupTestDB(t, DriverSQLite3))

	require.NoError(t, repo.Set(ctx, "chat:2:name", "b"))
	require.NoError(t, repo.Set(ctx, "chat:1:name", "a"))
	require.NoError(t, repo.Set(ctx, "local:name", "c"))

	keys, err := repo.Keys(ctx, "chat:")
	require.NoError(t, err)
	assert.Equal(t, []string{"chat:1:name", "chat:2:name"}, keys)
}

func TestKeyValueRepositoryWithPrefixedStore(t *testing.T) {
	ctx := context.Background()
	repo := NewKeyValueRepository(setupTestDB(t, DriverSQLite3))
	profile := keystore.Prefixed(repo, keystore.ProfilePrefix("local"))

	require.NoError(t, profile.Set(ctx, "favorites", "[]"))
	v, ok, err := repo.Get(ctx, "local:favorites")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)
}

func TestOpenCreatesDataDirectory(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "flashdeck.db")
	db, err := Open(DriverSQLite3, dsn)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dsn)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "whatever")
	assert.Error(t, err)
}

func TestDataDir(t *testing.T) {
	assert.Equal(t, "", dataDir(":memory:"))
	assert.Equal(t, "", dataDir("file::memory:?cache=shared"))
	assert.Equal(t, "", dataDir("flashdeck.db"))
	assert.Equal(t, "data", dataDir("data/flashdeck.db"))
	assert.Equal(t, "data", dataDir("file:data/flashdeck.db?_busy_timeout=1"))
}
