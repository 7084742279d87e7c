package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// KeyValueRepository stores string values by key in the kv_store table.
// It satisfies keystore.KeyStore.
type KeyValueRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewKeyValueRepository creates a new key/value repository over db
func NewKeyValueRepository(db *sqlx.DB) *KeyValueRepository {
	return &KeyValueRepository{db: db, now: time.Now}
}

// Get returns the value stored under key; ok is false when the key is absent
func (r *KeyValueRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.GetContext(ctx, &value, r.db.Rebind(`SELECT value FROM kv_store WHERE name = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, true, nil
}

// Set inserts or replaces the value stored under key
func (r *KeyValueRepository) Set(ctx context.Context, key, value string) error {
	query := r.db.Rebind(`
		INSERT INTO kv_store (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`)
	if _, err := r.db.ExecContext(ctx, query, key, value, r.now().UTC()); err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (r *KeyValueRepository) Remove(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM kv_store WHERE name = ?`), key); err != nil {
		return fmt.Errorf("failed to remove key %q: %w", key, err)
	}
	return nil
}

// Keys lists stored keys starting with prefix, sorted
func (r *KeyValueRepository) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	query := r.db.Rebind(`SELECT name FROM kv_store WHERE substr(name, 1, ?) = ? ORDER BY name`)
	if err := r.db.SelectContext(ctx, &keys, query, len(prefix), prefix); err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}
