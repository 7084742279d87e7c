package keystore

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// KeyStore is a string key/value store. A missing key is reported through
// ok == false and is never an error.
type KeyStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Lister is implemented by stores that can enumerate their keys
type Lister interface {
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Memory is an in-process KeyStore
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get returns the value stored under key
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set stores value under key
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Remove deletes key
func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Keys lists the stored keys starting with prefix in sorted order
func (m *Memory) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

type prefixed struct {
	store  KeyStore
	prefix string
}

// Prefixed scopes every key of store under prefix, giving each learner
// profile its own namespace inside one backend
func Prefixed(store KeyStore, prefix string) KeyStore {
	if p, ok := store.(*prefixed); ok {
		return &prefixed{store: p.store, prefix: p.prefix + prefix}
	}
	return &prefixed{store: store, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.store.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key, value string) error {
	return p.store.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Remove(ctx context.Context, key string) error {
	return p.store.Remove(ctx, p.prefix+key)
}

// ProfilePrefix returns the namespace prefix used for a named profile
func ProfilePrefix(profile string) string {
	return strings.TrimSuffix(profile, ":") + ":"
}
