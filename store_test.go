package main

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// memoryStore is the in-memory keyValueStore fake used throughout the tests.
// getErr simulates an unreadable host store.
type memoryStore struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]string)}
}

func (s *memoryStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	value, ok := s.data[key]
	return value, ok, nil
}

func (s *memoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *memoryStore) SetMany(values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, value := range values {
		s.data[key] = value
	}
	return nil
}

func (s *memoryStore) Remove(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func (s *memoryStore) Close() error { return nil }

func testEventLogger(t *testing.T) *eventLogger {
	t.Helper()
	return newEventLogger(filepath.Join(t.TempDir(), "events.ndjson"))
}

func TestPopupStoreRoundTrip(t *testing.T) {
	store, err := openPopupStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	_, ok, err := store.Get("missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set("userId", "u1"))
	value, ok, err := store.Get("userId")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "u1", value)

	// Overwrite wins.
	require.NoError(t, store.Set("userId", "u2"))
	value, _, err = store.Get("userId")
	require.NoError(t, err)
	require.Equal(t, "u2", value)
}

func TestPopupStoreSetMany(t *testing.T) {
	store, err := openPopupStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.SetMany(map[string]string{
		"userId":    "u1",
		"authToken": "t1",
	}))

	userID, ok, err := store.Get("userId")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "u1", userID)

	token, ok, err := store.Get("authToken")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "t1", token)
}

func TestPopupStoreRemove(t *testing.T) {
	store, err := openPopupStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set("userId", "u1"))
	require.NoError(t, store.Remove("userId", "authToken"))

	_, ok, err := store.Get("userId")
	require.NoError(t, err)
	require.False(t, ok)

	// Removing absent keys is not an error.
	require.NoError(t, store.Remove("userId"))
}

func TestPopupStoreNilReceiver(t *testing.T) {
	var store *popupStore
	require.NoError(t, store.Set("k", "v"))
	require.NoError(t, store.Remove("k"))
	require.NoError(t, store.Close())
	_, ok, err := store.Get("k")
	require.NoError(t, err)
	require.False(t, ok)
}

var errStoreDown = errors.New("store unavailable")
