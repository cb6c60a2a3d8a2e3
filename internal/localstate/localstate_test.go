// ABOUTME: Tests for the SQLite-backed key-value state store
// ABOUTME: Covers roundtrips, missing keys, overwrites, and reopen persistence

package localstate

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestStore opens a store in a temp directory and closes it with the test.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSetGet_Roundtrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, IdentityKey, []byte(`{"id":"u1"}`)))

	got, err := s.Get(ctx, IdentityKey)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"id":"u1"}`), got)
}

func TestGet_MissingKey(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Get(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSet_OverwritesExistingValue(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, IdentityKey, []byte(`old`)))
	require.NoError(t, s.Set(ctx, IdentityKey, []byte(`new`)))

	got, err := s.Get(ctx, IdentityKey)
	require.NoError(t, err)
	assert.Equal(t, []byte(`new`), got)
}

func TestDelete_RemovesKey(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, IdentityKey, []byte(`x`)))
	require.NoError(t, s.Delete(ctx, IdentityKey))

	_, err := s.Get(ctx, IdentityKey)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_MissingKeyIsNotAnError(t *testing.T) {
	s := createTestStore(t)

	require.NoError(t, s.Delete(context.Background(), "never-existed"))
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, IdentityKey, []byte(`durable`)))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Get(ctx, IdentityKey)
	require.NoError(t, err)
	assert.Equal(t, []byte(`durable`), got)
}

func TestOpen_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "state.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set(context.Background(), "k", []byte("v")))
}
