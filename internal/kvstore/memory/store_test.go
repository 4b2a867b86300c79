package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitMakesWritesVisible(t *testing.T) {
	ctx := context.Background()
	store := New()

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Set(ctx, "books", "book1", []byte("a")))
	require.NoError(t, tx.Commit(ctx))

	tx2, err := store.Begin(ctx)
	require.NoError(t, err)
	defer tx2.Rollback()

	value, ok, err := tx2.Get(ctx, "books", "book1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("a"), value)
}

func TestRollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	store := New()

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Set(ctx, "books", "book1", []byte("a")))
	require.NoError(t, tx.Rollback())

	tx2, err := store.Begin(ctx)
	require.NoError(t, err)
	defer tx2.Rollback()

	_, ok, err := tx2.Get(ctx, "books", "book1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEnumerateIsSortedAndScopedToDict(t *testing.T) {
	ctx := context.Background()
	store := New()

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Set(ctx, "books", "b", []byte("2")))
	require.NoError(t, tx.Set(ctx, "books", "a", []byte("1")))
	require.NoError(t, tx.Set(ctx, "clients", "c", []byte("3")))
	require.NoError(t, tx.Commit(ctx))

	tx2, err := store.Begin(ctx)
	require.NoError(t, err)
	defer tx2.Rollback()

	entries, err := tx2.Enumerate(ctx, "books")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Key)
	assert.Equal(t, "b", entries[1].Key)
}

func TestClearRemovesOnlyNamedDict(t *testing.T) {
	ctx := context.Background()
	store := New()

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Set(ctx, "books", "book1", []byte("a")))
	require.NoError(t, tx.Set(ctx, "reserved_books", "book1", []byte("5")))
	require.NoError(t, tx.Commit(ctx))

	tx2, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx2.Clear(ctx, "reserved_books"))
	require.NoError(t, tx2.Commit(ctx))

	tx3, err := store.Begin(ctx)
	require.NoError(t, err)
	defer tx3.Rollback()

	reserved, err := tx3.Enumerate(ctx, "reserved_books")
	require.NoError(t, err)
	assert.Empty(t, reserved)

	books, err := tx3.Enumerate(ctx, "books")
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

func TestSetAfterClearInSameTx(t *testing.T) {
	ctx := context.Background()
	store := New()

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Set(ctx, "books", "book1", []byte("a")))
	require.NoError(t, tx.Commit(ctx))

	tx2, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx2.Clear(ctx, "books"))
	require.NoError(t, tx2.Set(ctx, "books", "book2", []byte("b")))
	require.NoError(t, tx2.Commit(ctx))

	tx3, err := store.Begin(ctx)
	require.NoError(t, err)
	defer tx3.Rollback()

	entries, err := tx3.Enumerate(ctx, "books")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "book2", entries[0].Key)
}
