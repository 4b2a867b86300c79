package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/bookstore-sagas/internal/bookstore-service/domain"
	"github.com/jcmexdev/bookstore-sagas/internal/kvstore"
	"github.com/jcmexdev/bookstore-sagas/internal/kvstore/memory"
)

func newTestService(t *testing.T) (*Service, kvstore.Store) {
	t.Helper()
	store := memory.New()
	svc := NewService(store)
	require.NoError(t, svc.Bootstrap(context.Background()))
	return svc, store
}

func reservedEntries(t *testing.T, store kvstore.Store) []kvstore.Entry {
	t.Helper()
	ctx := context.Background()
	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()
	entries, err := tx.Enumerate(ctx, reservedBooksDict)
	require.NoError(t, err)
	return entries
}

func TestBootstrapSeedsEmptyCatalogue(t *testing.T) {
	svc, _ := newTestService(t)

	books, err := svc.AvailableBooks(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, domain.Book{Title: "Most", Quantity: 100, Price: 100}, books["book1"])
	assert.Equal(t, domain.Book{Title: "Frankenstajn", Quantity: 50, Price: 50}, books["book2"])
	assert.Equal(t, domain.Book{Title: "Orkanski visovi", Quantity: 30, Price: 30}, books["book3"])
}

func TestBootstrapClearsStaleReservations(t *testing.T) {
	// A reservation left behind by a crash mid-saga must be discarded on the
	// next startup, without touching the catalogue.
	ctx := context.Background()
	svc, store := newTestService(t)

	require.NoError(t, svc.RecordPurchase(ctx, "book1", 5))
	require.Len(t, reservedEntries(t, store), 1)

	require.NoError(t, svc.Bootstrap(ctx))

	assert.Empty(t, reservedEntries(t, store))
	books, err := svc.AvailableBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(100), books["book1"].Quantity)
}

func TestBootstrapDoesNotReseedNonEmptyCatalogue(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	require.NoError(t, svc.RecordPurchase(ctx, "book1", 5))
	require.NoError(t, svc.Confirm(ctx))
	require.NoError(t, svc.Bootstrap(ctx))

	books, err := svc.AvailableBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(95), books["book1"].Quantity)
}

func TestAvailableBooksExcludesOutOfStock(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	// Confirm applies reservations without a readiness check, so the stock
	// can be drained to zero directly.
	require.NoError(t, svc.RecordPurchase(ctx, "book3", 30))
	require.NoError(t, svc.Confirm(ctx))

	books, err := svc.AvailableBooks(ctx)
	require.NoError(t, err)
	assert.NotContains(t, books, "book3")
	assert.Len(t, books, 2)
}

func TestBookPrice(t *testing.T) {
	svc, _ := newTestService(t)

	price, err := svc.BookPrice(context.Background(), "book2")
	require.NoError(t, err)
	assert.Equal(t, 50.0, price)
}

func TestBookPriceNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.BookPrice(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrBookNotFound)
}

func TestRecordPurchaseAccumulates(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	require.NoError(t, svc.RecordPurchase(ctx, "book1", 5))
	require.NoError(t, svc.RecordPurchase(ctx, "book1", 3))

	entries := reservedEntries(t, store)
	require.Len(t, entries, 1)
	assert.Equal(t, "8", string(entries[0].Value))
}

func TestIsReady(t *testing.T) {
	ctx := context.Background()

	t.Run("no reservations", func(t *testing.T) {
		svc, _ := newTestService(t)
		ready, err := svc.IsReady(ctx)
		require.NoError(t, err)
		assert.True(t, ready)
	})

	t.Run("reservation below stock", func(t *testing.T) {
		svc, _ := newTestService(t)
		require.NoError(t, svc.RecordPurchase(ctx, "book1", 99))
		ready, err := svc.IsReady(ctx)
		require.NoError(t, err)
		assert.True(t, ready)
	})

	t.Run("reservation equal to stock is rejected", func(t *testing.T) {
		svc, _ := newTestService(t)
		require.NoError(t, svc.RecordPurchase(ctx, "book1", 100))
		ready, err := svc.IsReady(ctx)
		require.NoError(t, err)
		assert.False(t, ready)
	})

	t.Run("reservation above stock is rejected", func(t *testing.T) {
		svc, _ := newTestService(t)
		require.NoError(t, svc.RecordPurchase(ctx, "book1", 101))
		ready, err := svc.IsReady(ctx)
		require.NoError(t, err)
		assert.False(t, ready)
	})

	t.Run("reservation against missing book", func(t *testing.T) {
		svc, _ := newTestService(t)
		require.NoError(t, svc.RecordPurchase(ctx, "ghost", 1))
		_, err := svc.IsReady(ctx)
		assert.ErrorIs(t, err, domain.ErrBookNotFound)
	})
}

func TestConfirmAppliesReservationsAndClears(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	require.NoError(t, svc.RecordPurchase(ctx, "book1", 5))
	require.NoError(t, svc.RecordPurchase(ctx, "book2", 10))
	require.NoError(t, svc.Confirm(ctx))

	books, err := svc.AvailableBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(95), books["book1"].Quantity)
	assert.Equal(t, uint32(40), books["book2"].Quantity)
	assert.Empty(t, reservedEntries(t, store))
}

func TestConfirmIsIdempotentWhenNothingReserved(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	require.NoError(t, svc.RecordPurchase(ctx, "book1", 5))
	require.NoError(t, svc.Confirm(ctx))
	require.NoError(t, svc.Confirm(ctx))

	books, err := svc.AvailableBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(95), books["book1"].Quantity)
}

func TestRollbackClearsReservationsOnly(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	require.NoError(t, svc.RecordPurchase(ctx, "book1", 5))
	require.NoError(t, svc.Rollback(ctx))

	assert.Empty(t, reservedEntries(t, store))
	books, err := svc.AvailableBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(100), books["book1"].Quantity)
}

func TestRollbackWithNothingReserved(t *testing.T) {
	svc, store := newTestService(t)

	require.NoError(t, svc.Rollback(context.Background()))
	assert.Empty(t, reservedEntries(t, store))
}

func TestConfirmRejectsReservationAboveStock(t *testing.T) {
	// Confirm is reachable without a prior readiness check. A reservation
	// above the current stock must fail instead of wrapping the quantity.
	ctx := context.Background()
	svc, store := newTestService(t)

	require.NoError(t, svc.RecordPurchase(ctx, "book1", 150))

	err := svc.Confirm(ctx)
	require.Error(t, err)

	books, err := svc.AvailableBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(100), books["book1"].Quantity)
	assert.Len(t, reservedEntries(t, store), 1)
}
