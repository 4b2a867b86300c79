package client

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bankapp "github.com/jcmexdev/bookstore-sagas/internal/bank-service/app"
	bankdomain "github.com/jcmexdev/bookstore-sagas/internal/bank-service/domain"
	bankhttp "github.com/jcmexdev/bookstore-sagas/internal/bank-service/httpx"
	bookapp "github.com/jcmexdev/bookstore-sagas/internal/bookstore-service/app"
	bookdomain "github.com/jcmexdev/bookstore-sagas/internal/bookstore-service/domain"
	bookhttp "github.com/jcmexdev/bookstore-sagas/internal/bookstore-service/httpx"
	"github.com/jcmexdev/bookstore-sagas/internal/coordinator"
	"github.com/jcmexdev/bookstore-sagas/internal/kvstore/memory"
)

func newBookstoreServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := bookapp.NewService(memory.New())
	require.NoError(t, svc.Bootstrap(context.Background()))
	srv := httptest.NewServer(bookhttp.NewRouter(bookhttp.NewHandler(svc, nil)))
	t.Cleanup(srv.Close)
	return srv
}

func newBankServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := bankapp.NewService(memory.New())
	require.NoError(t, svc.Bootstrap(context.Background()))
	srv := httptest.NewServer(bankhttp.NewRouter(bankhttp.NewHandler(svc)))
	t.Cleanup(srv.Close)
	return srv
}

func TestBookstoreClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewBookstoreClient(newBookstoreServer(t).URL)

	books, err := c.AvailableBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, "Most", books["book1"].Title)

	price, err := c.BookPrice(ctx, "book1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, price)

	require.NoError(t, c.RecordPurchase(ctx, "book1", 5))

	ready, err := c.IsReady(ctx)
	require.NoError(t, err)
	assert.True(t, ready)

	require.NoError(t, c.Confirm(ctx))

	books, err = c.AvailableBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(95), books["book1"].Quantity)
}

func TestBookstoreClientNotFoundCrossesTransport(t *testing.T) {
	ctx := context.Background()
	c := NewBookstoreClient(newBookstoreServer(t).URL)

	_, err := c.BookPrice(ctx, "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, bookdomain.ErrBookNotFound)
}

func TestBookstoreClientRollbackDiscardsReservation(t *testing.T) {
	ctx := context.Background()
	c := NewBookstoreClient(newBookstoreServer(t).URL)

	require.NoError(t, c.RecordPurchase(ctx, "book1", 5))
	require.NoError(t, c.Rollback(ctx))
	require.NoError(t, c.Confirm(ctx))

	books, err := c.AvailableBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(100), books["book1"].Quantity)
}

func TestBankClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewBankClient(newBankServer(t).URL)

	clients, err := c.Clients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 3)
	assert.Equal(t, "Luka", clients["client1"].Name)

	require.NoError(t, c.InitiateTransfer(ctx, "client1", 500))

	ready, err := c.IsReady(ctx)
	require.NoError(t, err)
	assert.True(t, ready)

	require.NoError(t, c.Confirm(ctx))

	clients, err = c.Clients(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, clients["client1"].Balance)
}

func TestBankClientNotFoundCrossesTransport(t *testing.T) {
	ctx := context.Background()
	c := NewBankClient(newBankServer(t).URL)

	require.NoError(t, c.InitiateTransfer(ctx, "missing", 100))

	_, err := c.IsReady(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, bankdomain.ErrClientNotFound)
}

// The coordinator running over the HTTP clients against real participant
// routers, end to end.
func TestCoordinatorOverHTTP(t *testing.T) {
	ctx := context.Background()
	bookstore := NewBookstoreClient(newBookstoreServer(t).URL)
	bank := NewBankClient(newBankServer(t).URL)
	coord := coordinator.New(bookstore, bank, nil)

	err := coord.ProcessPurchase(ctx, "saga-http-1", coordinator.PurchaseRequest{
		Title:    "Frankenstajn",
		Quantity: 2,
		Customer: "Vuk",
	})
	require.NoError(t, err)

	books, err := bookstore.AvailableBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(48), books["book2"].Quantity)

	clients, err := bank.Clients(ctx)
	require.NoError(t, err)
	assert.Equal(t, 900.0, clients["client2"].Balance)
}

func TestCoordinatorOverHTTPCompensates(t *testing.T) {
	ctx := context.Background()
	bookstore := NewBookstoreClient(newBookstoreServer(t).URL)
	bank := NewBankClient(newBankServer(t).URL)
	coord := coordinator.New(bookstore, bank, nil)

	// 25 × 100 exceeds Vuk's balance of 1000.
	err := coord.ProcessPurchase(ctx, "saga-http-2", coordinator.PurchaseRequest{
		Title:    "Most",
		Quantity: 25,
		Customer: "Vuk",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, coordinator.ErrNotReady)

	books, err := bookstore.AvailableBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(100), books["book1"].Quantity)

	clients, err := bank.Clients(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, clients["client2"].Balance)
}
