package coordinator

import (
	"context"

	bankdomain "github.com/jcmexdev/bookstore-sagas/internal/bank-service/domain"
	bookdomain "github.com/jcmexdev/bookstore-sagas/internal/bookstore-service/domain"
)

// Bookstore is the coordinator's view of the inventory participant: the
// catalogue reads plus the shared transaction contract. Implemented by the
// in-process service (tests) and by the HTTP client (production).
type Bookstore interface {
	AvailableBooks(ctx context.Context) (map[string]bookdomain.Book, error)
	BookPrice(ctx context.Context, bookID string) (float64, error)
	RecordPurchase(ctx context.Context, bookID string, count uint32) error
	IsReady(ctx context.Context) (bool, error)
	Confirm(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Bank is the coordinator's view of the ledger participant.
type Bank interface {
	Clients(ctx context.Context) (map[string]bankdomain.Client, error)
	InitiateTransfer(ctx context.Context, clientID string, amount float64) error
	IsReady(ctx context.Context) (bool, error)
	Confirm(ctx context.Context) error
	Rollback(ctx context.Context) error
}
