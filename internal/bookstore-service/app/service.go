// Package app implements the inventory side of the purchase saga: the
// catalogue reads used by the coordinator plus the participant transaction
// contract (reserve, readiness check, confirm, compensating rollback).
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jcmexdev/bookstore-sagas/internal/bookstore-service/domain"
	"github.com/jcmexdev/bookstore-sagas/internal/kvstore"
)

const (
	booksDict         = "books"
	reservedBooksDict = "reserved_books"
)

// Service owns the bookstore's two maps: the book catalogue and the pending
// reservations recorded against it. All mutations go through the local
// transactional store, one commit per contract operation.
type Service struct {
	store kvstore.Store
}

func NewService(store kvstore.Store) *Service {
	return &Service{store: store}
}

// Bootstrap seeds the catalogue when the store is empty and discards any
// reservation left behind by a crash mid-saga. Clearing on startup favours
// rollback over a stale confirm: a reservation that never reached confirm
// is treated as abandoned.
func (s *Service) Bootstrap(ctx context.Context) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	books, err := tx.Enumerate(ctx, booksDict)
	if err != nil {
		return err
	}

	if len(books) == 0 {
		seed := map[string]domain.Book{
			"book1": {Title: "Most", Quantity: 100, Price: 100},
			"book2": {Title: "Frankenstajn", Quantity: 50, Price: 50},
			"book3": {Title: "Orkanski visovi", Quantity: 30, Price: 30},
		}
		for id, book := range seed {
			if err := setBook(ctx, tx, id, book); err != nil {
				return err
			}
		}
		slog.InfoContext(ctx, "seeded book catalogue", "books", len(seed))
	}

	if err := tx.Clear(ctx, reservedBooksDict); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// AvailableBooks returns the catalogue entries that still have stock.
func (s *Service) AvailableBooks(ctx context.Context) (map[string]domain.Book, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	entries, err := tx.Enumerate(ctx, booksDict)
	if err != nil {
		return nil, err
	}

	available := make(map[string]domain.Book)
	for _, e := range entries {
		var book domain.Book
		if err := json.Unmarshal(e.Value, &book); err != nil {
			return nil, fmt.Errorf("decode book %q: %w", e.Key, err)
		}
		if book.Quantity > 0 {
			available[e.Key] = book
		}
	}
	return available, nil
}

// BookPrice returns the unit price for a book id.
func (s *Service) BookPrice(ctx context.Context, bookID string) (float64, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	book, err := getBook(ctx, tx, bookID)
	if err != nil {
		return 0, err
	}
	return book.Price, nil
}

// RecordPurchase is the reserve operation: it adds count to the pending
// reservation for bookID (creating the entry if absent) and commits. The
// catalogue itself is untouched until Confirm.
func (s *Service) RecordPurchase(ctx context.Context, bookID string, count uint32) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	reserved, err := getReserved(ctx, tx, bookID)
	if err != nil {
		return err
	}

	if err := setReserved(ctx, tx, bookID, reserved+count); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// IsReady re-reads the catalogue for every outstanding reservation and
// reports whether all of them are still satisfiable. A reservation equal to
// or above the current stock fails the check. Read-only.
func (s *Service) IsReady(ctx context.Context) (bool, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	reservations, err := tx.Enumerate(ctx, reservedBooksDict)
	if err != nil {
		return false, err
	}

	for _, r := range reservations {
		book, err := getBook(ctx, tx, r.Key)
		if err != nil {
			return false, err
		}
		reserved, err := decodeReserved(r.Value)
		if err != nil {
			return false, err
		}
		if uint64(reserved) >= uint64(book.Quantity) {
			return false, nil
		}
	}
	return true, nil
}

// Confirm applies every outstanding reservation to the catalogue and clears
// the reservations map, all in one local commit. With the map already empty
// it is a no-op, which makes a repeated Confirm safe.
func (s *Service) Confirm(ctx context.Context) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	reservations, err := tx.Enumerate(ctx, reservedBooksDict)
	if err != nil {
		return err
	}

	for _, r := range reservations {
		book, err := getBook(ctx, tx, r.Key)
		if err != nil {
			return err
		}
		reserved, err := decodeReserved(r.Value)
		if err != nil {
			return err
		}

		// A reservation above the current stock would wrap the unsigned
		// quantity. The readiness check normally rejects it first, but
		// Confirm is callable on its own.
		if reserved > book.Quantity {
			return fmt.Errorf("book %q: reserved %d exceeds stock %d", r.Key, reserved, book.Quantity)
		}

		book.Quantity -= reserved
		if err := setBook(ctx, tx, r.Key, book); err != nil {
			return err
		}
	}

	if err := tx.Clear(ctx, reservedBooksDict); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Rollback discards every outstanding reservation without touching the
// catalogue. Best-effort: a local failure is logged, never propagated, so a
// failing rollback cannot mask the error that triggered the compensation.
func (s *Service) Rollback(ctx context.Context) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "bookstore rollback failed", "error", err)
		return nil
	}
	defer tx.Rollback()

	if err := tx.Clear(ctx, reservedBooksDict); err != nil {
		slog.ErrorContext(ctx, "bookstore rollback failed", "error", err)
		return nil
	}
	if err := tx.Commit(ctx); err != nil {
		slog.ErrorContext(ctx, "bookstore rollback failed", "error", err)
	}
	return nil
}

func getBook(ctx context.Context, tx kvstore.Tx, bookID string) (domain.Book, error) {
	value, ok, err := tx.Get(ctx, booksDict, bookID)
	if err != nil {
		return domain.Book{}, err
	}
	if !ok {
		return domain.Book{}, fmt.Errorf("book %q: %w", bookID, domain.ErrBookNotFound)
	}

	var book domain.Book
	if err := json.Unmarshal(value, &book); err != nil {
		return domain.Book{}, fmt.Errorf("decode book %q: %w", bookID, err)
	}
	return book, nil
}

func setBook(ctx context.Context, tx kvstore.Tx, bookID string, book domain.Book) error {
	value, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("encode book %q: %w", bookID, err)
	}
	return tx.Set(ctx, booksDict, bookID, value)
}

func getReserved(ctx context.Context, tx kvstore.Tx, bookID string) (uint32, error) {
	value, ok, err := tx.Get(ctx, reservedBooksDict, bookID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return decodeReserved(value)
}

func setReserved(ctx context.Context, tx kvstore.Tx, bookID string, count uint32) error {
	return tx.Set(ctx, reservedBooksDict, bookID, []byte(strconv.FormatUint(uint64(count), 10)))
}

func decodeReserved(value []byte) (uint32, error) {
	n, err := strconv.ParseUint(string(value), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("decode reserved quantity: %w", err)
	}
	return uint32(n), nil
}
