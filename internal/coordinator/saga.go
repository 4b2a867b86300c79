// Package coordinator drives a purchase across the bookstore and bank
// participants. The purchase is a saga with compensation, not two-phase
// commit: each participant commits locally on its own, and a failure at any
// point triggers a best-effort rollback of both sides.
package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jcmexdev/bookstore-sagas/internal/coordinator/sagalog"
)

// ErrNotReady reports that a readiness check failed: some reservation would
// exhaust its book's stock or its client's balance. Distinguished from a
// not-found failure so callers can tell "insufficient" from "nonexistent".
var ErrNotReady = errors.New("participants not ready")

// Step names recorded in the saga log.
const (
	stepReserveStock = "reserve_stock"
	stepReserveFunds = "reserve_funds"
	stepValidate     = "validate_participants"
	stepConfirm      = "confirm_participants"
	stepCompensate   = "rollback_participants"
)

// PurchaseRequest is the input to one saga run. It carries no identity of
// its own; the saga id is assigned by the caller per run.
type PurchaseRequest struct {
	Title    string `json:"title"`
	Quantity uint32 `json:"quantity"`
	Customer string `json:"customer"`
}

// Coordinator sequences one purchase across both participants. It owns no
// persistent business state; the saga log is an audit trail, not a vote.
type Coordinator struct {
	bookstore Bookstore
	bank      Bank
	sagaLog   sagalog.Repository // nil-safe: transitions are not persisted if nil
}

func New(bookstore Bookstore, bank Bank, sagaLog sagalog.Repository) *Coordinator {
	return &Coordinator{
		bookstore: bookstore,
		bank:      bank,
		sagaLog:   sagaLog,
	}
}

// ProcessPurchase runs the full protocol: resolve the book and customer,
// reserve on both participants, validate both readiness signals, then
// confirm both or roll back both. Any failure after the resolve phase
// triggers compensation on both participants before the error is returned,
// wrapped as a single transaction failure.
func (c *Coordinator) ProcessPurchase(ctx context.Context, sagaID string, req PurchaseRequest) error {
	c.logTransition(ctx, sagaID, sagalog.StatusStarted, "", payloadJSON(req), nil)

	books, err := c.bookstore.AvailableBooks(ctx)
	if err != nil {
		c.logTransition(ctx, sagaID, sagalog.StatusFailed, "", "", []string{err.Error()})
		return fmt.Errorf("purchase transaction failed: %w", err)
	}

	// Titles match case-insensitively; the same policy applies to customer
	// names below. No match leaves the id empty, and the next lookup turns
	// that into a not-found failure instead of silently correcting it.
	bookID := ""
	for id, book := range books {
		if strings.EqualFold(book.Title, req.Title) {
			bookID = id
			break
		}
	}

	if err := c.run(ctx, sagaID, bookID, req); err != nil {
		c.compensate(ctx, sagaID, err)
		c.logTransition(ctx, sagaID, sagalog.StatusFailed, "", "", []string{err.Error()})
		return fmt.Errorf("purchase transaction failed: %w", err)
	}

	c.logTransition(ctx, sagaID, sagalog.StatusCompleted, "", "", nil)
	return nil
}

func (c *Coordinator) run(ctx context.Context, sagaID, bookID string, req PurchaseRequest) error {
	price, err := c.bookstore.BookPrice(ctx, bookID)
	if err != nil {
		return err
	}

	clients, err := c.bank.Clients(ctx)
	if err != nil {
		return err
	}

	clientID := ""
	for id, client := range clients {
		if strings.EqualFold(client.Name, req.Customer) {
			clientID = id
			break
		}
	}

	amount := float64(req.Quantity) * price
	slog.InfoContext(ctx, "purchase resolved",
		"saga_id", sagaID, "book_id", bookID, "client_id", clientID, "amount", amount)

	if err := c.bookstore.RecordPurchase(ctx, bookID, req.Quantity); err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}
	c.logTransition(ctx, sagaID, sagalog.StatusStepDone, stepReserveStock, "", nil)

	if err := c.bank.InitiateTransfer(ctx, clientID, amount); err != nil {
		return fmt.Errorf("reserve funds: %w", err)
	}
	c.logTransition(ctx, sagaID, sagalog.StatusStepDone, stepReserveFunds, "", nil)

	// Both readiness checks run unconditionally so each participant's signal
	// is observed even when the other has already failed.
	bookstoreReady, bookErr := c.bookstore.IsReady(ctx)
	bankReady, bankErr := c.bank.IsReady(ctx)
	if bookErr != nil {
		return fmt.Errorf("bookstore readiness: %w", bookErr)
	}
	if bankErr != nil {
		return fmt.Errorf("bank readiness: %w", bankErr)
	}
	c.logTransition(ctx, sagaID, sagalog.StatusStepDone, stepValidate, "", nil)

	if !bookstoreReady || !bankReady {
		return fmt.Errorf("bookstore ready=%t, bank ready=%t: %w", bookstoreReady, bankReady, ErrNotReady)
	}

	// The two confirms are independent local commits. A crash between them
	// leaves a partially applied purchase; the participants' startup
	// bootstrap clears the dangling reservation rather than replaying it.
	if err := c.bookstore.Confirm(ctx); err != nil {
		return fmt.Errorf("confirm stock: %w", err)
	}
	if err := c.bank.Confirm(ctx); err != nil {
		return fmt.Errorf("confirm funds: %w", err)
	}
	c.logTransition(ctx, sagaID, sagalog.StatusStepDone, stepConfirm, "", nil)

	return nil
}

// compensate attempts rollback on both participants, always both, even if
// the first fails. Rollback errors are logged only so they never mask the
// cause of the compensation.
func (c *Coordinator) compensate(ctx context.Context, sagaID string, cause error) {
	c.logTransition(ctx, sagaID, sagalog.StatusCompensating, stepCompensate, "", []string{cause.Error()})

	if err := c.bookstore.Rollback(ctx); err != nil {
		slog.ErrorContext(ctx, "bookstore rollback failed", "saga_id", sagaID, "error", err)
	}
	if err := c.bank.Rollback(ctx); err != nil {
		slog.ErrorContext(ctx, "bank rollback failed", "saga_id", sagaID, "error", err)
	}
}

func (c *Coordinator) logTransition(ctx context.Context, sagaID string, status sagalog.Status, step, payload string, errs []string) {
	if c.sagaLog == nil {
		return
	}
	entry := sagalog.NewEntry(ctx, sagaID, status, step, payload, errs)
	if err := c.sagaLog.Save(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to persist saga log entry",
			"saga_id", sagaID, "status", status, "error", err)
	}
}

func payloadJSON(req PurchaseRequest) string {
	b, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	return string(b)
}
