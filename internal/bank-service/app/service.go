// Package app implements the ledger side of the purchase saga. It mirrors
// the bookstore participant: the same transaction contract over accounts and
// pending debits instead of books and pending quantities.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jcmexdev/bookstore-sagas/internal/bank-service/domain"
	"github.com/jcmexdev/bookstore-sagas/internal/kvstore"
)

const (
	clientsDict       = "clients"
	reservedMoneyDict = "reserved_money"
)

// Service owns the bank's two maps: client accounts and the pending debits
// reserved against them.
type Service struct {
	store kvstore.Store
}

func NewService(store kvstore.Store) *Service {
	return &Service{store: store}
}

// Bootstrap seeds the accounts when the store is empty and discards any
// pending debit left behind by a crash mid-saga, same recovery stance as the
// bookstore: always favour rollback over a stale confirm.
func (s *Service) Bootstrap(ctx context.Context) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	clients, err := tx.Enumerate(ctx, clientsDict)
	if err != nil {
		return err
	}

	if len(clients) == 0 {
		seed := map[string]domain.Client{
			"client1": {Name: "Luka", Balance: 2000},
			"client2": {Name: "Vuk", Balance: 1000},
			"client3": {Name: "Dijana", Balance: 3000},
		}
		for id, client := range seed {
			if err := setClient(ctx, tx, id, client); err != nil {
				return err
			}
		}
		slog.InfoContext(ctx, "seeded client accounts", "clients", len(seed))
	}

	if err := tx.Clear(ctx, reservedMoneyDict); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Clients returns every account, keyed by client id.
func (s *Service) Clients(ctx context.Context) (map[string]domain.Client, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	entries, err := tx.Enumerate(ctx, clientsDict)
	if err != nil {
		return nil, err
	}

	clients := make(map[string]domain.Client, len(entries))
	for _, e := range entries {
		var client domain.Client
		if err := json.Unmarshal(e.Value, &client); err != nil {
			return nil, fmt.Errorf("decode client %q: %w", e.Key, err)
		}
		clients[e.Key] = client
	}
	return clients, nil
}

// InitiateTransfer is the reserve operation: it adds amount to the pending
// debit for clientID (creating the entry if absent) and commits. The account
// balance is untouched until Confirm.
func (s *Service) InitiateTransfer(ctx context.Context, clientID string, amount float64) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	reserved, err := getReserved(ctx, tx, clientID)
	if err != nil {
		return err
	}

	if err := setReserved(ctx, tx, clientID, reserved+amount); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// IsReady re-reads the account for every pending debit and reports whether
// all of them are still covered. A debit equal to or above the current
// balance fails the check. Read-only.
func (s *Service) IsReady(ctx context.Context) (bool, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	reservations, err := tx.Enumerate(ctx, reservedMoneyDict)
	if err != nil {
		return false, err
	}

	for _, r := range reservations {
		client, err := getClient(ctx, tx, r.Key)
		if err != nil {
			return false, err
		}
		reserved, err := decodeReserved(r.Value)
		if err != nil {
			return false, err
		}
		if reserved >= client.Balance {
			return false, nil
		}
	}
	return true, nil
}

// Confirm applies every pending debit to its account and clears the
// reservations map, all in one local commit. A no-op when nothing is
// reserved.
func (s *Service) Confirm(ctx context.Context) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	reservations, err := tx.Enumerate(ctx, reservedMoneyDict)
	if err != nil {
		return err
	}

	for _, r := range reservations {
		client, err := getClient(ctx, tx, r.Key)
		if err != nil {
			return err
		}
		reserved, err := decodeReserved(r.Value)
		if err != nil {
			return err
		}

		client.Balance -= reserved
		slog.InfoContext(ctx, "debit applied", "client", client.Name, "balance", client.Balance)

		if err := setClient(ctx, tx, r.Key, client); err != nil {
			return err
		}
	}

	if err := tx.Clear(ctx, reservedMoneyDict); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Rollback discards every pending debit without touching account balances.
// Best-effort: a local failure is logged, never propagated.
func (s *Service) Rollback(ctx context.Context) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "bank rollback failed", "error", err)
		return nil
	}
	defer tx.Rollback()

	if err := tx.Clear(ctx, reservedMoneyDict); err != nil {
		slog.ErrorContext(ctx, "bank rollback failed", "error", err)
		return nil
	}
	if err := tx.Commit(ctx); err != nil {
		slog.ErrorContext(ctx, "bank rollback failed", "error", err)
	}
	return nil
}

func getClient(ctx context.Context, tx kvstore.Tx, clientID string) (domain.Client, error) {
	value, ok, err := tx.Get(ctx, clientsDict, clientID)
	if err != nil {
		return domain.Client{}, err
	}
	if !ok {
		return domain.Client{}, fmt.Errorf("client %q: %w", clientID, domain.ErrClientNotFound)
	}

	var client domain.Client
	if err := json.Unmarshal(value, &client); err != nil {
		return domain.Client{}, fmt.Errorf("decode client %q: %w", clientID, err)
	}
	return client, nil
}

func setClient(ctx context.Context, tx kvstore.Tx, clientID string, client domain.Client) error {
	value, err := json.Marshal(client)
	if err != nil {
		return fmt.Errorf("encode client %q: %w", clientID, err)
	}
	return tx.Set(ctx, clientsDict, clientID, value)
}

func getReserved(ctx context.Context, tx kvstore.Tx, clientID string) (float64, error) {
	value, ok, err := tx.Get(ctx, reservedMoneyDict, clientID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return decodeReserved(value)
}

func setReserved(ctx context.Context, tx kvstore.Tx, clientID string, amount float64) error {
	return tx.Set(ctx, reservedMoneyDict, clientID, []byte(strconv.FormatFloat(amount, 'g', -1, 64)))
}

func decodeReserved(value []byte) (float64, error) {
	f, err := strconv.ParseFloat(string(value), 64)
	if err != nil {
		return 0, fmt.Errorf("decode reserved amount: %w", err)
	}
	return f, nil
}
