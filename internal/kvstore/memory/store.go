// Package memory provides an in-memory implementation of kvstore.Store
// intended for tests and local development. It mirrors the single-writer
// discipline of the SQLite store: only one transaction is open at a time,
// and writes are staged until Commit.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jcmexdev/bookstore-sagas/internal/kvstore"
)

// Store is the in-memory implementation of kvstore.Store.
type Store struct {
	mu    sync.Mutex
	dicts map[string]map[string][]byte
}

var _ kvstore.Store = (*Store)(nil)

func New() *Store {
	return &Store{dicts: make(map[string]map[string][]byte)}
}

func (s *Store) Close() error { return nil }

// Begin opens a transaction. The store lock is held until Commit or
// Rollback, serialising transactions the same way the SQLite store's
// single writer connection does.
func (s *Store) Begin(ctx context.Context) (kvstore.Tx, error) {
	s.mu.Lock()
	return &memTx{
		store:   s,
		cleared: make(map[string]bool),
		writes:  make(map[string]map[string][]byte),
	}, nil
}

type memTx struct {
	store   *Store
	cleared map[string]bool
	writes  map[string]map[string][]byte
	done    bool
}

func (t *memTx) Get(ctx context.Context, dict, key string) ([]byte, bool, error) {
	if staged, ok := t.writes[dict][key]; ok {
		return append([]byte(nil), staged...), true, nil
	}
	if t.cleared[dict] {
		return nil, false, nil
	}
	v, ok := t.store.dicts[dict][key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (t *memTx) Set(ctx context.Context, dict, key string, value []byte) error {
	if t.writes[dict] == nil {
		t.writes[dict] = make(map[string][]byte)
	}
	t.writes[dict][key] = append([]byte(nil), value...)
	return nil
}

func (t *memTx) Enumerate(ctx context.Context, dict string) ([]kvstore.Entry, error) {
	merged := make(map[string][]byte)
	if !t.cleared[dict] {
		for k, v := range t.store.dicts[dict] {
			merged[k] = v
		}
	}
	for k, v := range t.writes[dict] {
		merged[k] = v
	}

	entries := make([]kvstore.Entry, 0, len(merged))
	for k, v := range merged {
		entries = append(entries, kvstore.Entry{Key: k, Value: append([]byte(nil), v...)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

func (t *memTx) Clear(ctx context.Context, dict string) error {
	t.cleared[dict] = true
	delete(t.writes, dict)
	return nil
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.done {
		return nil
	}
	for dict := range t.cleared {
		delete(t.store.dicts, dict)
	}
	for dict, staged := range t.writes {
		if t.store.dicts[dict] == nil {
			t.store.dicts[dict] = make(map[string][]byte)
		}
		for k, v := range staged {
			t.store.dicts[dict][k] = v
		}
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}
