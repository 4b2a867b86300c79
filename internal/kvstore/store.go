// Package kvstore defines the local transactional store consumed by each
// participant service.
//
// Every participant owns its own store instance: a set of named maps of
// string keys to opaque values, mutated only inside a caller-opened
// transaction. A commit is atomic and durable for that one participant;
// there is no cross-store transaction support — coordinating changes that
// span two stores is exactly the coordinator's job.
package kvstore

import "context"

// Entry is one key/value pair yielded by Tx.Enumerate.
type Entry struct {
	Key   string
	Value []byte
}

// Tx is a single local transaction over the store's named maps.
// All reads within a transaction see a consistent snapshot; writes become
// visible to other transactions only after Commit.
type Tx interface {
	// Get returns the value stored under (dict, key). The second return
	// value is false when the key is absent.
	Get(ctx context.Context, dict, key string) ([]byte, bool, error)

	// Set stores value under (dict, key), overwriting any previous value.
	Set(ctx context.Context, dict, key string, value []byte) error

	// Enumerate returns every entry of the named map, ordered by key.
	Enumerate(ctx context.Context, dict string) ([]Entry, error)

	// Clear removes every entry of the named map.
	Clear(ctx context.Context, dict string) error

	// Commit makes all writes of this transaction durable atomically.
	Commit(ctx context.Context) error

	// Rollback discards the transaction. Safe to defer after Begin;
	// calling it after a successful Commit is a no-op.
	Rollback() error
}

// Store is the per-participant transactional key-value layer.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
	Close() error
}
