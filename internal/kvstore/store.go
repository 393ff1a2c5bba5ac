// Package kvstore abstracts the persistence medium behind a minimal
// key-value interface so the record store can run against a durable backend
// in production and an in-memory fake in tests.
package kvstore

import "context"

// Store is the persistence contract. Semantics:
//   - Get returns common.ErrNotFound when the key is absent.
//   - Set overwrites unconditionally (last write wins).
//   - Remove of an absent key is not an error.
//   - Keys lists every key currently present, in no particular order.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}
