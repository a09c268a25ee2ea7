// Package kv defines the small key/value capability the login flow persists
// its state through. Two instances are used at runtime: a durable one for the
// session record and a process-scoped one for the state token and replay locks.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("kv: key not found")

// Store is a string key/value store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// KeysWithPrefix lists every key starting with prefix, in no particular order.
	KeysWithPrefix(ctx context.Context, prefix string) ([]string, error)
}
