// Package session owns the locally cached session record and the storage
// keys shared with the login flow.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tomfrenzel/authkit-login/internal/kv"
)

const (
	// RecordKey holds the serialized Record in the durable store.
	RecordKey = "workos_authkit_response"
	// StateKey holds the anti-forgery state token in the transient store.
	StateKey = "workos_oauth_state"
	// LockPrefix prefixes every replay lock key in the transient store.
	LockPrefix = "workos_callback_status_"
)

// Cache reads and writes the session record. Clear also resets the
// transient login state kept alongside it.
type Cache struct {
	durable   kv.Store
	transient kv.Store
	logger    *slog.Logger
}

// NewCache builds a Cache over the durable and transient stores.
func NewCache(durable, transient kv.Store, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{durable: durable, transient: transient, logger: logger}
}

// Read returns the cached record. ok is false when nothing usable is stored;
// a corrupt entry is deleted and reported as absent.
func (c *Cache) Read(ctx context.Context) (rec Record, ok bool, err error) {
	raw, err := c.durable.Get(ctx, RecordKey)
	if errors.Is(err, kv.ErrNotFound) || (err == nil && raw == "") {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("read session record: %w", err)
	}

	rec, err = decodeView([]byte(raw))
	if err != nil {
		c.logger.Warn("discarding corrupt session record", "error", err)
		if delErr := c.durable.Delete(ctx, RecordKey); delErr != nil {
			return Record{}, false, fmt.Errorf("delete corrupt session record: %w", delErr)
		}
		return Record{}, false, nil
	}
	return rec, true, nil
}

// Write stores rec, replacing any previous record.
func (c *Cache) Write(ctx context.Context, rec Record) error {
	if err := c.durable.Set(ctx, RecordKey, string(rec.Raw)); err != nil {
		return fmt.Errorf("write session record: %w", err)
	}
	return nil
}

// Clear removes the session record, the state token and every replay lock.
func (c *Cache) Clear(ctx context.Context) error {
	if err := c.durable.Delete(ctx, RecordKey); err != nil {
		return fmt.Errorf("clear session record: %w", err)
	}
	if err := c.transient.Delete(ctx, StateKey); err != nil {
		return fmt.Errorf("clear state token: %w", err)
	}

	keys, err := c.transient.KeysWithPrefix(ctx, LockPrefix)
	if err != nil {
		return fmt.Errorf("list replay locks: %w", err)
	}
	for _, key := range keys {
		if err := c.transient.Delete(ctx, key); err != nil {
			return fmt.Errorf("clear replay lock: %w", err)
		}
	}
	return nil
}
