package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomfrenzel/authkit-login/internal/kv"
	"github.com/tomfrenzel/authkit-login/internal/session"
)

// stateStore keeps the anti-forgery token of the login attempt in progress.
// Only one attempt is tracked at a time; a new login overwrites the previous token.
type stateStore struct {
	store kv.Store
}

func (s stateStore) save(ctx context.Context, state string) error {
	if err := s.store.Set(ctx, session.StateKey, state); err != nil {
		return fmt.Errorf("save state token: %w", err)
	}
	return nil
}

// load returns the stored token, or "" when none is stored.
func (s stateStore) load(ctx context.Context) (string, error) {
	value, err := s.store.Get(ctx, session.StateKey)
	if errors.Is(err, kv.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load state token: %w", err)
	}
	return value, nil
}

func (s stateStore) discard(ctx context.Context) error {
	if err := s.store.Delete(ctx, session.StateKey); err != nil {
		return fmt.Errorf("discard state token: %w", err)
	}
	return nil
}
