package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomfrenzel/authkit-login/internal/kv"
	"github.com/tomfrenzel/authkit-login/internal/session"
)

type lockState string

const (
	lockAbsent  lockState = ""
	lockPending lockState = "pending"
	lockDone    lockState = "done"
)

// replayLocks tracks which authorization codes have been sent to the backend.
type replayLocks struct {
	store kv.Store
}

func lockKey(code string) string {
	return session.LockPrefix + code
}

func (l replayLocks) get(ctx context.Context, code string) (lockState, error) {
	value, err := l.store.Get(ctx, lockKey(code))
	if errors.Is(err, kv.ErrNotFound) {
		return lockAbsent, nil
	}
	if err != nil {
		return lockAbsent, fmt.Errorf("read replay lock: %w", err)
	}
	switch lockState(value) {
	case lockPending, lockDone:
		return lockState(value), nil
	default:
		return lockAbsent, nil
	}
}

func (l replayLocks) set(ctx context.Context, code string, state lockState) error {
	if err := l.store.Set(ctx, lockKey(code), string(state)); err != nil {
		return fmt.Errorf("set replay lock: %w", err)
	}
	return nil
}

func (l replayLocks) release(ctx context.Context, code string) error {
	if err := l.store.Delete(ctx, lockKey(code)); err != nil {
		return fmt.Errorf("release replay lock: %w", err)
	}
	return nil
}
