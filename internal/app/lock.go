package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rummikub/internal/domain"
)

// withGameLock runs fn inside the per-game critical section.
//
// The lock is an advisory key in the store, written with set-if-absent and a
// short expiry so a crashed holder cannot block the game past the expiry
// window. Acquisition retries on a fixed delay up to a bounded attempt count;
// waiters carry no fairness guarantee. Release is compare-and-delete on the
// holder token, so a holder whose lock already expired never deletes a lock
// some other caller now owns.
func (s *Service) withGameLock(ctx context.Context, gameID string, fn func(ctx context.Context) error) error {
	key := lockKey(gameID)
	token := s.sessionID + ":" + uuid.NewString()

	acquired := false
	for attempt := 0; attempt < s.opts.LockMaxAttempts; attempt++ {
		ok, err := s.store.SetIfAbsent(ctx, key, token, s.opts.LockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire game lock: %w", err)
		}
		if ok {
			acquired = true
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.opts.LockRetryInterval):
		}
	}
	if !acquired {
		return domain.NewError(domain.ErrLockNotAcquired, fmt.Sprintf("could not acquire lock for game %s", gameID))
	}

	defer func() {
		released, err := s.store.CompareAndDelete(context.WithoutCancel(ctx), key, token)
		if err != nil {
			s.log.Warn("failed to release game lock", zap.String("game_id", gameID), zap.Error(err))
			return
		}
		if !released {
			// The lock expired mid-critical-section and may now belong to
			// another holder; deleting it here would be wrong.
			s.log.Warn("game lock expired before release", zap.String("game_id", gameID))
		}
	}()

	return fn(ctx)
}
