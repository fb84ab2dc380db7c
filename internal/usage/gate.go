package usage

import (
	"context"
	"errors"

	"easyminutes/internal/logger"
	"easyminutes/internal/metrics"
	"easyminutes/internal/plan"
)

var ErrNoSession = errors.New("session id required")

// CounterStore tracks per-session generation counts. The counter lives for
// the duration of the session only; nothing here resets it.
type CounterStore interface {
	Get(ctx context.Context, sessionID string) (int, error)
	Increment(ctx context.Context, sessionID string) (int, error)
}

// Gate enforces the free-tier generation cap for sessions that have no
// billing relationship yet.
type Gate struct {
	store CounterStore
	limit int
}

func NewGate(store CounterStore, limit int) *Gate {
	if limit <= 0 {
		limit = plan.DefaultSessionLimit
	}
	return &Gate{store: store, limit: limit}
}

func (g *Gate) Limit() int {
	return g.limit
}

func (g *Gate) CanGenerate(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, ErrNoSession
	}
	used, err := g.store.Get(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return used < g.limit, nil
}

// Increment charges one generation against the session. Callers invoke it
// only after the underlying operation succeeded, so failed generations stay
// free and retryable.
func (g *Gate) Increment(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrNoSession
	}
	_, err := g.store.Increment(ctx, sessionID)
	return err
}

func (g *Gate) Remaining(ctx context.Context, sessionID string) (int, error) {
	if sessionID == "" {
		return 0, ErrNoSession
	}
	used, err := g.store.Get(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	remaining := g.limit - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// GateAndGenerate runs op only while the session is under its cap. On denial
// it calls onDeny and returns ok=false with a zero result, without invoking
// op. The counter is incremented strictly after op succeeds.
func GateAndGenerate[T any](ctx context.Context, g *Gate, sessionID string, onDeny func(), op func(context.Context) (T, error)) (T, bool, error) {
	var zero T

	allowed, err := g.CanGenerate(ctx, sessionID)
	if err != nil {
		return zero, false, err
	}
	if !allowed {
		metrics.RecordSessionGateDenial()
		if onDeny != nil {
			onDeny()
		}
		return zero, false, nil
	}

	result, err := op(ctx)
	if err != nil {
		return zero, false, err
	}

	if err := g.Increment(ctx, sessionID); err != nil {
		// The generation already succeeded; do not fail the request
		// over a lost increment.
		logger.Errorf("usage gate: failed to increment session %s: %v", sessionID, err)
	}

	return result, true, nil
}
