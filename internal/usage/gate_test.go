package usage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanGenerateUnderLimit(t *testing.T) {
	gate := NewGate(NewMemoryCounterStore(), 5)

	ok, err := gate.CanGenerate(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanGenerateRequiresSession(t *testing.T) {
	gate := NewGate(NewMemoryCounterStore(), 5)

	_, err := gate.CanGenerate(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestDefaultLimit(t *testing.T) {
	gate := NewGate(NewMemoryCounterStore(), 0)
	assert.Equal(t, 5, gate.Limit())
}

func TestGateAndGenerateCapsInvocations(t *testing.T) {
	ctx := context.Background()
	gate := NewGate(NewMemoryCounterStore(), 5)

	invocations := 0
	promptShown := 0
	op := func(context.Context) (string, error) {
		invocations++
		return "minutes", nil
	}
	onDeny := func() { promptShown++ }

	for i := 0; i < 5; i++ {
		result, ok, err := GateAndGenerate(ctx, gate, "sess-1", onDeny, op)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "minutes", result)
	}

	// The sixth call must not reach the operation and must trigger the
	// upgrade prompt.
	result, ok, err := GateAndGenerate(ctx, gate, "sess-1", onDeny, op)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, result)
	assert.Equal(t, 5, invocations)
	assert.Equal(t, 1, promptShown)
}

func TestGateAndGenerateFailureDoesNotCharge(t *testing.T) {
	ctx := context.Background()
	gate := NewGate(NewMemoryCounterStore(), 5)

	invocations := 0
	failingOnce := func(context.Context) (string, error) {
		invocations++
		if invocations == 3 {
			return "", errors.New("summarizer unavailable")
		}
		return "minutes", nil
	}

	successes := 0
	for i := 0; i < 6; i++ {
		_, ok, err := GateAndGenerate(ctx, gate, "sess-1", nil, failingOnce)
		if err != nil {
			continue
		}
		if ok {
			successes++
		}
	}

	// One failure among the first attempts leaves room for a sixth call:
	// all 6 invocations reach the operation, 5 succeed and are charged.
	assert.Equal(t, 6, invocations)
	assert.Equal(t, 5, successes)

	used, err := gate.store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 5, used)
}

func TestGateAndGenerateSessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	gate := NewGate(NewMemoryCounterStore(), 1)

	op := func(context.Context) (int, error) { return 1, nil }

	_, ok, err := GateAndGenerate(ctx, gate, "sess-a", nil, op)
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = GateAndGenerate(ctx, gate, "sess-a", nil, op)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = GateAndGenerate(ctx, gate, "sess-b", nil, op)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRemaining(t *testing.T) {
	ctx := context.Background()
	gate := NewGate(NewMemoryCounterStore(), 3)

	remaining, err := gate.Remaining(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 3, remaining)

	require.NoError(t, gate.Increment(ctx, "sess-1"))
	require.NoError(t, gate.Increment(ctx, "sess-1"))

	remaining, err = gate.Remaining(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
}
