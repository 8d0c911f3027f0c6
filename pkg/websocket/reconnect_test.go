package websocket

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReconnect_SucceedsAfterFailures(t *testing.T) {
	rm := NewReconnectManager(ReconnectConfig{
		InitialDelay:      time.Millisecond,
		MaxDelay:          5 * time.Millisecond,
		BackoffMultiplier: 2,
	}, zap.NewNop())

	calls := 0
	err := rm.Reconnect(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, rm.Attempts())
	assert.Equal(t, time.Millisecond, rm.currentBackoff, "backoff resets after success")
}

func TestReconnect_BackoffCapped(t *testing.T) {
	rm := NewReconnectManager(ReconnectConfig{
		InitialDelay:      10 * time.Millisecond,
		MaxDelay:          30 * time.Millisecond,
		BackoffMultiplier: 2,
	}, zap.NewNop())

	rm.incrementBackoff()
	assert.Equal(t, 20*time.Millisecond, rm.currentBackoff)
	rm.incrementBackoff()
	assert.Equal(t, 30*time.Millisecond, rm.currentBackoff)
	rm.incrementBackoff()
	assert.Equal(t, 30*time.Millisecond, rm.currentBackoff)
}

func TestReconnect_JitterBounds(t *testing.T) {
	rm := NewReconnectManager(ReconnectConfig{
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      time.Second,
		JitterPercent: 0.2,
	}, zap.NewNop())

	for i := 0; i < 100; i++ {
		b := rm.nextBackoff()
		assert.GreaterOrEqual(t, b, 100*time.Millisecond)
		assert.LessOrEqual(t, b, 120*time.Millisecond)
	}
}

func TestReconnect_MaxAttempts(t *testing.T) {
	rm := NewReconnectManager(ReconnectConfig{
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
		MaxAttempts:  2,
	}, zap.NewNop())

	err := rm.Reconnect(context.Background(), func(context.Context) error {
		return errors.New("refused")
	})

	assert.ErrorIs(t, err, ErrMaxAttempts)
	assert.Equal(t, 2, rm.Attempts())
}

func TestReconnect_ContextCancelled(t *testing.T) {
	rm := NewReconnectManager(ReconnectConfig{
		InitialDelay: time.Hour,
		MaxDelay:     time.Hour,
	}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := rm.Reconnect(ctx, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, rm.Attempts())
}
