package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discadian/pkg/platform/clock"
)

var epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestBudgetWindow(t *testing.T) {
	t.Run("more than pauseAt rapid calls forces a window pause", func(t *testing.T) {
		clk := clock.NewMock(epoch)
		var waits []WaitReason
		b := NewBudget(
			WithBudgetClock(clk),
			WithMinSpacing(0),
			WithWaitHook(func(r WaitReason, _ time.Duration) { waits = append(waits, r) }),
		)

		for range DefaultPauseAt + 1 {
			require.NoError(t, b.Wait(context.Background()))
		}

		require.NotEmpty(t, clk.Sleeps())
		assert.Contains(t, waits, WaitWindow)
		assert.Equal(t, epoch.Add(DefaultWindow), clk.Now())
	})

	t.Run("never exceeds the ceiling within any window", func(t *testing.T) {
		clk := clock.NewMock(epoch)
		b := NewBudget(WithBudgetClock(clk), WithMinSpacing(0))

		for range 400 {
			require.NoError(t, b.Wait(context.Background()))
			assert.LessOrEqual(t, b.Count(), DefaultCallLimit)
		}
	})

	t.Run("pauseAt calls do not wait", func(t *testing.T) {
		clk := clock.NewMock(epoch)
		b := NewBudget(WithBudgetClock(clk), WithMinSpacing(0))
		for range DefaultPauseAt {
			require.NoError(t, b.Wait(context.Background()))
		}
		assert.Empty(t, clk.Sleeps())
		assert.Equal(t, DefaultPauseAt, b.Count())
	})
}

func TestBudgetSpacing(t *testing.T) {
	clk := clock.NewMock(epoch)
	b := NewBudget(WithBudgetClock(clk))

	require.NoError(t, b.Wait(context.Background()))
	require.NoError(t, b.Wait(context.Background()))

	assert.Equal(t, []time.Duration{DefaultMinSpacing}, clk.Sleeps())
}

func TestBudgetCancellation(t *testing.T) {
	clk := clock.NewMock(epoch)
	b := NewBudget(WithBudgetClock(clk), WithPauseAt(1), WithMinSpacing(0))
	require.NoError(t, b.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, b.Wait(ctx), context.Canceled)
	assert.Equal(t, 1, b.Count())
}

func TestBudgetReset(t *testing.T) {
	clk := clock.NewMock(epoch)
	b := NewBudget(WithBudgetClock(clk), WithMinSpacing(0))
	for range 5 {
		require.NoError(t, b.Wait(context.Background()))
	}
	b.Reset()
	assert.Equal(t, 0, b.Count())
}
