package registry

import (
	"context"
	"sync"
	"time"

	"discadian/pkg/platform/clock"
)

const (
	// DefaultCallLimit is the upstream per-minute ceiling.
	DefaultCallLimit = 180
	// DefaultPauseAt leaves headroom below DefaultCallLimit.
	DefaultPauseAt = 175
	// DefaultMinSpacing is the minimum gap between two outbound calls.
	DefaultMinSpacing = 333 * time.Millisecond
	// DefaultWindow is the accounting window for DefaultCallLimit.
	DefaultWindow = time.Minute
)

// WaitReason labels why a caller had to wait for the budget.
type WaitReason string

const (
	WaitWindow  WaitReason = "window"
	WaitSpacing WaitReason = "spacing"
)

// Budget paces outbound registry calls with a sliding window over the last
// minute plus a minimum spacing between consecutive calls. Callers wait
// outside the lock so a sleeping caller never blocks Count or Reset.
type Budget struct {
	mu         sync.Mutex
	timestamps []time.Time
	last       time.Time

	pauseAt    int
	window     time.Duration
	minSpacing time.Duration
	clock      clock.Clock
	onWait     func(WaitReason, time.Duration)
}

// BudgetOption configures a Budget.
type BudgetOption func(*Budget)

// WithPauseAt sets the number of calls in the window after which callers wait.
func WithPauseAt(n int) BudgetOption {
	return func(b *Budget) {
		if n > 0 {
			b.pauseAt = n
		}
	}
}

// WithWindow sets the accounting window.
func WithWindow(d time.Duration) BudgetOption {
	return func(b *Budget) {
		if d > 0 {
			b.window = d
		}
	}
}

// WithMinSpacing sets the minimum delay between calls. Zero disables spacing.
func WithMinSpacing(d time.Duration) BudgetOption {
	return func(b *Budget) {
		if d >= 0 {
			b.minSpacing = d
		}
	}
}

// WithBudgetClock replaces the clock used for time and sleeping.
func WithBudgetClock(c clock.Clock) BudgetOption {
	return func(b *Budget) {
		if c != nil {
			b.clock = c
		}
	}
}

// WithWaitHook registers a callback invoked before every wait.
func WithWaitHook(fn func(WaitReason, time.Duration)) BudgetOption {
	return func(b *Budget) {
		b.onWait = fn
	}
}

// NewBudget creates a Budget with the registry defaults.
func NewBudget(opts ...BudgetOption) *Budget {
	b := &Budget{
		timestamps: []time.Time{},
		pauseAt:    DefaultPauseAt,
		window:     DefaultWindow,
		minSpacing: DefaultMinSpacing,
		clock:      clock.New(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Wait blocks until one call may be made, then records it.
func (b *Budget) Wait(ctx context.Context) error {
	for {
		d, reason := b.reserve()
		if d <= 0 {
			return nil
		}
		if b.onWait != nil {
			b.onWait(reason, d)
		}
		if err := b.clock.Sleep(ctx, d); err != nil {
			return err
		}
	}
}

// reserve records a call and returns zero, or returns how long to wait.
func (b *Budget) reserve() (time.Duration, WaitReason) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.clock.Now()
	b.cleanup(now)

	if len(b.timestamps) >= b.pauseAt {
		return b.timestamps[0].Add(b.window).Sub(now), WaitWindow
	}
	if b.minSpacing > 0 && !b.last.IsZero() {
		if next := b.last.Add(b.minSpacing); next.After(now) {
			return next.Sub(now), WaitSpacing
		}
	}

	b.timestamps = append(b.timestamps, now)
	b.last = now
	return 0, ""
}

// Count returns the number of calls in the current window.
func (b *Budget) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cleanup(b.clock.Now())
	return len(b.timestamps)
}

// Reset forgets every recorded call.
func (b *Budget) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.timestamps = b.timestamps[:0]
	b.last = time.Time{}
}

// cleanup drops timestamps that left the window. Caller holds b.mu.
func (b *Budget) cleanup(now time.Time) {
	cutoff := now.Add(-b.window)
	i := 0
	for ; i < len(b.timestamps); i++ {
		if b.timestamps[i].After(cutoff) {
			break
		}
	}
	b.timestamps = b.timestamps[i:]
}
