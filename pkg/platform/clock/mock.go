package clock

import (
	"context"
	"sync"
	"time"
)

// MockClock is a manually driven Clock. Sleep advances the clock instead of
// blocking and records the requested duration. Tickers fire when the clock
// is moved past their next deadline.
type MockClock struct {
	mu      sync.Mutex
	current time.Time
	sleeps  []time.Duration
	tickers []*mockTicker
}

var _ Clock = (*MockClock)(nil)

// NewMock creates a MockClock set to t.
func NewMock(t time.Time) *MockClock {
	return &MockClock{current: t}
}

func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *MockClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	if d > 0 {
		c.moveTo(c.current.Add(d))
	}
	return nil
}

// Advance moves the clock forward by d.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.moveTo(c.current.Add(d))
}

// Set sets the clock to t.
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.moveTo(t)
}

// NewTicker returns a ticker driven by Advance, Set and Sleep. Like
// time.Ticker it holds at most one pending tick and drops the rest.
func (c *MockClock) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &mockTicker{
		clock:  c,
		period: d,
		next:   c.current.Add(d),
		ch:     make(chan time.Time, 1),
	}
	c.tickers = append(c.tickers, t)
	return t
}

// Tickers returns how many tickers are live.
func (c *MockClock) Tickers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

// moveTo must be called with c.mu held.
func (c *MockClock) moveTo(t time.Time) {
	c.current = t
	for _, tk := range c.tickers {
		if tk.next.After(t) {
			continue
		}
		select {
		case tk.ch <- t:
		default:
		}
		for !tk.next.After(t) {
			tk.next = tk.next.Add(tk.period)
		}
	}
}

type mockTicker struct {
	clock  *MockClock
	period time.Duration
	next   time.Time
	ch     chan time.Time
}

func (t *mockTicker) C() <-chan time.Time { return t.ch }

func (t *mockTicker) Stop() {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, tk := range c.tickers {
		if tk == t {
			c.tickers = append(c.tickers[:i], c.tickers[i+1:]...)
			return
		}
	}
}

// Sleeps returns every duration passed to Sleep so far.
func (c *MockClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.sleeps))
	copy(out, c.sleeps)
	return out
}
