package report

import (
	"sync"
	"time"

	"discadian/pkg/platform/clock"
)

// breaker stops publishing to a failing broker for a cooldown after
// threshold consecutive failures.
type breaker struct {
	mu        sync.Mutex
	clock     clock.Clock
	threshold int
	cooldown  time.Duration
	failures  int
	openUntil time.Time
}

func newBreaker(c clock.Clock, threshold int, cooldown time.Duration) *breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &breaker{clock: c, threshold: threshold, cooldown: cooldown}
}

// allow reports whether a publish may be attempted. After the cooldown one
// attempt is let through (half-open).
func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures < b.threshold {
		return true
	}
	if b.clock.Now().Before(b.openUntil) {
		return false
	}
	b.failures = b.threshold - 1
	return true
}

func (b *breaker) success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
}

func (b *breaker) failure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.failures >= b.threshold {
		b.openUntil = b.clock.Now().Add(b.cooldown)
	}
}

func (b *breaker) open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures >= b.threshold && b.clock.Now().Before(b.openUntil)
}
