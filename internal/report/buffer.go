package report

import (
	"context"
	"sync"
)

const defaultBufferCapacity = 500

// Buffer keeps the most recent reports for the admin surface. When full the
// oldest report is dropped.
type Buffer struct {
	mu       sync.Mutex
	events   []Event
	head     int // next write position
	count    int
	capacity int
	dropped  int64
}

func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = defaultBufferCapacity
	}
	return &Buffer{
		events:   make([]Event, capacity),
		capacity: capacity,
	}
}

// Publish records e.
func (b *Buffer) Publish(_ context.Context, e Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == b.capacity {
		b.dropped++
	} else {
		b.count++
	}
	b.events[b.head] = e
	b.head = (b.head + 1) % b.capacity
	return nil
}

// Recent returns up to n reports, newest first. n <= 0 returns all.
func (b *Buffer) Recent(n int) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n <= 0 || n > b.count {
		n = b.count
	}
	out := make([]Event, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, b.events[(b.head-i+b.capacity)%b.capacity])
	}
	return out
}

// Len returns how many reports are held.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Dropped returns how many reports were overwritten.
func (b *Buffer) Dropped() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
