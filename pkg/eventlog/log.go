// Package eventlog provides capacity-bounded, append-only in-memory event
// logs with FIFO eviction. The dashboard keeps one log per event kind
// (pipeline frames, agent events); when a log is full the oldest entries
// are dropped so the retained window is always the most recent N appends.
package eventlog

import "sync"

// Default capacities for the two dashboard logs. Capacity is fixed at
// construction time and never changes for the life of a Log.
const (
	DefaultFrameCapacity      = 1000
	DefaultAgentEventCapacity = 500
)

// Log is a bounded FIFO event log backed by a ring buffer.
//
// Append is O(1): once the buffer is full, each new entry overwrites the
// oldest one. All reads return copies so callers can never observe a
// partially updated buffer or mutate retained entries in place.
//
// A single mutex guards all operations. The feed loop appends from its own
// goroutine while HTTP and WebSocket handlers read concurrently.
type Log[T any] struct {
	mu       sync.RWMutex
	buf      []T
	head     int // index of the oldest entry
	size     int
	capacity int
	version  uint64 // incremented on every mutation, usable as a memoization key
}

// New creates a Log with the given capacity. A non-positive capacity
// yields a log that retains nothing (every append is immediately evicted).
func New[T any](capacity int) *Log[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Log[T]{
		buf:      make([]T, capacity),
		capacity: capacity,
	}
}

// Append adds an entry at the tail, evicting the oldest entry if the log
// is at capacity.
func (l *Log[T]) Append(entry T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.version++
	if l.capacity == 0 {
		return
	}
	if l.size < l.capacity {
		l.buf[(l.head+l.size)%l.capacity] = entry
		l.size++
		return
	}
	// Full: overwrite the head slot and advance.
	l.buf[l.head] = entry
	l.head = (l.head + 1) % l.capacity
}

// All returns the retained entries oldest-first. The result is a copy.
func (l *Log[T]) All() []T {
	entries, _ := l.Snapshot()
	return entries
}

// Snapshot returns the retained entries oldest-first together with the
// log's version counter. Two snapshots with equal versions are identical,
// so (version) can key memoized derived views.
func (l *Log[T]) Snapshot() ([]T, uint64) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]T, l.size)
	for i := 0; i < l.size; i++ {
		entries[i] = l.buf[(l.head+i)%l.capacity]
	}
	return entries, l.version
}

// Len returns the number of retained entries.
func (l *Log[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.size
}

// Capacity returns the fixed construction-time capacity.
func (l *Log[T]) Capacity() int {
	return l.capacity
}

// Clear empties the log. Capacity is unchanged.
func (l *Log[T]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.version++
	// Zero retained slots so evicted entries don't pin memory.
	var zero T
	for i := 0; i < l.size; i++ {
		l.buf[(l.head+i)%l.capacity] = zero
	}
	l.head = 0
	l.size = 0
}
