package service

import (
	"sync"

	"github.com/parsivoice/pasban/internal/audit/domain"
)

// defaultRingCapacity bounds the ring when the configured capacity is invalid.
const defaultRingCapacity = 1000

// ringEventLog is a fixed-size ring buffer of security events. Writers
// overwrite the oldest slot once the ring is full; readers get copies so the
// ring is never mutated through a returned slice.
type ringEventLog struct {
	mu     sync.RWMutex
	events []domain.SecurityEvent
	next   int
	filled bool
	total  int64
	counts map[domain.EventType]int64
}

// Record appends an event, evicting the oldest when the ring is full.
func (r *ringEventLog) Record(event domain.SecurityEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[r.next] = event
	r.next++
	if r.next == len(r.events) {
		r.next = 0
		r.filled = true
	}
	r.total++
	r.counts[event.Type]++
}

// Recent returns up to limit events, newest first. A non-positive limit
// returns every event currently in the ring.
func (r *ringEventLog) Recent(limit int) []domain.SecurityEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	size := r.next
	if r.filled {
		size = len(r.events)
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]domain.SecurityEvent, 0, limit)
	for i := 1; i <= limit; i++ {
		// Walk backwards from the most recent write, wrapping at zero.
		idx := (r.next - i + len(r.events)) % len(r.events)
		out = append(out, r.events[idx])
	}
	return out
}

// CountsByType returns a copy of the per-type counters.
func (r *ringEventLog) CountsByType() map[domain.EventType]int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[domain.EventType]int64, len(r.counts))
	for eventType, count := range r.counts {
		out[eventType] = count
	}
	return out
}

// TotalRecorded returns the number of events recorded since startup.
func (r *ringEventLog) TotalRecorded() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.total
}

// Capacity returns the ring size.
func (r *ringEventLog) Capacity() int {
	return len(r.events)
}

// NewRingEventLog creates an EventLog holding the most recent capacity events.
func NewRingEventLog(capacity int) EventLog {
	if capacity <= 0 {
		capacity = defaultRingCapacity
	}
	return &ringEventLog{
		events: make([]domain.SecurityEvent, capacity),
		counts: make(map[domain.EventType]int64),
	}
}
