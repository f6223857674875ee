package eventlog

import (
	"sync"
	"time"

	"garage_gateway/internal/models"

	"github.com/google/uuid"
)

// Capacity is the maximum number of retained events; the oldest entry is
// evicted once the log grows past it.
const Capacity = 200

// Log is a bounded, newest-first audit trail of state transitions and
// commands. Entries are never mutated after insertion.
type Log struct {
	mu     sync.Mutex
	events []models.Event
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{events: make([]models.Event, 0, Capacity)}
}

// Push prepends an event and evicts the oldest entry beyond Capacity.
func (l *Log) Push(kind string, data map[string]any) models.Event {
	evt := models.Event{
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Kind:       kind,
		Data:       data,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append([]models.Event{evt}, l.events...)
	if len(l.events) > Capacity {
		l.events = l.events[:Capacity]
	}
	return evt
}

// Recent returns the n most recent events, newest first. n is clamped to
// [1, Capacity].
func (l *Log) Recent(n int) []models.Event {
	if n < 1 {
		n = 1
	}
	if n > Capacity {
		n = Capacity
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if n > len(l.events) {
		n = len(l.events)
	}
	out := make([]models.Event, n)
	copy(out, l.events[:n])
	return out
}

// Len returns the current number of retained events.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// Clear empties the log (test support).
func (l *Log) Clear() {
	l.mu.Lock()
	l.events = l.events[:0]
	l.mu.Unlock()
}
