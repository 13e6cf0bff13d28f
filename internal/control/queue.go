// Package control merges edge-triggered control events from every source
// (GPIO lines, MQTT commands) into one queue drained by the run loop.
package control

import (
	"sync"

	"github.com/sweeney/stopwatch/internal/logic"
)

// Queue holds at most one pending event per kind. A second edge of a kind
// that is still pending is coalesced into the first, matching a single
// interrupt-pending flag per source. Pending kinds are drained in arrival
// order. Safe for concurrent use.
type Queue struct {
	mu        sync.Mutex
	pending   []logic.InputKind
	coalesced int
	ready     chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Post records one control event. It never blocks. Returns false if the
// event was coalesced into an identical pending one.
func (q *Queue) Post(kind logic.InputKind) bool {
	q.mu.Lock()
	for _, k := range q.pending {
		if k == kind {
			q.coalesced++
			q.mu.Unlock()
			return false
		}
	}
	q.pending = append(q.pending, kind)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return true
}

// Ready returns a channel that receives after Post adds a pending event.
// One receive may cover several events; call Drain after each receive.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}

// Drain returns the pending events in arrival order and clears them.
func (q *Queue) Drain() []logic.InputKind {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	out := q.pending
	q.pending = nil
	return out
}

// Coalesced returns how many events were merged into a pending one.
func (q *Queue) Coalesced() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.coalesced
}
