package domain

import (
	"context"
	"sync"
)

// TrackQueue is a FIFO of resolved tracks shared by concurrent producers
// (command handlers) and a single consumer (the room scheduler). Producers
// only append and the consumer only removes from the front; interleaving
// happens at whole-track granularity.
type TrackQueue struct {
	mu     sync.Mutex
	items  []*Track
	notify chan struct{}
}

// NewTrackQueue creates an empty TrackQueue.
func NewTrackQueue() *TrackQueue {
	return &TrackQueue{
		notify: make(chan struct{}, 1),
	}
}

// Append adds tracks to the back of the queue and wakes a blocked consumer.
func (q *TrackQueue) Append(tracks ...*Track) {
	if len(tracks) == 0 {
		return
	}
	q.mu.Lock()
	q.items = append(q.items, tracks...)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Next blocks until a track is available or the context is done.
func (q *TrackQueue) Next(ctx context.Context) (*Track, error) {
	for {
		if t, ok := q.TryNext(); ok {
			return t, nil
		}
		select {
		case <-q.notify:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// TryNext removes and returns the front track without blocking.
func (q *TrackQueue) TryNext() (*Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}
	t := q.items[0]
	q.items = q.items[1:]
	return t, true
}

// Drain removes all pending tracks and returns how many were removed.
func (q *TrackQueue) Drain() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.items)
	q.items = nil
	return n
}

// Len returns the number of pending tracks.
func (q *TrackQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Snapshot returns a copy of the pending tracks in play order.
func (q *TrackQueue) Snapshot() []*Track {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*Track, len(q.items))
	copy(out, q.items)
	return out
}
