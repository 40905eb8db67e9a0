// Package sequencer merges the two inbound quote paths of one instrument,
// locally-submitted orders and externally-sourced updates, into a single
// time-ordered stream for the matching algorithm.
package sequencer

import (
	"sync"
	"time"

	marketv1 "github.com/wcravens/shift-main-sub001/internal/domain/market/v1"
)

// queue is an unbounded FIFO guarded by a mutex. It is the only structure of
// an instrument mutated from outside its matching goroutine.
type queue struct {
	mu    sync.Mutex
	items []*marketv1.Order
}

func (q *queue) push(order *marketv1.Order) {
	q.mu.Lock()
	q.items = append(q.items, order)
	q.mu.Unlock()
}

// peekReady returns the head if its enqueue time is at or before simNow.
func (q *queue) peekReady(simNow time.Time) (*marketv1.Order, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	head := q.items[0]
	if head.EnqueueAt.After(simNow) {
		return nil, false
	}
	return head, true
}

func (q *queue) pop() {
	q.mu.Lock()
	if len(q.items) > 0 {
		q.items = q.items[1:]
	}
	q.mu.Unlock()
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Sequencer owns the local and global queues of one instrument.
type Sequencer struct {
	local  queue
	global queue
}

// New creates an empty Sequencer.
func New() *Sequencer {
	return &Sequencer{}
}

// PushLocal enqueues a client order or cancellation.
func (s *Sequencer) PushLocal(order *marketv1.Order) {
	s.local.push(order)
}

// PushGlobal enqueues an external quote or trade update.
func (s *Sequencer) PushGlobal(order *marketv1.Order) {
	s.global.push(order)
}

// NextReady dequeues the earliest-enqueued item whose timestamp is at or
// before simNow. When both heads are ready, the earlier wins and ties favor
// the local queue. It returns false when neither queue has a ready item; the
// caller is expected to wait and retry rather than busy-poll.
func (s *Sequencer) NextReady(simNow time.Time) (*marketv1.Order, bool) {
	globalHead, globalReady := s.global.peekReady(simNow)
	localHead, localReady := s.local.peekReady(simNow)

	switch {
	case localReady && globalReady:
		if globalHead.EnqueueAt.Before(localHead.EnqueueAt) {
			s.global.pop()
			return globalHead, true
		}
		s.local.pop()
		return localHead, true
	case localReady:
		s.local.pop()
		return localHead, true
	case globalReady:
		s.global.pop()
		return globalHead, true
	default:
		return nil, false
	}
}

// Depth reports the queued item counts, local then global.
func (s *Sequencer) Depth() (int, int) {
	return s.local.len(), s.global.len()
}
