// Package feed exposes executions and book updates to websocket subscribers.
package feed

import (
	"context"
	"sync"

	marketv1 "github.com/wcravens/shift-main-sub001/internal/domain/market/v1"
)

// Event is one record pushed to a subscriber.
type Event struct {
	Type      string               `json:"type"` // "execution" or "book"
	Execution *marketv1.Execution  `json:"execution,omitempty"`
	Book      *marketv1.BookUpdate `json:"book,omitempty"`
}

// Subscription receives the events of the symbols it asked for. Slow
// subscribers drop events rather than stall the matching goroutines.
type Subscription struct {
	symbols map[string]struct{} // empty means all symbols
	ch      chan Event
}

// C returns the subscription's event channel.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

func (s *Subscription) wants(symbol string) bool {
	if len(s.symbols) == 0 {
		return true
	}
	_, ok := s.symbols[symbol]
	return ok
}

// Hub fans events out to subscriptions. It implements emitter.Sink.
type Hub struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a subscription for the given symbols; no symbols means
// every symbol.
func (h *Hub) Subscribe(buffer int, symbols ...string) *Subscription {
	sub := &Subscription{
		symbols: make(map[string]struct{}, len(symbols)),
		ch:      make(chan Event, buffer),
	}
	for _, symbol := range symbols {
		sub.symbols[symbol] = struct{}{}
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscription and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	_, ok := h.subs[sub]
	delete(h.subs, sub)
	h.mu.Unlock()
	if ok {
		close(sub.ch)
	}
}

func (h *Hub) broadcast(symbol string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		if !sub.wants(symbol) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
		}
	}
}

// OnExecution broadcasts one execution to its symbol's subscribers.
func (h *Hub) OnExecution(_ context.Context, execution *marketv1.Execution) error {
	h.broadcast(execution.Symbol, Event{Type: "execution", Execution: execution})
	return nil
}

// OnBookUpdate broadcasts one book delta to its symbol's subscribers.
func (h *Hub) OnBookUpdate(_ context.Context, update *marketv1.BookUpdate) error {
	h.broadcast(update.Symbol, Event{Type: "book", Book: update})
	return nil
}
