package orderbookv1

import (
	"time"

	"github.com/shopspring/decimal"
)

// GlobalQuote is one external venue's resting interest at a price. At most
// one GlobalQuote exists per (price, destination) pair on a side.
type GlobalQuote struct {
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	Destination string          `json:"destination"`
	QuotedAt    time.Time       `json:"quotedAt"`
}

// GlobalSide is one side of the consolidated external book, best price first.
//
// An external update is a venue's report of its current market, so entries
// the update has priced through are stale: a new ask above older, cheaper
// asks means that liquidity was already consumed on the venue, and Upsert
// evicts it. This keeps the side monotonic without re-sorting.
type GlobalSide struct {
	bids   bool
	quotes []*GlobalQuote
}

// NewGlobalSide creates an empty global side. bids selects descending price order.
func NewGlobalSide(bids bool) *GlobalSide {
	return &GlobalSide{bids: bids}
}

// Len returns the number of resting venue entries.
func (s *GlobalSide) Len() int {
	return len(s.quotes)
}

// Quote returns the entry at position i, best first.
func (s *GlobalSide) Quote(i int) *GlobalQuote {
	return s.quotes[i]
}

// Best returns the best-priced entry, or nil if the side is empty.
func (s *GlobalSide) Best() *GlobalQuote {
	if len(s.quotes) == 0 {
		return nil
	}
	return s.quotes[0]
}

// better reports whether price a has strictly higher priority than b on this side.
func (s *GlobalSide) better(a, b decimal.Decimal) bool {
	if s.bids {
		return a.GreaterThan(b)
	}
	return a.LessThan(b)
}

// Upsert applies one external quote update and returns the entries it
// evicted. Eviction of priced-through entries runs on every update, a
// zero-quantity pull included, so a venue moving its market upward never
// leaves its old entry behind. An update at the same (price, destination)
// replaces the resting quantity; a quantity of zero removes it.
func (s *GlobalSide) Upsert(q *GlobalQuote) (evicted []*GlobalQuote) {
	i := 0
	for i < len(s.quotes) {
		entry := s.quotes[i]
		switch {
		case s.better(entry.Price, q.Price):
			// stale entry the venue's market has moved past
			evicted = append(evicted, entry)
			s.quotes = append(s.quotes[:i], s.quotes[i+1:]...)
		case entry.Price.Equal(q.Price):
			if entry.Destination == q.Destination {
				if q.Quantity == 0 {
					s.quotes = append(s.quotes[:i], s.quotes[i+1:]...)
					return evicted
				}
				entry.Quantity = q.Quantity
				entry.QuotedAt = q.QuotedAt
				return evicted
			}
			i++
		default:
			if q.Quantity == 0 {
				// pull of an absent entry, nothing left to do
				return evicted
			}
			// first worse-priced entry: insert before it
			s.quotes = append(s.quotes, nil)
			copy(s.quotes[i+1:], s.quotes[i:])
			s.quotes[i] = q
			return evicted
		}
	}

	if q.Quantity != 0 {
		s.quotes = append(s.quotes, q)
	}
	return evicted
}

// ReduceBest decrements the best entry by size, dropping it once exhausted.
func (s *GlobalSide) ReduceBest(size int64) {
	if len(s.quotes) == 0 {
		return
	}
	best := s.quotes[0]
	if size >= best.Quantity {
		best.Quantity = 0
		s.quotes = s.quotes[1:]
		return
	}
	best.Quantity -= size
}

// Crossed reports whether any two resting entries on this side are mutually
// out of order.
func (s *GlobalSide) Crossed() bool {
	for i := 1; i < len(s.quotes); i++ {
		if s.better(s.quotes[i].Price, s.quotes[i-1].Price) {
			return true
		}
	}
	return false
}
