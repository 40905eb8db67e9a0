package orderbookv1

import (
	"github.com/shopspring/decimal"
	marketv1 "github.com/wcravens/shift-main-sub001/internal/domain/market/v1"
)

// LocalSide is one ordered side of the local book: a price-sorted sequence of
// levels, best price first (descending for bids, ascending for asks).
type LocalSide struct {
	bids   bool
	levels []*PriceLevel
}

// NewLocalSide creates an empty side. bids selects descending price order.
func NewLocalSide(bids bool) *LocalSide {
	return &LocalSide{bids: bids}
}

// Len returns the number of non-empty price levels.
func (s *LocalSide) Len() int {
	return len(s.levels)
}

// Level returns the level at position i, best first.
func (s *LocalSide) Level(i int) *PriceLevel {
	return s.levels[i]
}

// Best returns the best-priced level, or nil if the side is empty.
func (s *LocalSide) Best() *PriceLevel {
	if len(s.levels) == 0 {
		return nil
	}
	return s.levels[0]
}

// better reports whether price a has strictly higher priority than b on this side.
func (s *LocalSide) better(a, b decimal.Decimal) bool {
	if s.bids {
		return a.GreaterThan(b)
	}
	return a.LessThan(b)
}

// Insert places an order at the back of its price level's FIFO queue,
// creating the level in sorted position if absent, and returns the level.
func (s *LocalSide) Insert(order *marketv1.Order) *PriceLevel {
	i := 0
	for ; i < len(s.levels); i++ {
		if s.levels[i].Price.Equal(order.Price) {
			s.levels[i].Append(order)
			return s.levels[i]
		}
		if s.better(order.Price, s.levels[i].Price) {
			break
		}
	}

	level := NewPriceLevel(order.Price)
	level.Append(order)
	s.levels = append(s.levels, nil)
	copy(s.levels[i+1:], s.levels[i:])
	s.levels[i] = level
	return level
}

// FindPrice returns the index of the level at exactly price.
func (s *LocalSide) FindPrice(price decimal.Decimal) (int, bool) {
	for i, level := range s.levels {
		if level.Price.Equal(price) {
			return i, true
		}
		if s.better(price, level.Price) {
			return 0, false
		}
	}
	return 0, false
}

// RemoveLevelAt deletes the level at index i. Indexes of deeper levels shift
// down by one, so a cursor holding i remains valid for the next level.
func (s *LocalSide) RemoveLevelAt(i int) {
	s.levels = append(s.levels[:i], s.levels[i+1:]...)
}

// Validate checks every level's aggregate invariant and that no empty level persists.
func (s *LocalSide) Validate() error {
	for _, level := range s.levels {
		if level.Empty() {
			return marketv1.ErrBookCorrupted
		}
		if err := level.Validate(); err != nil {
			return err
		}
	}
	return nil
}
