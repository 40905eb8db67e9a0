package orderbookv1

import (
	"fmt"

	"github.com/shopspring/decimal"
	marketv1 "github.com/wcravens/shift-main-sub001/internal/domain/market/v1"
)

// PriceLevel holds the FIFO queue of resting orders at one price, together
// with the running aggregate of their quantities.
//
// A PriceLevel is touched exclusively by its instrument's matching goroutine,
// so it carries no lock. Orders are addressed by index; removal keeps the
// indexes of the remaining orders valid.
type PriceLevel struct {
	Price  decimal.Decimal   `json:"price"`
	Volume int64             `json:"volume"`
	Orders []*marketv1.Order `json:"orders"`
}

// NewPriceLevel creates an empty level at the given price.
func NewPriceLevel(price decimal.Decimal) *PriceLevel {
	return &PriceLevel{
		Price:  price,
		Orders: make([]*marketv1.Order, 0, 4),
	}
}

// Append places an order at the back of the FIFO queue.
func (l *PriceLevel) Append(order *marketv1.Order) {
	l.Orders = append(l.Orders, order)
	l.Volume += order.Quantity
}

// Reduce decrements the quantity of the order at index i and the level
// aggregate by size. Reducing below zero reports ErrBookCorrupted.
func (l *PriceLevel) Reduce(i int, size int64) error {
	order := l.Orders[i]
	if size > order.Quantity || size > l.Volume {
		return fmt.Errorf("%w: level %s order %s reduce %d", marketv1.ErrBookCorrupted, l.Price, order.ID, size)
	}
	order.Quantity -= size
	l.Volume -= size
	return nil
}

// RemoveAt deletes the order at index i, preserving FIFO order of the rest.
// The caller must have zeroed the order's quantity first.
func (l *PriceLevel) RemoveAt(i int) {
	l.Orders = append(l.Orders[:i], l.Orders[i+1:]...)
}

// Empty reports whether the level holds no orders.
func (l *PriceLevel) Empty() bool {
	return len(l.Orders) == 0
}

// OrderCount returns the number of resting orders at this level.
func (l *PriceLevel) OrderCount() int {
	return len(l.Orders)
}

// Validate checks the aggregate-equals-sum invariant.
func (l *PriceLevel) Validate() error {
	var sum int64
	for _, order := range l.Orders {
		if order.Quantity < 0 {
			return fmt.Errorf("%w: order %s has quantity %d", marketv1.ErrBookCorrupted, order.ID, order.Quantity)
		}
		sum += order.Quantity
	}
	if sum != l.Volume {
		return fmt.Errorf("%w: level %s volume %d, order sum %d", marketv1.ErrBookCorrupted, l.Price, l.Volume, sum)
	}
	return nil
}
