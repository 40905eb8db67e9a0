package orderbookv1

import (
	"fmt"
	"time"

	marketv1 "github.com/wcravens/shift-main-sub001/internal/domain/market/v1"
	snapshotv1 "github.com/wcravens/shift-main-sub001/internal/domain/snapshot/v1"
)

// Book is the complete order book of one instrument: local bid and ask sides
// holding resting client orders, and global bid and ask sides holding the
// consolidated quotes of external venues.
//
// A Book is owned by exactly one instrument goroutine. Nothing downstream of
// the matching algorithm mutates it.
type Book struct {
	Symbol string

	LocalBid *LocalSide
	LocalAsk *LocalSide

	GlobalBid *GlobalSide
	GlobalAsk *GlobalSide
}

// NewBook creates an empty book for symbol.
func NewBook(symbol string) *Book {
	return &Book{
		Symbol:    symbol,
		LocalBid:  NewLocalSide(true),
		LocalAsk:  NewLocalSide(false),
		GlobalBid: NewGlobalSide(true),
		GlobalAsk: NewGlobalSide(false),
	}
}

// Snapshot captures all resting local orders for persistence.
func (b *Book) Snapshot(takenAt time.Time) *snapshotv1.Snapshot {
	var orders []snapshotv1.BookOrder
	for _, side := range []*LocalSide{b.LocalBid, b.LocalAsk} {
		for i := 0; i < side.Len(); i++ {
			level := side.Level(i)
			for _, order := range level.Orders {
				orders = append(orders, snapshotv1.BookOrder{
					OrderID:   order.ID,
					TraderID:  order.TraderID,
					Side:      order.Side,
					Price:     order.Price,
					Quantity:  order.Quantity,
					EnqueueAt: order.EnqueueAt,
				})
			}
		}
	}
	return &snapshotv1.Snapshot{
		Symbol:  b.Symbol,
		TakenAt: takenAt,
		Orders:  orders,
	}
}

// Restore rebuilds the local sides from a snapshot. The book must be empty.
func (b *Book) Restore(snapshot *snapshotv1.Snapshot) error {
	if snapshot == nil {
		return nil
	}
	for _, bookOrder := range snapshot.Orders {
		if bookOrder.Quantity <= 0 {
			return fmt.Errorf("restoring order %s: %w", bookOrder.OrderID, marketv1.ErrInvalidQuantity)
		}
		order := &marketv1.Order{
			ID:          bookOrder.OrderID,
			TraderID:    bookOrder.TraderID,
			Symbol:      b.Symbol,
			Side:        bookOrder.Side,
			Type:        marketv1.TypeLimit,
			Price:       bookOrder.Price,
			Quantity:    bookOrder.Quantity,
			Destination: marketv1.VenueLocal,
			EnqueueAt:   bookOrder.EnqueueAt,
		}
		if order.IsBuy() {
			b.LocalBid.Insert(order)
		} else {
			b.LocalAsk.Insert(order)
		}
	}
	return nil
}

// Validate checks the aggregate invariants of both local sides.
func (b *Book) Validate() error {
	if err := b.LocalBid.Validate(); err != nil {
		return err
	}
	return b.LocalAsk.Validate()
}
