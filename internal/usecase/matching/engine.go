// Package matching implements the per-instrument matching algorithm: limit,
// market and cancel semantics over local and global liquidity under
// price-time priority.
package matching

import (
	"fmt"

	"github.com/shopspring/decimal"
	marketv1 "github.com/wcravens/shift-main-sub001/internal/domain/market/v1"
	orderbookv1 "github.com/wcravens/shift-main-sub001/internal/domain/orderbook/v1"
	"github.com/wcravens/shift-main-sub001/pkg/logger"
	"github.com/wcravens/shift-main-sub001/pkg/simclock"
)

// Result collects everything one sequenced item produced: zero or more
// executions and the book deltas they caused, in production order.
type Result struct {
	Executions  []*marketv1.Execution
	BookUpdates []*marketv1.BookUpdate
}

type quoteKey struct {
	side marketv1.Side
	dest string
}

// Engine executes sequenced quotes against one instrument's book. It must
// only ever be driven by that instrument's own goroutine; the book it
// mutates is unsynchronized by design.
type Engine struct {
	book   *orderbookv1.Book
	clock  *simclock.Clock
	logger *logger.Logger

	// last quote seen per (side, venue), for feed deduplication
	lastGlobal map[quoteKey]*marketv1.Order

	selfTradeSkips  int64
	globalEvictions int64
}

// NewEngine creates an engine bound to one instrument's book.
func NewEngine(book *orderbookv1.Book, clock *simclock.Clock, log *logger.Logger) *Engine {
	return &Engine{
		book:       book,
		clock:      clock,
		logger:     log,
		lastGlobal: make(map[quoteKey]*marketv1.Order),
	}
}

// Book returns the book this engine operates on.
func (e *Engine) Book() *orderbookv1.Book {
	return e.book
}

// SelfTradeSkips returns how many price-eligible resting orders were skipped
// because they shared the incoming order's trader.
func (e *Engine) SelfTradeSkips() int64 {
	return e.selfTradeSkips
}

// GlobalEvictions returns how many stale global entries were evicted by
// quote updates.
func (e *Engine) GlobalEvictions() int64 {
	return e.globalEvictions
}

// Process consumes one sequenced quote, mutating the book and producing the
// resulting executions and book updates. A returned ErrCancelNotFound leaves
// the book untouched; an ErrBookCorrupted means the instrument must halt.
func (e *Engine) Process(order *marketv1.Order) (*Result, error) {
	res := &Result{}

	var err error
	switch order.Type {
	case marketv1.TypeLimit:
		if err = e.match(res, order); err == nil && order.Quantity > 0 {
			// price-time priority: the remainder joins the back of its level
			e.rest(res, order)
		}
	case marketv1.TypeMarket:
		// an unfilled market remainder walks away, it is never rested
		err = e.match(res, order)
	case marketv1.TypeCancelBid:
		err = e.cancel(res, e.book.LocalBid, marketv1.BookLocalBid, order)
	case marketv1.TypeCancelAsk:
		err = e.cancel(res, e.book.LocalAsk, marketv1.BookLocalAsk, order)
	case marketv1.TypeGlobalBid, marketv1.TypeGlobalAsk:
		err = e.globalQuote(res, order)
	case marketv1.TypeGlobalTrade:
		err = e.globalTrade(res, order)
	default:
		err = fmt.Errorf("unsupported order type %q", order.Type)
	}

	return res, err
}

func (e *Engine) bookUpdate(res *Result, tag marketv1.BookSide, price decimal.Decimal, quantity int64, destination string) {
	res.BookUpdates = append(res.BookUpdates, &marketv1.BookUpdate{
		Side:        tag,
		Symbol:      e.book.Symbol,
		Price:       price,
		Quantity:    quantity,
		Destination: destination,
		UpdatedAt:   e.clock.Now(),
	})
}
