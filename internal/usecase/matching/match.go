package matching

import (
	"github.com/shopspring/decimal"
	marketv1 "github.com/wcravens/shift-main-sub001/internal/domain/market/v1"
	orderbookv1 "github.com/wcravens/shift-main-sub001/internal/domain/orderbook/v1"
)

// cursor addresses one resting order on a local side during a matching walk.
// It stays valid across in-place removals: erasing the order or level it
// points at leaves it pointing at the next one.
type cursor struct {
	level int
	idx   int
}

// candidate advances cur to the first resting order not owned by traderID,
// reporting false once the side is exhausted. Each self-owned order is
// skipped over once per matching walk and counted.
func (e *Engine) candidate(side *orderbookv1.LocalSide, cur *cursor, traderID string) bool {
	for cur.level < side.Len() {
		level := side.Level(cur.level)
		if cur.idx >= level.OrderCount() {
			cur.level++
			cur.idx = 0
			continue
		}
		if traderID != "" && level.Orders[cur.idx].TraderID == traderID {
			e.selfTradeSkips++
			cur.idx++
			continue
		}
		return true
	}
	return false
}

// improves reports whether, from the incoming order's perspective, price a is
// a strictly better counterparty price than b.
func improves(incoming *marketv1.Order, a, b decimal.Decimal) bool {
	if incoming.IsBuy() {
		return a.LessThan(b)
	}
	return a.GreaterThan(b)
}

// match consumes opposite-side liquidity for a limit or market order,
// comparing the best available local and global prices each step. The lower
// ask (or higher bid) wins; a tie stays local.
func (e *Engine) match(res *Result, incoming *marketv1.Order) error {
	var (
		local  *orderbookv1.LocalSide
		global *orderbookv1.GlobalSide
		tag    marketv1.BookSide
		gtag   marketv1.BookSide
	)
	if incoming.IsBuy() {
		local, global = e.book.LocalAsk, e.book.GlobalAsk
		tag, gtag = marketv1.BookLocalAsk, marketv1.BookGlobalAsk
	} else {
		local, global = e.book.LocalBid, e.book.GlobalBid
		tag, gtag = marketv1.BookLocalBid, marketv1.BookGlobalBid
	}

	var cur cursor
	for incoming.Quantity > 0 {
		haveLocal := e.candidate(local, &cur, incoming.TraderID)
		g := global.Best()
		if !haveLocal && g == nil {
			break
		}

		useLocal := haveLocal
		if haveLocal && g != nil && improves(incoming, g.Price, local.Level(cur.level).Price) {
			useLocal = false
		}

		var bestPrice decimal.Decimal
		if useLocal {
			bestPrice = local.Level(cur.level).Price
		} else {
			bestPrice = g.Price
		}
		if incoming.Type == marketv1.TypeLimit && improves(incoming, incoming.Price, bestPrice) {
			// the best available price is worse than the limit
			break
		}

		if useLocal {
			if err := e.fillLocal(res, local, tag, &cur, incoming, marketv1.VenueLocal); err != nil {
				return err
			}
		} else {
			e.fillGlobal(res, global, gtag, incoming)
		}
	}
	return nil
}

// fillLocal executes the incoming order against the resting order under cur
// for min(restingQty, incomingQty), removing the resting order and its level
// once drained.
func (e *Engine) fillLocal(res *Result, side *orderbookv1.LocalSide, tag marketv1.BookSide, cur *cursor, incoming *marketv1.Order, destination string) error {
	level := side.Level(cur.level)
	resting := level.Orders[cur.idx]

	size := resting.Quantity
	if incoming.Quantity < size {
		size = incoming.Quantity
	}

	res.Executions = append(res.Executions, &marketv1.Execution{
		Symbol:           e.book.Symbol,
		Price:            level.Price,
		Size:             size,
		RestingTraderID:  resting.TraderID,
		IncomingTraderID: incoming.TraderID,
		RestingType:      resting.Type,
		IncomingType:     incoming.Type,
		RestingOrderID:   resting.ID,
		IncomingOrderID:  incoming.ID,
		Decision:         marketv1.DecisionTrade,
		Destination:      destination,
		ExecutedAt:       e.clock.Now(),
		RestingAt:        resting.EnqueueAt,
		IncomingAt:       incoming.EnqueueAt,
	})

	if err := level.Reduce(cur.idx, size); err != nil {
		return err
	}
	incoming.Quantity -= size

	e.bookUpdate(res, tag, level.Price, level.Volume, marketv1.VenueLocal)

	if resting.IsFilled() {
		level.RemoveAt(cur.idx)
		if level.Empty() {
			side.RemoveLevelAt(cur.level)
			cur.idx = 0
		}
	}
	return nil
}

// fillGlobal executes the incoming order against the best global entry.
func (e *Engine) fillGlobal(res *Result, side *orderbookv1.GlobalSide, tag marketv1.BookSide, incoming *marketv1.Order) {
	g := side.Best()

	size := g.Quantity
	if incoming.Quantity < size {
		size = incoming.Quantity
	}
	remaining := g.Quantity - size

	restingType := marketv1.TypeGlobalAsk
	if !incoming.IsBuy() {
		restingType = marketv1.TypeGlobalBid
	}

	res.Executions = append(res.Executions, &marketv1.Execution{
		Symbol:           e.book.Symbol,
		Price:            g.Price,
		Size:             size,
		IncomingTraderID: incoming.TraderID,
		RestingType:      restingType,
		IncomingType:     incoming.Type,
		IncomingOrderID:  incoming.ID,
		Decision:         marketv1.DecisionTrade,
		Destination:      g.Destination,
		ExecutedAt:       e.clock.Now(),
		RestingAt:        g.QuotedAt,
		IncomingAt:       incoming.EnqueueAt,
	})

	side.ReduceBest(size)
	incoming.Quantity -= size

	e.bookUpdate(res, tag, g.Price, remaining, g.Destination)
}

// rest inserts an unfilled limit remainder on its own side of the local book.
func (e *Engine) rest(res *Result, incoming *marketv1.Order) {
	var (
		side *orderbookv1.LocalSide
		tag  marketv1.BookSide
	)
	if incoming.IsBuy() {
		side, tag = e.book.LocalBid, marketv1.BookLocalBid
	} else {
		side, tag = e.book.LocalAsk, marketv1.BookLocalAsk
	}
	level := side.Insert(incoming)
	e.bookUpdate(res, tag, level.Price, level.Volume, marketv1.VenueLocal)
}

// cancel reduces or removes the resting order named by the cancel request.
// Partial cancels leave the order resting with its priority intact.
func (e *Engine) cancel(res *Result, side *orderbookv1.LocalSide, tag marketv1.BookSide, req *marketv1.Order) error {
	li, ok := side.FindPrice(req.Price)
	if !ok {
		return marketv1.ErrCancelNotFound
	}
	level := side.Level(li)

	for i, resting := range level.Orders {
		if resting.ID != req.ID {
			continue
		}

		size := resting.Quantity
		if req.Quantity < size {
			size = req.Quantity
		}

		res.Executions = append(res.Executions, &marketv1.Execution{
			Symbol:           e.book.Symbol,
			Price:            level.Price,
			Size:             size,
			RestingTraderID:  resting.TraderID,
			IncomingTraderID: req.TraderID,
			RestingType:      resting.Type,
			IncomingType:     req.Type,
			RestingOrderID:   resting.ID,
			IncomingOrderID:  req.ID,
			Decision:         marketv1.DecisionCancel,
			Destination:      marketv1.VenueLocal,
			ExecutedAt:       e.clock.Now(),
			RestingAt:        resting.EnqueueAt,
			IncomingAt:       req.EnqueueAt,
		})

		if err := level.Reduce(i, size); err != nil {
			return err
		}
		req.Quantity -= size

		e.bookUpdate(res, tag, level.Price, level.Volume, marketv1.VenueLocal)

		if resting.IsFilled() {
			level.RemoveAt(i)
			if level.Empty() {
				side.RemoveLevelAt(li)
			}
		}
		return nil
	}
	return marketv1.ErrCancelNotFound
}
