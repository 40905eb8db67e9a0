package matching

import (
	marketv1 "github.com/wcravens/shift-main-sub001/internal/domain/market/v1"
	orderbookv1 "github.com/wcravens/shift-main-sub001/internal/domain/orderbook/v1"
	"github.com/wcravens/shift-main-sub001/pkg/logger"
)

// crossLocal runs an externally-sourced quote or trade as a synthetic limit
// order against the local book only. buy selects which local side it
// consumes. The external side carries no trader ID, so self-trade skipping
// never applies to it.
func (e *Engine) crossLocal(res *Result, incoming *marketv1.Order, buy bool) error {
	var (
		side *orderbookv1.LocalSide
		tag  marketv1.BookSide
	)
	if buy {
		side, tag = e.book.LocalAsk, marketv1.BookLocalAsk
	} else {
		side, tag = e.book.LocalBid, marketv1.BookLocalBid
	}

	var cur cursor
	for incoming.Quantity > 0 {
		if !e.candidate(side, &cur, incoming.TraderID) {
			break
		}
		level := side.Level(cur.level)
		if buy {
			if level.Price.GreaterThan(incoming.Price) {
				break
			}
		} else if level.Price.LessThan(incoming.Price) {
			break
		}
		if err := e.fillLocal(res, side, tag, &cur, incoming, incoming.Destination); err != nil {
			return err
		}
	}
	return nil
}

// globalQuote applies one external bid or ask update: deduplicate against the
// venue's previous quote, execute any crossed local resting interest, then
// upsert the remainder into the global side, evicting entries the update has
// priced through.
func (e *Engine) globalQuote(res *Result, order *marketv1.Order) error {
	key := quoteKey{side: order.Side, dest: order.Destination}
	if order.SameQuote(e.lastGlobal[key]) {
		// feeds repeat their top of book; identical consecutive quotes are no-ops
		return nil
	}
	// keep a copy: crossing the local book mutates the order's quantity
	snapshot := *order
	e.lastGlobal[key] = &snapshot

	inboundQty := order.Quantity
	if inboundQty > 0 {
		if err := e.crossLocal(res, order, order.IsBuy()); err != nil {
			return err
		}
	}

	// a quote fully consumed by local interest never rests; an explicit
	// zero-quantity update still goes through to pull the venue's entry
	if order.Quantity == 0 && inboundQty != 0 {
		return nil
	}

	var (
		side *orderbookv1.GlobalSide
		tag  marketv1.BookSide
	)
	if order.IsBuy() {
		side, tag = e.book.GlobalBid, marketv1.BookGlobalBid
	} else {
		side, tag = e.book.GlobalAsk, marketv1.BookGlobalAsk
	}

	evicted := side.Upsert(&orderbookv1.GlobalQuote{
		Price:       order.Price,
		Quantity:    order.Quantity,
		Destination: order.Destination,
		QuotedAt:    order.EnqueueAt,
	})
	e.bookUpdate(res, tag, order.Price, order.Quantity, order.Destination)

	for _, stale := range evicted {
		e.globalEvictions++
		e.bookUpdate(res, tag, stale.Price, 0, stale.Destination)
	}
	if len(evicted) > 0 {
		e.logger.Debug("evicted stale global quotes", logger.Field{
			Key:   "symbol",
			Value: e.book.Symbol,
		}, logger.Field{
			Key:   "count",
			Value: len(evicted),
		})
	}
	return nil
}

// globalTrade reconciles an external trade report: local resting interest at
// an equal-or-better price executes against it on both sides, and whatever
// the local book did not absorb is reported once as the external print. The
// remainder is never rested; that liquidity was consumed on the other venue.
func (e *Engine) globalTrade(res *Result, order *marketv1.Order) error {
	if err := e.crossLocal(res, order, true); err != nil {
		return err
	}
	if err := e.crossLocal(res, order, false); err != nil {
		return err
	}

	if order.Quantity > 0 {
		now := e.clock.Now()
		res.Executions = append(res.Executions, &marketv1.Execution{
			Symbol:       e.book.Symbol,
			Price:        order.Price,
			Size:         order.Quantity,
			RestingType:  marketv1.TypeLimit,
			IncomingType: marketv1.TypeLimit,
			Decision:     marketv1.DecisionTrade,
			Destination:  order.Destination,
			ExecutedAt:   now,
			RestingAt:    order.EnqueueAt,
			IncomingAt:   order.EnqueueAt,
		})
		order.Quantity = 0
	}
	return nil
}
