package exchange

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	marketv1 "github.com/wcravens/shift-main-sub001/internal/domain/market/v1"
)

// SubmitOrder accepts a client limit or market order and returns its assigned
// order ID. The order is queued for the instrument's matching goroutine; all
// matching outcomes are reported asynchronously through the emitter.
func (x *Exchange) SubmitOrder(traderID, symbol string, side marketv1.Side, orderType marketv1.OrderType, price decimal.Decimal, quantity int64) (string, error) {
	ins, ok := x.instruments[symbol]
	if !ok {
		return "", fmt.Errorf("%w: %s", marketv1.ErrUnknownSymbol, symbol)
	}
	if quantity <= 0 {
		return "", fmt.Errorf("%w: got %d", marketv1.ErrInvalidQuantity, quantity)
	}
	if orderType != marketv1.TypeLimit && orderType != marketv1.TypeMarket {
		return "", fmt.Errorf("unsupported order type %q", orderType)
	}

	orderID := ulid.Make().String()
	ins.seq.PushLocal(&marketv1.Order{
		ID:          orderID,
		TraderID:    traderID,
		Symbol:      symbol,
		Side:        side,
		Type:        orderType,
		Price:       price,
		Quantity:    quantity,
		Destination: marketv1.VenueLocal,
		EnqueueAt:   x.clock.Now(),
		ReceivedAt:  time.Now(),
	})
	return orderID, nil
}

// CancelOrder requests a full or partial cancellation of a resting order.
// A cancel that matches nothing surfaces as a REJECT execution to the
// submitting session.
func (x *Exchange) CancelOrder(orderID, symbol string, side marketv1.Side, price decimal.Decimal, quantity int64) error {
	ins, ok := x.instruments[symbol]
	if !ok {
		return fmt.Errorf("%w: %s", marketv1.ErrUnknownSymbol, symbol)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: got %d", marketv1.ErrInvalidQuantity, quantity)
	}

	cancelType := marketv1.TypeCancelAsk
	if side == marketv1.SideBuy {
		cancelType = marketv1.TypeCancelBid
	}

	ins.seq.PushLocal(&marketv1.Order{
		ID:          orderID,
		Symbol:      symbol,
		Side:        side,
		Type:        cancelType,
		Price:       price,
		Quantity:    quantity,
		Destination: marketv1.VenueLocal,
		EnqueueAt:   x.clock.Now(),
		ReceivedAt:  time.Now(),
	})
	return nil
}

// ApplyExternalQuote feeds one external venue's bid or ask update into the
// instrument's global queue. A zero quantity pulls the venue's entry.
func (x *Exchange) ApplyExternalQuote(destination, symbol string, side marketv1.Side, price decimal.Decimal, quantity int64) error {
	ins, ok := x.instruments[symbol]
	if !ok {
		return fmt.Errorf("%w: %s", marketv1.ErrUnknownSymbol, symbol)
	}
	if quantity < 0 {
		return fmt.Errorf("%w: got %d", marketv1.ErrInvalidQuantity, quantity)
	}

	quoteType := marketv1.TypeGlobalAsk
	if side == marketv1.SideBuy {
		quoteType = marketv1.TypeGlobalBid
	}

	ins.seq.PushGlobal(&marketv1.Order{
		Symbol:      symbol,
		Side:        side,
		Type:        quoteType,
		Price:       price,
		Quantity:    quantity,
		Destination: destination,
		EnqueueAt:   x.clock.Now(),
		ReceivedAt:  time.Now(),
	})
	return nil
}

// ApplyExternalTrade feeds an external trade report into the instrument's
// global queue for reconciliation against local resting interest.
func (x *Exchange) ApplyExternalTrade(symbol string, price decimal.Decimal, quantity int64, at time.Time) error {
	ins, ok := x.instruments[symbol]
	if !ok {
		return fmt.Errorf("%w: %s", marketv1.ErrUnknownSymbol, symbol)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: got %d", marketv1.ErrInvalidQuantity, quantity)
	}

	ins.seq.PushGlobal(&marketv1.Order{
		Symbol:      symbol,
		Type:        marketv1.TypeGlobalTrade,
		Price:       price,
		Quantity:    quantity,
		Destination: marketv1.VenueExternal,
		EnqueueAt:   at,
		ReceivedAt:  time.Now(),
	})
	return nil
}
