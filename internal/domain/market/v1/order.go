package marketv1

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side represents the direction of an order.
type Side string

const (
	// SideBuy represents a buy (bid) order.
	SideBuy Side = "buy"
	// SideSell represents a sell (ask) order.
	SideSell Side = "sell"
)

// OrderType represents the type of an inbound quote.
type OrderType string

const (
	// TypeLimit represents a limit order.
	TypeLimit OrderType = "limit"
	// TypeMarket represents a market order.
	TypeMarket OrderType = "market"
	// TypeCancelBid represents a cancellation targeting the local bid side.
	TypeCancelBid OrderType = "cancel_bid"
	// TypeCancelAsk represents a cancellation targeting the local ask side.
	TypeCancelAsk OrderType = "cancel_ask"
	// TypeGlobalBid represents a bid quote sourced from an external venue.
	TypeGlobalBid OrderType = "global_bid"
	// TypeGlobalAsk represents an ask quote sourced from an external venue.
	TypeGlobalAsk OrderType = "global_ask"
	// TypeGlobalTrade represents a trade report sourced from an external venue.
	TypeGlobalTrade OrderType = "global_trade"
)

// VenueLocal is the destination tag carried by orders placed directly on this
// exchange instance, as opposed to quotes sourced from a named external venue.
const VenueLocal = "local"

// VenueExternal is the destination tag for external trade reports whose
// originating venue is not identified by the data feed.
const VenueExternal = "external"

// Order represents a single quote flowing through the matching core.
//
// Orders are immutable except for Quantity, which the matching algorithm
// decrements in place as fills and cancellations occur. No other component
// may mutate an Order.
type Order struct {
	ID          string          `json:"id"`
	TraderID    string          `json:"traderID"`
	Symbol      string          `json:"symbol"`
	Side        Side            `json:"side"`
	Type        OrderType       `json:"type"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	Destination string          `json:"destination"`
	EnqueueAt   time.Time       `json:"enqueueAt"`  // simulated session time
	ReceivedAt  time.Time       `json:"receivedAt"` // wall-clock arrival time
}

// IsBuy checks if the order is a buy (bid) order.
func (o *Order) IsBuy() bool {
	return o.Side == SideBuy
}

// IsFilled checks if the order has no remaining quantity.
func (o *Order) IsFilled() bool {
	return o.Quantity <= 0
}

// SameQuote reports whether two external quotes are identical for
// deduplication purposes: same destination, price and quantity.
func (o *Order) SameQuote(other *Order) bool {
	if other == nil {
		return false
	}
	return o.Destination == other.Destination &&
		o.Quantity == other.Quantity &&
		o.Price.Equal(other.Price)
}
