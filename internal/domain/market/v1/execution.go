package marketv1

import (
	"time"

	"github.com/shopspring/decimal"
)

// Decision classifies the event an Execution records.
type Decision string

const (
	// DecisionTrade records a fill between two counterparties.
	DecisionTrade Decision = "trade"
	// DecisionCancel records a full or partial cancellation of a resting order.
	DecisionCancel Decision = "cancel"
	// DecisionReject records a cancellation request that matched nothing.
	DecisionReject Decision = "reject"
)

// Execution is the immutable record of one fill, cancellation or rejection.
// It is created once by the matching algorithm and never re-read by it.
type Execution struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	Size   int64           `json:"size"`

	RestingTraderID  string    `json:"restingTraderID"`
	IncomingTraderID string    `json:"incomingTraderID"`
	RestingType      OrderType `json:"restingType"`
	IncomingType     OrderType `json:"incomingType"`
	RestingOrderID   string    `json:"restingOrderID"`
	IncomingOrderID  string    `json:"incomingOrderID"`

	Decision    Decision `json:"decision"`
	Destination string   `json:"destination"`

	ExecutedAt time.Time `json:"executedAt"` // simulated session time
	RestingAt  time.Time `json:"restingAt"`  // resting order enqueue time
	IncomingAt time.Time `json:"incomingAt"` // incoming order enqueue time
}

// BookSide tags which of the four book sides a BookUpdate refers to.
type BookSide string

const (
	// BookLocalAsk is the locally-placed ask side.
	BookLocalAsk BookSide = "local_ask"
	// BookLocalBid is the locally-placed bid side.
	BookLocalBid BookSide = "local_bid"
	// BookGlobalAsk is the externally-sourced ask side.
	BookGlobalAsk BookSide = "global_ask"
	// BookGlobalBid is the externally-sourced bid side.
	BookGlobalBid BookSide = "global_bid"
)

// BookUpdate is emitted whenever a price level's aggregate quantity changes
// or the level is created or removed. A zero Quantity means the level (or,
// for global sides, the venue's entry) is gone.
type BookUpdate struct {
	Side        BookSide        `json:"side"`
	Symbol      string          `json:"symbol"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	Destination string          `json:"destination"`
	UpdatedAt   time.Time       `json:"updatedAt"` // simulated session time
}
