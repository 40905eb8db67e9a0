package snapshotv1

import (
	"time"

	"github.com/shopspring/decimal"
	marketv1 "github.com/wcravens/shift-main-sub001/internal/domain/market/v1"
)

// BookOrder is one resting local order captured in a snapshot.
type BookOrder struct {
	OrderID   string          `json:"orderID"`
	TraderID  string          `json:"traderID"`
	Side      marketv1.Side   `json:"side"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	EnqueueAt time.Time       `json:"enqueueAt"`
}

// Snapshot captures the resting local book of one instrument. Global sides
// are not persisted; they are rebuilt from the external feed on restart.
type Snapshot struct {
	Symbol  string      `json:"symbol"`
	TakenAt time.Time   `json:"takenAt"`
	Orders  []BookOrder `json:"orders"`
}
