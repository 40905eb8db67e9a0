package matching

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	marketv1 "github.com/wcravens/shift-main-sub001/internal/domain/market/v1"
	orderbookv1 "github.com/wcravens/shift-main-sub001/internal/domain/orderbook/v1"
	"github.com/wcravens/shift-main-sub001/pkg/logger"
	"github.com/wcravens/shift-main-sub001/pkg/simclock"
)

var sessionStart = time.Date(2018, 12, 17, 9, 30, 0, 0, time.UTC)

func newTestEngine() *Engine {
	book := orderbookv1.NewBook("AAPL")
	clock := simclock.NewAt(sessionStart, time.Now(), 1)
	return NewEngine(book, clock, logger.NewNop())
}

func createOrder(orderID, traderID string, side marketv1.Side, orderType marketv1.OrderType, price string, quantity int64) *marketv1.Order {
	return &marketv1.Order{
		ID:          orderID,
		TraderID:    traderID,
		Symbol:      "AAPL",
		Side:        side,
		Type:        orderType,
		Price:       decimal.RequireFromString(price),
		Quantity:    quantity,
		Destination: marketv1.VenueLocal,
		EnqueueAt:   sessionStart,
	}
}

func createGlobalOrder(destination string, side marketv1.Side, price string, quantity int64) *marketv1.Order {
	orderType := marketv1.TypeGlobalAsk
	if side == marketv1.SideBuy {
		orderType = marketv1.TypeGlobalBid
	}
	return &marketv1.Order{
		Symbol:      "AAPL",
		Side:        side,
		Type:        orderType,
		Price:       decimal.RequireFromString(price),
		Quantity:    quantity,
		Destination: destination,
		EnqueueAt:   sessionStart,
	}
}

func mustProcess(t *testing.T, e *Engine, order *marketv1.Order) *Result {
	t.Helper()
	res, err := e.Process(order)
	require.NoError(t, err)
	require.NoError(t, e.Book().Validate())
	return res
}

func TestEngine_LimitOrder_RestsWhenBookEmpty(t *testing.T) {
	e := newTestEngine()

	res := mustProcess(t, e, createOrder("order1", "trader1", marketv1.SideSell, marketv1.TypeLimit, "10.00", 100))

	assert.Empty(t, res.Executions)
	require.Len(t, res.BookUpdates, 1)
	assert.Equal(t, marketv1.BookLocalAsk, res.BookUpdates[0].Side)
	assert.Equal(t, int64(100), res.BookUpdates[0].Quantity)
	assert.Equal(t, int64(100), e.Book().LocalAsk.Best().Volume)
}

func TestEngine_LimitOrder_PartialFill(t *testing.T) {
	e := newTestEngine()
	mustProcess(t, e, createOrder("order1", "trader1", marketv1.SideSell, marketv1.TypeLimit, "10.00", 100))

	res := mustProcess(t, e, createOrder("order2", "trader2", marketv1.SideBuy, marketv1.TypeLimit, "10.00", 40))

	require.Len(t, res.Executions, 1)
	exec := res.Executions[0]
	assert.Equal(t, marketv1.DecisionTrade, exec.Decision)
	assert.Equal(t, "10", exec.Price.String())
	assert.Equal(t, int64(40), exec.Size)
	assert.Equal(t, "trader1", exec.RestingTraderID)
	assert.Equal(t, "trader2", exec.IncomingTraderID)
	assert.Equal(t, marketv1.VenueLocal, exec.Destination)

	// resting order keeps its remaining 60 with priority intact
	assert.Equal(t, int64(60), e.Book().LocalAsk.Best().Volume)
	assert.Equal(t, "order1", e.Book().LocalAsk.Best().Orders[0].ID)
	assert.Equal(t, 0, e.Book().LocalBid.Len())
}

func TestEngine_LimitOrder_RemainderRests(t *testing.T) {
	e := newTestEngine()
	mustProcess(t, e, createOrder("order1", "trader1", marketv1.SideSell, marketv1.TypeLimit, "10.00", 30))

	res := mustProcess(t, e, createOrder("order2", "trader2", marketv1.SideBuy, marketv1.TypeLimit, "10.00", 100))

	require.Len(t, res.Executions, 1)
	assert.Equal(t, int64(30), res.Executions[0].Size)
	assert.Equal(t, 0, e.Book().LocalAsk.Len())
	assert.Equal(t, int64(70), e.Book().LocalBid.Best().Volume)
}

func TestEngine_LimitOrder_PriceTimePriority(t *testing.T) {
	e := newTestEngine()
	mustProcess(t, e, createOrder("order1", "trader1", marketv1.SideSell, marketv1.TypeLimit, "10.05", 50))
	mustProcess(t, e, createOrder("order2", "trader2", marketv1.SideSell, marketv1.TypeLimit, "10.00", 50))
	mustProcess(t, e, createOrder("order3", "trader3", marketv1.SideSell, marketv1.TypeLimit, "10.00", 50))

	res := mustProcess(t, e, createOrder("order4", "trader4", marketv1.SideBuy, marketv1.TypeLimit, "10.05", 120))

	require.Len(t, res.Executions, 3)
	assert.Equal(t, "order2", res.Executions[0].RestingOrderID) // best price, first in
	assert.Equal(t, "order3", res.Executions[1].RestingOrderID)
	assert.Equal(t, "order1", res.Executions[2].RestingOrderID)
	assert.Equal(t, int64(20), res.Executions[2].Size)
	assert.Equal(t, "10.05", res.Executions[2].Price.StringFixed(2))
}

func TestEngine_LimitOrder_RespectsLimitPrice(t *testing.T) {
	e := newTestEngine()
	mustProcess(t, e, createOrder("order1", "trader1", marketv1.SideSell, marketv1.TypeLimit, "10.05", 50))

	res := mustProcess(t, e, createOrder("order2", "trader2", marketv1.SideBuy, marketv1.TypeLimit, "10.00", 50))

	assert.Empty(t, res.Executions)
	assert.Equal(t, int64(50), e.Book().LocalAsk.Best().Volume)
	assert.Equal(t, int64(50), e.Book().LocalBid.Best().Volume)
}

func TestEngine_MarketOrder_RemainderDiscarded(t *testing.T) {
	e := newTestEngine()
	mustProcess(t, e, createOrder("order1", "trader1", marketv1.SideSell, marketv1.TypeLimit, "10.00", 30))

	res := mustProcess(t, e, createOrder("order2", "trader2", marketv1.SideBuy, marketv1.TypeMarket, "0", 100))

	require.Len(t, res.Executions, 1)
	assert.Equal(t, int64(30), res.Executions[0].Size)
	assert.Equal(t, 0, e.Book().LocalAsk.Len())
	assert.Equal(t, 0, e.Book().LocalBid.Len()) // the unfilled 70 never rests
}

func TestEngine_MarketOrder_EmptyBook(t *testing.T) {
	e := newTestEngine()

	res := mustProcess(t, e, createOrder("order1", "trader1", marketv1.SideBuy, marketv1.TypeMarket, "0", 100))

	assert.Empty(t, res.Executions)
	assert.Empty(t, res.BookUpdates)
}

func TestEngine_SelfTradePrevention(t *testing.T) {
	e := newTestEngine()
	mustProcess(t, e, createOrder("order1", "trader1", marketv1.SideSell, marketv1.TypeLimit, "10.00", 50))

	res := mustProcess(t, e, createOrder("order2", "trader1", marketv1.SideBuy, marketv1.TypeLimit, "10.00", 50))

	assert.Empty(t, res.Executions)
	assert.Equal(t, int64(1), e.SelfTradeSkips())

	// both orders rest; the book is crossed only by the trader's own interest
	assert.Equal(t, int64(50), e.Book().LocalAsk.Best().Volume)
	assert.Equal(t, int64(50), e.Book().LocalBid.Best().Volume)
}

func TestEngine_SelfTradePrevention_OtherTradersStillMatch(t *testing.T) {
	e := newTestEngine()
	mustProcess(t, e, createOrder("order1", "trader1", marketv1.SideSell, marketv1.TypeLimit, "10.00", 50))
	mustProcess(t, e, createOrder("order2", "trader2", marketv1.SideSell, marketv1.TypeLimit, "10.00", 50))

	res := mustProcess(t, e, createOrder("order3", "trader1", marketv1.SideBuy, marketv1.TypeLimit, "10.00", 50))

	require.Len(t, res.Executions, 1)
	assert.Equal(t, "order2", res.Executions[0].RestingOrderID) // own order skipped over
	assert.Equal(t, int64(1), e.SelfTradeSkips())
	assert.Equal(t, int64(50), e.Book().LocalAsk.Best().Volume) // trader1's ask untouched
	assert.Equal(t, 0, e.Book().LocalBid.Len())
}

func TestEngine_GlobalLiquidity_BetterPriceWins(t *testing.T) {
	e := newTestEngine()
	mustProcess(t, e, createOrder("order1", "trader1", marketv1.SideSell, marketv1.TypeLimit, "10.00", 100))
	mustProcess(t, e, createGlobalOrder("VENUE1", marketv1.SideSell, "9.95", 50))

	res := mustProcess(t, e, createOrder("order2", "trader2", marketv1.SideBuy, marketv1.TypeMarket, "0", 50))

	require.Len(t, res.Executions, 1)
	exec := res.Executions[0]
	assert.Equal(t, "9.95", exec.Price.StringFixed(2))
	assert.Equal(t, "VENUE1", exec.Destination)
	assert.Equal(t, marketv1.TypeGlobalAsk, exec.RestingType)

	assert.Equal(t, int64(100), e.Book().LocalAsk.Best().Volume) // local untouched
	assert.Equal(t, 0, e.Book().GlobalAsk.Len())
}

func TestEngine_GlobalLiquidity_TieStaysLocal(t *testing.T) {
	e := newTestEngine()
	mustProcess(t, e, createOrder("order1", "trader1", marketv1.SideSell, marketv1.TypeLimit, "10.00", 50))
	mustProcess(t, e, createGlobalOrder("VENUE1", marketv1.SideSell, "10.00", 50))

	res := mustProcess(t, e, createOrder("order2", "trader2", marketv1.SideBuy, marketv1.TypeMarket, "0", 50))

	require.Len(t, res.Executions, 1)
	assert.Equal(t, marketv1.VenueLocal, res.Executions[0].Destination)
	assert.Equal(t, "trader1", res.Executions[0].RestingTraderID)
	assert.Equal(t, 1, e.Book().GlobalAsk.Len())
}

func TestEngine_GlobalLiquidity_WalkSpansBothBooks(t *testing.T) {
	e := newTestEngine()
	mustProcess(t, e, createOrder("order1", "trader1", marketv1.SideSell, marketv1.TypeLimit, "10.00", 40))
	mustProcess(t, e, createGlobalOrder("VENUE1", marketv1.SideSell, "9.95", 30))

	res := mustProcess(t, e, createOrder("order2", "trader2", marketv1.SideBuy, marketv1.TypeLimit, "10.00", 100))

	require.Len(t, res.Executions, 2)
	assert.Equal(t, "VENUE1", res.Executions[0].Destination) // cheaper venue first
	assert.Equal(t, int64(30), res.Executions[0].Size)
	assert.Equal(t, marketv1.VenueLocal, res.Executions[1].Destination)
	assert.Equal(t, int64(40), res.Executions[1].Size)

	assert.Equal(t, int64(30), e.Book().LocalBid.Best().Volume) // remainder rests
}

func TestEngine_Cancel_Partial(t *testing.T) {
	e := newTestEngine()
	mustProcess(t, e, createOrder("order1", "trader1", marketv1.SideSell, marketv1.TypeLimit, "10.00", 100))

	res := mustProcess(t, e, createOrder("order1", "trader1", marketv1.SideSell, marketv1.TypeCancelAsk, "10.00", 40))

	require.Len(t, res.Executions, 1)
	exec := res.Executions[0]
	assert.Equal(t, marketv1.DecisionCancel, exec.Decision)
	assert.Equal(t, int64(40), exec.Size)
	assert.Equal(t, "order1", exec.RestingOrderID)

	assert.Equal(t, int64(60), e.Book().LocalAsk.Best().Volume)
	assert.Equal(t, "order1", e.Book().LocalAsk.Best().Orders[0].ID) // priority kept
}

func TestEngine_Cancel_Full(t *testing.T) {
	e := newTestEngine()
	mustProcess(t, e, createOrder("order1", "trader1", marketv1.SideBuy, marketv1.TypeLimit, "9.95", 100))

	res := mustProcess(t, e, createOrder("order1", "trader1", marketv1.SideBuy, marketv1.TypeCancelBid, "9.95", 100))

	require.Len(t, res.Executions, 1)
	assert.Equal(t, marketv1.DecisionCancel, res.Executions[0].Decision)
	assert.Equal(t, 0, e.Book().LocalBid.Len())
}

func TestEngine_Cancel_SecondCancelFindsNothing(t *testing.T) {
	e := newTestEngine()
	mustProcess(t, e, createOrder("order1", "trader1", marketv1.SideSell, marketv1.TypeLimit, "10.00", 100))

	res := mustProcess(t, e, createOrder("order1", "trader1", marketv1.SideSell, marketv1.TypeCancelAsk, "10.00", 100))
	require.Len(t, res.Executions, 1)
	require.Equal(t, marketv1.DecisionCancel, res.Executions[0].Decision)

	// replaying the same cancel must not drive anything negative
	_, err := e.Process(createOrder("order1", "trader1", marketv1.SideSell, marketv1.TypeCancelAsk, "10.00", 100))
	assert.ErrorIs(t, err, marketv1.ErrCancelNotFound)
	assert.Equal(t, 0, e.Book().LocalAsk.Len())
	require.NoError(t, e.Book().Validate())
}

func TestEngine_Cancel_OversizedCapsAtResting(t *testing.T) {
	e := newTestEngine()
	mustProcess(t, e, createOrder("order1", "trader1", marketv1.SideBuy, marketv1.TypeLimit, "9.95", 100))

	res := mustProcess(t, e, createOrder("order1", "trader1", marketv1.SideBuy, marketv1.TypeCancelBid, "9.95", 500))

	require.Len(t, res.Executions, 1)
	assert.Equal(t, int64(100), res.Executions[0].Size)
	assert.Equal(t, 0, e.Book().LocalBid.Len())
}

func TestEngine_Cancel_NotFound(t *testing.T) {
	e := newTestEngine()
	mustProcess(t, e, createOrder("order1", "trader1", marketv1.SideBuy, marketv1.TypeLimit, "9.95", 100))

	t.Run("wrong price", func(t *testing.T) {
		_, err := e.Process(createOrder("order1", "trader1", marketv1.SideBuy, marketv1.TypeCancelBid, "9.90", 100))
		assert.ErrorIs(t, err, marketv1.ErrCancelNotFound)
	})

	t.Run("wrong order ID", func(t *testing.T) {
		_, err := e.Process(createOrder("order2", "trader1", marketv1.SideBuy, marketv1.TypeCancelBid, "9.95", 100))
		assert.ErrorIs(t, err, marketv1.ErrCancelNotFound)
	})

	// the book is untouched either way
	assert.Equal(t, int64(100), e.Book().LocalBid.Best().Volume)
	require.NoError(t, e.Book().Validate())
}

func TestEngine_GlobalQuote_CrossesLocalBook(t *testing.T) {
	e := newTestEngine()
	mustProcess(t, e, createOrder("order1", "trader1", marketv1.SideBuy, marketv1.TypeLimit, "10.00", 100))

	res := mustProcess(t, e, createGlobalOrder("VENUE1", marketv1.SideSell, "9.95", 150))

	require.Len(t, res.Executions, 1)
	exec := res.Executions[0]
	assert.Equal(t, "10", exec.Price.String()) // resting bid's price
	assert.Equal(t, int64(100), exec.Size)
	assert.Equal(t, "VENUE1", exec.Destination)

	assert.Equal(t, 0, e.Book().LocalBid.Len())
	require.Equal(t, 1, e.Book().GlobalAsk.Len())
	assert.Equal(t, int64(50), e.Book().GlobalAsk.Best().Quantity) // remainder rests globally
}

func TestEngine_GlobalQuote_FullyConsumedNeverRests(t *testing.T) {
	e := newTestEngine()
	mustProcess(t, e, createOrder("order1", "trader1", marketv1.SideBuy, marketv1.TypeLimit, "10.00", 100))

	res := mustProcess(t, e, createGlobalOrder("VENUE1", marketv1.SideSell, "9.95", 60))

	require.Len(t, res.Executions, 1)
	assert.Equal(t, 0, e.Book().GlobalAsk.Len())
	assert.Equal(t, int64(40), e.Book().LocalBid.Best().Volume)
}

func TestEngine_GlobalQuote_DeduplicatesConsecutive(t *testing.T) {
	e := newTestEngine()

	first := mustProcess(t, e, createGlobalOrder("VENUE1", marketv1.SideBuy, "9.95", 100))
	require.Len(t, first.BookUpdates, 1)

	repeat := mustProcess(t, e, createGlobalOrder("VENUE1", marketv1.SideBuy, "9.95", 100))
	assert.Empty(t, repeat.Executions)
	assert.Empty(t, repeat.BookUpdates)

	changed := mustProcess(t, e, createGlobalOrder("VENUE1", marketv1.SideBuy, "9.95", 80))
	require.Len(t, changed.BookUpdates, 1)
	assert.Equal(t, int64(80), e.Book().GlobalBid.Best().Quantity)
}

func TestEngine_GlobalQuote_EvictsStaleEntries(t *testing.T) {
	e := newTestEngine()
	mustProcess(t, e, createGlobalOrder("VENUE1", marketv1.SideSell, "9.90", 100))

	res := mustProcess(t, e, createGlobalOrder("VENUE2", marketv1.SideSell, "10.00", 50))

	require.Len(t, res.BookUpdates, 2)
	assert.Equal(t, int64(50), res.BookUpdates[0].Quantity)
	assert.Equal(t, int64(0), res.BookUpdates[1].Quantity) // eviction notice
	assert.Equal(t, "9.9", res.BookUpdates[1].Price.String())
	assert.Equal(t, "VENUE1", res.BookUpdates[1].Destination)

	assert.Equal(t, int64(1), e.GlobalEvictions())
	assert.Equal(t, 1, e.Book().GlobalAsk.Len())
}

func TestEngine_GlobalQuote_ZeroQuantityPulls(t *testing.T) {
	e := newTestEngine()
	mustProcess(t, e, createGlobalOrder("VENUE1", marketv1.SideBuy, "9.95", 100))

	res := mustProcess(t, e, createGlobalOrder("VENUE1", marketv1.SideBuy, "9.95", 0))

	require.Len(t, res.BookUpdates, 1)
	assert.Equal(t, int64(0), res.BookUpdates[0].Quantity)
	assert.Equal(t, 0, e.Book().GlobalBid.Len())
}

func TestEngine_GlobalQuote_PullAtWorsePriceLeavesNoGhost(t *testing.T) {
	e := newTestEngine()
	mustProcess(t, e, createGlobalOrder("VENUE1", marketv1.SideSell, "9.95", 100))

	res := mustProcess(t, e, createGlobalOrder("VENUE1", marketv1.SideSell, "10.00", 0))

	assert.Equal(t, 0, e.Book().GlobalAsk.Len())
	assert.Equal(t, int64(1), e.GlobalEvictions())

	// both the pull and the evicted entry go out as zero-quantity updates
	require.Len(t, res.BookUpdates, 2)
	assert.Equal(t, int64(0), res.BookUpdates[0].Quantity)
	assert.Equal(t, "10", res.BookUpdates[0].Price.String())
	assert.Equal(t, int64(0), res.BookUpdates[1].Quantity)
	assert.Equal(t, "9.95", res.BookUpdates[1].Price.StringFixed(2))
}

func TestEngine_GlobalTrade_ConsumesLocalInterest(t *testing.T) {
	e := newTestEngine()
	mustProcess(t, e, createOrder("order1", "trader1", marketv1.SideSell, marketv1.TypeLimit, "10.00", 50))

	trade := &marketv1.Order{
		Symbol:      "AAPL",
		Type:        marketv1.TypeGlobalTrade,
		Price:       decimal.RequireFromString("10.00"),
		Quantity:    80,
		Destination: marketv1.VenueExternal,
		EnqueueAt:   sessionStart,
	}
	res := mustProcess(t, e, trade)

	require.Len(t, res.Executions, 2)
	assert.Equal(t, int64(50), res.Executions[0].Size) // local ask absorbed
	assert.Equal(t, marketv1.VenueExternal, res.Executions[0].Destination)

	// the rest printed on the other venue, reported once and never rested
	assert.Equal(t, int64(30), res.Executions[1].Size)
	assert.Equal(t, marketv1.VenueExternal, res.Executions[1].Destination)
	assert.Equal(t, 0, e.Book().LocalAsk.Len())
	assert.Equal(t, 0, e.Book().GlobalAsk.Len())
	assert.Equal(t, 0, e.Book().GlobalBid.Len())
}

func TestEngine_QuantityConservation(t *testing.T) {
	e := newTestEngine()
	mustProcess(t, e, createOrder("order1", "trader1", marketv1.SideSell, marketv1.TypeLimit, "10.00", 70))
	mustProcess(t, e, createOrder("order2", "trader2", marketv1.SideSell, marketv1.TypeLimit, "10.05", 70))

	incoming := createOrder("order3", "trader3", marketv1.SideBuy, marketv1.TypeLimit, "10.05", 100)
	res := mustProcess(t, e, incoming)

	var filled int64
	for _, exec := range res.Executions {
		filled += exec.Size
	}
	assert.Equal(t, int64(100), filled+incoming.Quantity)
	assert.Equal(t, int64(40), e.Book().LocalAsk.Best().Volume)
}

func TestEngine_UnsupportedType(t *testing.T) {
	e := newTestEngine()

	_, err := e.Process(createOrder("order1", "trader1", marketv1.SideBuy, marketv1.OrderType("stop"), "10.00", 10))
	assert.Error(t, err)
}
