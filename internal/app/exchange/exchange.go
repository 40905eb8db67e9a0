// Package exchange owns the per-instrument scheduling loop and the inbound
// gateway: one goroutine per instrument drives dequeue, match and emit, and
// nothing else ever touches that instrument's book.
package exchange

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	marketv1 "github.com/wcravens/shift-main-sub001/internal/domain/market/v1"
	orderbookv1 "github.com/wcravens/shift-main-sub001/internal/domain/orderbook/v1"
	snapshotv1 "github.com/wcravens/shift-main-sub001/internal/domain/snapshot/v1"
	"github.com/wcravens/shift-main-sub001/internal/usecase/emitter"
	"github.com/wcravens/shift-main-sub001/internal/usecase/matching"
	"github.com/wcravens/shift-main-sub001/internal/usecase/sequencer"
	"github.com/wcravens/shift-main-sub001/pkg/logger"
	"github.com/wcravens/shift-main-sub001/pkg/simclock"
)

// instrument bundles everything one matching goroutine owns.
type instrument struct {
	symbol string
	book   *orderbookv1.Book
	engine *matching.Engine
	seq    *sequencer.Sequencer
}

// Exchange hosts the matching core for a set of instruments.
type Exchange struct {
	clock     *simclock.Clock
	emitter   *emitter.Emitter
	snapshots snapshotv1.Store // nil disables persistence
	logger    *logger.Logger
	opts      *Options

	instruments map[string]*instrument

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an Exchange for the given symbols.
func New(
	symbols []string,
	clock *simclock.Clock,
	em *emitter.Emitter,
	snapshots snapshotv1.Store,
	log *logger.Logger,
	opts *Options,
) *Exchange {
	if opts == nil {
		opts = DefaultOptions()
	}

	instruments := make(map[string]*instrument, len(symbols))
	for _, symbol := range symbols {
		book := orderbookv1.NewBook(symbol)
		instruments[symbol] = &instrument{
			symbol: symbol,
			book:   book,
			engine: matching.NewEngine(book, clock, log),
			seq:    sequencer.New(),
		}
	}

	return &Exchange{
		clock:       clock,
		emitter:     em,
		snapshots:   snapshots,
		logger:      log,
		opts:        opts,
		instruments: instruments,
	}
}

// Start restores persisted books and launches one matching goroutine per
// instrument.
func (x *Exchange) Start(ctx context.Context) error {
	x.ctx, x.cancel = context.WithCancel(ctx)

	if x.snapshots != nil {
		for symbol, ins := range x.instruments {
			snapshot, err := x.snapshots.Load(ctx, symbol)
			if err != nil {
				return err
			}
			if snapshot == nil {
				continue
			}
			if err := ins.book.Restore(snapshot); err != nil {
				return err
			}
			x.logger.Info("restored book snapshot", logger.Field{
				Key:   "symbol",
				Value: symbol,
			}, logger.Field{
				Key:   "orders",
				Value: len(snapshot.Orders),
			})
		}
	}

	for _, ins := range x.instruments {
		x.wg.Add(1)
		go x.runInstrument(ins)
	}

	x.logger.Info("exchange started", logger.Field{
		Key:   "instruments",
		Value: len(x.instruments),
	}, logger.Field{
		Key:   "speed",
		Value: x.clock.Speed(),
	})
	return nil
}

// Stop signals every instrument goroutine and waits for them to exit.
// Items still queued at the session boundary are discarded, not drained.
func (x *Exchange) Stop(ctx context.Context) error {
	if x.cancel != nil {
		x.cancel()
	}

	done := make(chan struct{})
	go func() {
		x.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		x.logger.Info("exchange stopped")
		return nil
	case <-ctx.Done():
		x.logger.Warn("exchange stop timeout exceeded")
		return ctx.Err()
	}
}

// runInstrument is the single writer for one instrument's book: dequeue the
// next sequenced quote, match it, flush the results.
func (x *Exchange) runInstrument(ins *instrument) {
	defer x.wg.Done()

	lastSnapshot := time.Now()

	for {
		select {
		case <-x.ctx.Done():
			local, global := ins.seq.Depth()
			if local+global > 0 {
				x.logger.Info("discarding queued items at session end", logger.Field{
					Key:   "symbol",
					Value: ins.symbol,
				}, logger.Field{
					Key:   "local",
					Value: local,
				}, logger.Field{
					Key:   "global",
					Value: global,
				})
			}
			return
		default:
		}

		order, ok := ins.seq.NextReady(x.clock.Now())
		if !ok {
			x.maybeSnapshot(ins, &lastSnapshot)
			time.Sleep(x.opts.PollInterval)
			continue
		}

		res, err := ins.engine.Process(order)
		if err != nil {
			if stderrors.Is(err, marketv1.ErrCancelNotFound) {
				// surface the failed cancel to the submitting session
				res.Executions = append(res.Executions, x.cancelReject(order))
				x.logger.Warn("cancel matched nothing", logger.Field{
					Key:   "symbol",
					Value: ins.symbol,
				}, logger.Field{
					Key:   "orderID",
					Value: order.ID,
				})
			} else {
				// invariant violation: halt this instrument, keep the rest alive
				x.logger.Error(err, logger.Field{
					Key:   "symbol",
					Value: ins.symbol,
				}, logger.Field{
					Key:   "orderID",
					Value: order.ID,
				})
				return
			}
		}

		x.emitter.Flush(x.ctx, res.Executions, res.BookUpdates)
		x.maybeSnapshot(ins, &lastSnapshot)
	}
}

// maybeSnapshot persists the local book from the owning goroutine, so the
// book is never read from another thread.
func (x *Exchange) maybeSnapshot(ins *instrument, last *time.Time) {
	if x.snapshots == nil || x.opts.SnapshotInterval <= 0 {
		return
	}
	if time.Since(*last) < x.opts.SnapshotInterval {
		return
	}
	*last = time.Now()

	snapshot := ins.book.Snapshot(x.clock.Now())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := x.snapshots.Store(ctx, snapshot); err != nil {
		x.logger.Error(err, logger.Field{
			Key:   "symbol",
			Value: ins.symbol,
		}, logger.Field{
			Key:   "operation",
			Value: "snapshot",
		})
	}
}

func (x *Exchange) cancelReject(order *marketv1.Order) *marketv1.Execution {
	return &marketv1.Execution{
		Symbol:           order.Symbol,
		Price:            order.Price,
		Size:             0,
		IncomingTraderID: order.TraderID,
		IncomingType:     order.Type,
		IncomingOrderID:  order.ID,
		Decision:         marketv1.DecisionReject,
		Destination:      marketv1.VenueLocal,
		ExecutedAt:       x.clock.Now(),
		IncomingAt:       order.EnqueueAt,
	}
}
