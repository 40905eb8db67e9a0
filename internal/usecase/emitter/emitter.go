// Package emitter fans executions and book updates out to the transport
// sinks, serializing writes per sink so concurrent instrument goroutines
// never interleave a subscriber's stream.
package emitter

import (
	"context"
	"sync"

	marketv1 "github.com/wcravens/shift-main-sub001/internal/domain/market/v1"
	"github.com/wcravens/shift-main-sub001/pkg/logger"
)

// Sink consumes the records produced by one matching pass. Implementations
// must tolerate being called from multiple goroutines; the Emitter holds a
// per-sink mutex around every delivery.
type Sink interface {
	OnExecution(ctx context.Context, execution *marketv1.Execution) error
	OnBookUpdate(ctx context.Context, update *marketv1.BookUpdate) error
}

type guardedSink struct {
	mu   sync.Mutex
	sink Sink
}

// Emitter delivers one matching pass's buffered output to every registered
// sink: all executions first, then all book updates, in production order.
type Emitter struct {
	logger *logger.Logger

	mu    sync.RWMutex
	sinks []*guardedSink
}

// New creates an Emitter with no sinks.
func New(log *logger.Logger) *Emitter {
	return &Emitter{logger: log}
}

// Register adds a sink. Typically called during startup, before instruments run.
func (e *Emitter) Register(sink Sink) {
	e.mu.Lock()
	e.sinks = append(e.sinks, &guardedSink{sink: sink})
	e.mu.Unlock()
}

// Flush delivers the records of one fully-processed sequenced item. Sink
// failures are logged and do not stop delivery to other sinks; the matching
// core never retries.
func (e *Emitter) Flush(ctx context.Context, executions []*marketv1.Execution, updates []*marketv1.BookUpdate) {
	e.mu.RLock()
	sinks := e.sinks
	e.mu.RUnlock()

	for _, gs := range sinks {
		gs.mu.Lock()
		for _, execution := range executions {
			if err := gs.sink.OnExecution(ctx, execution); err != nil {
				e.logger.Error(err, logger.Field{
					Key:   "symbol",
					Value: execution.Symbol,
				}, logger.Field{
					Key:   "operation",
					Value: "OnExecution",
				})
			}
		}
		for _, update := range updates {
			if err := gs.sink.OnBookUpdate(ctx, update); err != nil {
				e.logger.Error(err, logger.Field{
					Key:   "symbol",
					Value: update.Symbol,
				}, logger.Field{
					Key:   "operation",
					Value: "OnBookUpdate",
				})
			}
		}
		gs.mu.Unlock()
	}
}
