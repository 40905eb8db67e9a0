// Package publisher delivers executions and book updates to Kafka for
// trade-history persistence and downstream market-data consumers.
package publisher

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	marketv1 "github.com/wcravens/shift-main-sub001/internal/domain/market/v1"
	"github.com/wcravens/shift-main-sub001/pkg/config"
	"github.com/wcravens/shift-main-sub001/pkg/errors"
	"github.com/wcravens/shift-main-sub001/pkg/logger"
)

// Publisher is a Kafka sink for the emitter. Executions and book updates go
// to separate topics, keyed by symbol so one instrument's stream stays ordered
// within a partition.
type Publisher struct {
	executionWriter *kafka.Writer
	bookWriter      *kafka.Writer
	logger          *logger.Logger
}

// NewPublisher creates a Kafka publisher for execution and book update events.
func NewPublisher(cfg config.KafkaConfig, log *logger.Logger) *Publisher {
	executionWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.ExecutionTopic,
		Balancer: &kafka.Hash{},
	})
	bookWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.BookTopic,
		Balancer: &kafka.Hash{},
	})

	return &Publisher{
		executionWriter: executionWriter,
		bookWriter:      bookWriter,
		logger:          log,
	}
}

// OnExecution publishes one execution record.
func (p *Publisher) OnExecution(ctx context.Context, execution *marketv1.Execution) error {
	value, err := json.Marshal(execution)
	if err != nil {
		return errors.NewTracer("failed to marshal execution").Wrap(err)
	}

	msg := kafka.Message{
		Key:   []byte(execution.Symbol),
		Value: value,
	}
	if err := p.executionWriter.WriteMessages(ctx, msg); err != nil {
		p.logger.Error(err, logger.Field{
			Key:   "symbol",
			Value: execution.Symbol,
		}, logger.Field{
			Key:   "decision",
			Value: execution.Decision,
		})
		return errors.NewTracer("failed to publish execution").Wrap(err)
	}
	return nil
}

// OnBookUpdate publishes one book delta.
func (p *Publisher) OnBookUpdate(ctx context.Context, update *marketv1.BookUpdate) error {
	value, err := json.Marshal(update)
	if err != nil {
		return errors.NewTracer("failed to marshal book update").Wrap(err)
	}

	msg := kafka.Message{
		Key:   []byte(update.Symbol),
		Value: value,
	}
	if err := p.bookWriter.WriteMessages(ctx, msg); err != nil {
		p.logger.Error(err, logger.Field{
			Key:   "symbol",
			Value: update.Symbol,
		}, logger.Field{
			Key:   "side",
			Value: update.Side,
		})
		return errors.NewTracer("failed to publish book update").Wrap(err)
	}
	return nil
}

// Close shuts both writers down.
func (p *Publisher) Close() error {
	if err := p.executionWriter.Close(); err != nil {
		return errors.NewTracer("failed to close execution writer").Wrap(err)
	}
	if err := p.bookWriter.Close(); err != nil {
		return errors.NewTracer("failed to close book update writer").Wrap(err)
	}
	return nil
}
