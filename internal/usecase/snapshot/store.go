// Package snapshot persists resting local books to Redis so an instrument
// can restore its book across restarts.
package snapshot

import (
	"context"
	"encoding/json"

	snapshotv1 "github.com/wcravens/shift-main-sub001/internal/domain/snapshot/v1"
	"github.com/wcravens/shift-main-sub001/pkg/errors"
	"github.com/wcravens/shift-main-sub001/pkg/logger"
	"github.com/wcravens/shift-main-sub001/pkg/redis"
)

const keyPrefix = "book:"

// Store keeps one snapshot per symbol in Redis.
type Store struct {
	client redis.Client
	logger *logger.Logger
}

// NewStore creates a snapshot store backed by the given Redis client.
func NewStore(client redis.Client, log *logger.Logger) *Store {
	return &Store{
		client: client,
		logger: log,
	}
}

// Store serializes and writes one instrument's snapshot.
func (s *Store) Store(ctx context.Context, snapshot *snapshotv1.Snapshot) error {
	buf, err := json.Marshal(snapshot)
	if err != nil {
		return errors.NewTracer("snapshot marshal failed").Wrap(err)
	}

	if err := s.client.Set(ctx, keyPrefix+snapshot.Symbol, buf, 0); err != nil {
		return errors.NewTracer("snapshot store failed").Wrap(err)
	}

	s.logger.Debug("snapshot stored", logger.Field{
		Key:   "symbol",
		Value: snapshot.Symbol,
	}, logger.Field{
		Key:   "orders",
		Value: len(snapshot.Orders),
	})
	return nil
}

// Load reads the last stored snapshot for symbol, returning nil when none exists.
func (s *Store) Load(ctx context.Context, symbol string) (*snapshotv1.Snapshot, error) {
	data, err := s.client.Get(ctx, keyPrefix+symbol)
	if err != nil {
		return nil, errors.NewTracer("snapshot load failed").Wrap(err)
	}
	if data == "" {
		return nil, nil
	}

	var snapshot snapshotv1.Snapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return nil, errors.NewTracer("snapshot unmarshal failed").Wrap(err)
	}
	return &snapshot, nil
}
