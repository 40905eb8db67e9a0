package redis

import (
	"context"
	"time"

	v9 "github.com/redis/go-redis/v9"
	"github.com/wcravens/shift-main-sub001/pkg/errors"
	"github.com/wcravens/shift-main-sub001/pkg/logger"
)

type client struct {
	logger  *logger.Logger
	config  *Config
	cmdable v9.UniversalClient
}

// NewClient creates a new Redis client with the provided logger and configuration.
func NewClient(logger *logger.Logger, config *Config) Client {
	return &client{
		logger: logger,
		config: config,
	}
}

func (c *client) Connect(ctx context.Context) error {
	if c.config == nil {
		return errors.NewTracer("redis config is nil")
	}
	if len(c.config.Addrs) == 0 {
		return errors.NewTracer("redis addresses are empty")
	}

	c.cmdable = v9.NewUniversalClient(&v9.UniversalOptions{
		Addrs:       c.config.Addrs,
		Username:    c.config.Username,
		Password:    c.config.Password,
		DB:          c.config.DB,
		DialTimeout: c.config.ConnectTimeout,
		MaxRetries:  c.config.MaxRetries,
		PoolSize:    c.config.PoolSize,
	})

	if err := c.Ping(ctx); err != nil {
		return err
	}

	c.logger.Info("connected to redis", logger.Field{
		Key:   "addrs",
		Value: c.config.Addrs,
	})
	return nil
}

func (c *client) Disconnect(ctx context.Context) error {
	if c.cmdable == nil {
		return nil
	}
	if err := c.cmdable.Close(); err != nil {
		return errors.NewTracer("redis close failed").Wrap(err)
	}
	return nil
}

func (c *client) Ping(ctx context.Context) error {
	if err := c.cmdable.Ping(ctx).Err(); err != nil {
		return errors.NewTracer("redis ping failed").Wrap(err)
	}
	return nil
}

func (c *client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.cmdable.Get(ctx, c.config.PrefixKey+key).Result()
	if err == v9.Nil {
		return "", nil
	}
	if err != nil {
		return "", errors.NewTracer("redis get failed").Wrap(err)
	}
	return val, nil
}

func (c *client) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if err := c.cmdable.Set(ctx, c.config.PrefixKey+key, value, expiration).Err(); err != nil {
		return errors.NewTracer("redis set failed").Wrap(err)
	}
	return nil
}

func (c *client) Del(ctx context.Context, keys ...string) (int64, error) {
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = c.config.PrefixKey + key
	}
	deleted, err := c.cmdable.Del(ctx, prefixed...).Result()
	if err != nil {
		return 0, errors.NewTracer("redis del failed").Wrap(err)
	}
	return deleted, nil
}
