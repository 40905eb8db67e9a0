package redis

import "time"

// Config holds the configuration for the Redis client.
type Config struct {
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`

	Addrs []string `env:"ADDRS" envDefault:"localhost:6379"`

	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"5s"`
	MaxRetries     int           `env:"MAX_RETRIES" envDefault:"3"`
	PoolSize       int           `env:"POOL_SIZE" envDefault:"10"`
	PrefixKey      string        `env:"PREFIX_KEY" envDefault:"matching:"`
}

// DefaultConfig returns a default configuration for the Redis client.
func DefaultConfig() *Config {
	return &Config{
		Addrs:          []string{"localhost:6379"},
		ConnectTimeout: 5 * time.Second,
		MaxRetries:     3,
		PoolSize:       10,
		PrefixKey:      "matching:",
	}
}
