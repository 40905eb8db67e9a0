package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/wcravens/shift-main-sub001/pkg/redis"
)

// MustLoad loads the configuration from environment variables and .env file.
func MustLoad[T any](cfg T) {
	_ = godotenv.Load() // Load environment variables from .env file

	env.Must(cfg, env.Parse(cfg))
}

// Load loads the configuration from environment variables and .env file.
func Load[T any](cfg T) error {
	_ = godotenv.Load()

	if err := env.Parse(cfg); err != nil {
		return err
	}

	return nil
}

// Config holds the configuration for the matching engine process.
type Config struct {
	Symbols []string `env:"SYMBOLS,required" envSeparator:","` // Traded symbols, e.g. AAPL,MSFT

	Session SessionConfig `envPrefix:"SESSION_"`
	Kafka   KafkaConfig   `envPrefix:"KAFKA_"`
	Redis   redis.Config  `envPrefix:"REDIS_"`
	Feed    FeedConfig    `envPrefix:"FEED_"`
}

// SessionConfig describes the simulated trading session.
type SessionConfig struct {
	Date      string `env:"DATE,required"`                 // yyyy-mm-dd
	StartTime string `env:"START_TIME" envDefault:"09:30:00"`
	EndTime   string `env:"END_TIME" envDefault:"16:00:00"`
	Speed     int64  `env:"SPEED" envDefault:"1"` // 1 is real time, 2 is double speed
}

// Window parses the configured session boundaries into concrete timestamps.
func (s SessionConfig) Window() (start, end time.Time, err error) {
	const layout = "2006-01-02 15:04:05"

	start, err = time.Parse(layout, s.Date+" "+s.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing session start: %w", err)
	}
	end, err = time.Parse(layout, s.Date+" "+s.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing session end: %w", err)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("session end %s is not after start %s", s.EndTime, s.StartTime)
	}
	return start, end, nil
}

// KafkaConfig holds the configuration for the execution and book update publishers.
type KafkaConfig struct {
	Brokers        []string `env:"BROKER,required"`
	ExecutionTopic string   `env:"EXECUTION_TOPIC" envDefault:"executions"`
	BookTopic      string   `env:"BOOK_TOPIC" envDefault:"book_updates"`
}

// FeedConfig holds the configuration for the websocket market data feed.
type FeedConfig struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8100"`
}
