package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wcravens/shift-main-sub001/internal/app/exchange"
	"github.com/wcravens/shift-main-sub001/internal/transport/feed"
	"github.com/wcravens/shift-main-sub001/internal/usecase/emitter"
	"github.com/wcravens/shift-main-sub001/internal/usecase/publisher"
	"github.com/wcravens/shift-main-sub001/internal/usecase/snapshot"
	"github.com/wcravens/shift-main-sub001/pkg/config"
	"github.com/wcravens/shift-main-sub001/pkg/logger"
	"github.com/wcravens/shift-main-sub001/pkg/redis"
	"github.com/wcravens/shift-main-sub001/pkg/simclock"
)

var cfg *config.Config
var log *logger.Logger

func init() {
	cfg = &config.Config{}
	config.MustLoad(cfg)

	l, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}
	log = l
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sessionStart, sessionEnd, err := cfg.Session.Window()
	if err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "parse_session_window",
		})
		return
	}
	clock := simclock.New(sessionStart, cfg.Session.Speed)

	rclient := redis.NewClient(log, &cfg.Redis)
	if err := rclient.Connect(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "connect_redis",
		})
		return
	}

	snapshotStore := snapshot.NewStore(rclient, log)
	kafkaPublisher := publisher.NewPublisher(cfg.Kafka, log)
	hub := feed.NewHub()
	feedServer := feed.NewServer(cfg.Feed.ListenAddr, hub, log)

	em := emitter.New(log)
	em.Register(kafkaPublisher)
	em.Register(hub)

	engine := exchange.New(cfg.Symbols, clock, em, snapshotStore, log, nil)
	if err := engine.Start(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "start_exchange",
		})
		return
	}

	go func() {
		if err := feedServer.Start(); err != nil {
			log.Error(err, logger.Field{
				Key:   "action",
				Value: "serve_feed",
			})
		}
	}()

	log.Info("Matching engine started",
		logger.Field{Key: "symbols", Value: cfg.Symbols},
		logger.Field{Key: "session_start", Value: sessionStart.String()},
		logger.Field{Key: "speed", Value: cfg.Session.Speed},
	)

	sessionTimer := time.NewTimer(clock.UntilEnd(sessionEnd))
	defer sessionTimer.Stop()

	select {
	case sig := <-sigChan:
		log.Info("Received shutdown signal", logger.Field{
			Key:   "signal",
			Value: sig.String(),
		})
	case <-sessionTimer.C:
		log.Info("Session window closed", logger.Field{
			Key:   "session_end",
			Value: sessionEnd.String(),
		})
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := engine.Stop(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "stop_exchange",
		})
	}

	if err := feedServer.Shutdown(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "shutdown_feed",
		})
	}

	if err := kafkaPublisher.Close(); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "close_publisher",
		})
	}

	if err := rclient.Disconnect(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "disconnect_redis",
		})
	}

	log.Info("Matching engine shutdown complete")
}
