package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/2019UGEC100/matching-core/pkg/api"
	"github.com/2019UGEC100/matching-core/pkg/config"
	"github.com/2019UGEC100/matching-core/pkg/engine"
	"github.com/2019UGEC100/matching-core/pkg/logger"
	"github.com/2019UGEC100/matching-core/pkg/sequence"
	"github.com/2019UGEC100/matching-core/pkg/sink"
)

func main() {
	var cfg config.Config
	config.MustLoad(&cfg)
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	opts := []logger.Options{
		logger.WithLoggingLevel(logger.Level(cfg.LogLevel)),
		// stdout carries responses
		logger.WithOutputPaths([]string{"stderr"}),
	}
	if cfg.LogDevelopment {
		opts = append(opts, logger.WithDevelopment())
	}
	log, err := logger.NewLogger(opts...)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pub, err := newPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := pub.Close(); err != nil {
			log.Error(errors.Wrap(err, "closing trade publisher"))
		}
	}()

	queue := sink.NewQueue(pub, log.WithFields(logger.NewField("component", "sink")), cfg.SinkFlushInterval)
	sinkCtx, stopSink := context.WithCancel(context.Background())
	sinkDone := make(chan struct{})
	go func() {
		queue.Run(sinkCtx)
		close(sinkDone)
	}()

	eng := engine.New(cfg.Instrument,
		engine.WithSink(queue),
		engine.WithLogger(log),
		engine.WithInvariantChecks(cfg.CheckInvariants),
	)
	srv := api.NewServer(eng, sequence.New(0), log)

	log.Info("matchd started",
		logger.NewField("instrument", cfg.Instrument),
		logger.NewField("sink", cfg.Sink),
		logger.NewField("check_invariants", cfg.CheckInvariants),
	)

	// A read blocked on stdin does not see ctx; a signal stops waiting for it.
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ctx, os.Stdin, os.Stdout) }()

	var serveErr error
	select {
	case serveErr = <-served:
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	stopSink()
	<-sinkDone

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := queue.Flush(flushCtx); err != nil {
		log.Error(errors.Wrap(err, "flushing trades on shutdown"), logger.NewField("pending", queue.Pending()))
	}

	log.Info("matchd stopped", logger.NewField("resting_orders", eng.Len()))
	return serveErr
}

func newPublisher(cfg config.Config, log *logger.Logger) (sink.Publisher, error) {
	switch cfg.Sink {
	case config.SinkLog:
		return sink.NewLog(log.WithFields(logger.NewField("component", "trades"))), nil
	case config.SinkKafka:
		return sink.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Instrument), nil
	case config.SinkNone:
		return sink.Nop{}, nil
	}
	return nil, errors.Errorf("unknown sink %q", cfg.Sink)
}
