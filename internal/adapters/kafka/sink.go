// Package kafka implements ports.Sink with a franz-go producer.
package kafka

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/bft-labs/framebridge/internal/domain"
	"github.com/bft-labs/framebridge/internal/ports"
	"github.com/bft-labs/framebridge/pkg/log"
)

// producer is the subset of *kgo.Client used by Sink.
type producer interface {
	TryProduce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
	Flush(ctx context.Context) error
	Close()
}

// Sink publishes frames to one Kafka topic without waiting for delivery.
type Sink struct {
	client       producer
	topic        string
	flushTimeout time.Duration
	logger       log.Logger

	// flushed is set once a Flush has started with no Publish after it.
	flushed   atomic.Bool
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

var _ ports.Sink = (*Sink)(nil)

// NewSink validates cfg and creates a producer for cfg.Topic.
// Brokers are contacted lazily; an unreachable cluster surfaces as publish failures.
func NewSink(cfg Config, logger log.Logger) (*Sink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	opts, err := cfg.clientOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, kgo.WithLogger(newKgoLogger(logger, kgo.LogLevelWarn)))

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	s := newSink(client, cfg, logger)
	logger.Info("kafka producer ready",
		log.Strings("brokers", cfg.Brokers()),
		log.String("topic", cfg.Topic),
		log.String("acks", cfg.Acks))
	return s, nil
}

func newSink(client producer, cfg Config, logger log.Logger) *Sink {
	timeout := cfg.FlushTimeout
	if timeout <= 0 {
		timeout = DefaultFlushTimeout
	}
	return &Sink{
		client:       client,
		topic:        cfg.Topic,
		flushTimeout: timeout,
		logger:       logger,
	}
}

// Publish submits payload to the topic. onComplete runs on a franz-go
// goroutine with the record's partition and offset, or the delivery error.
func (s *Sink) Publish(payload []byte, onComplete ports.DeliveryFunc) {
	if onComplete == nil {
		onComplete = func(domain.Placement, error) {}
	}
	if s.closed.Load() {
		onComplete(domain.Placement{}, domain.ErrSinkClosed)
		return
	}

	s.flushed.Store(false)
	rec := &kgo.Record{Topic: s.topic, Value: payload}
	// A full client buffer fails the record with kgo.ErrMaxBuffered instead of
	// blocking the read loop. Buffered records expire after the delivery timeout.
	s.client.TryProduce(context.Background(), rec, func(r *kgo.Record, err error) {
		if err != nil {
			onComplete(domain.Placement{}, err)
			return
		}
		onComplete(domain.Placement{
			Topic:     r.Topic,
			Partition: r.Partition,
			Offset:    r.Offset,
		}, nil)
	})
}

// Flush waits until all buffered records are delivered or failed.
func (s *Sink) Flush(ctx context.Context) error {
	if s.closed.Load() {
		return nil
	}
	s.flushed.Store(true)
	return s.client.Flush(ctx)
}

// Close flushes outstanding records for up to the flush timeout, then
// closes the client. The flush is skipped when Flush already ran after the
// last Publish. Later calls return the first call's result.
func (s *Sink) Close() error {
	s.closeOnce.Do(func() {
		if !s.flushed.Load() {
			s.closeErr = s.flushBeforeClose()
		}
		s.closed.Store(true)
		s.client.Close()
		s.logger.Info("kafka producer closed", log.String("topic", s.topic))
	})
	return s.closeErr
}

func (s *Sink) flushBeforeClose() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.flushTimeout)
	defer cancel()

	if err := s.client.Flush(ctx); err != nil {
		s.logger.Warn("kafka flush incomplete, dropping buffered records",
			log.Duration("timeout", s.flushTimeout),
			log.Err(err))
		return fmt.Errorf("flush before close: %w", err)
	}
	return nil
}
