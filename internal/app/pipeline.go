package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bft-labs/framebridge/internal/domain"
	"github.com/bft-labs/framebridge/internal/ports"
	"github.com/bft-labs/framebridge/pkg/log"
)

// DefaultFlushTimeout bounds how long shutdown waits for in-flight publishes.
const DefaultFlushTimeout = 10 * time.Second

// Reasons reported for dropped frames.
const (
	RejectUndersized  = "undersized"
	RejectCRCMismatch = "crc_mismatch"
)

// PipelineConfig contains configuration for the forwarding pipeline.
type PipelineConfig struct {
	// PortName is the serial port to open. Empty means detect.
	PortName string
	BaudRate int
	Source   SourceConfig

	FlushTimeout time.Duration
}

// SinkFactory constructs the publish target once the transport is open.
type SinkFactory func() (ports.Sink, error)

// PipelineEventEmitter is notified of per-frame outcomes.
// OnPublishSuccess and OnPublishError run on the sink's goroutines.
type PipelineEventEmitter interface {
	OnFrameRejected(frame domain.Frame, reason string)
	OnPublishSuccess(placement domain.Placement, size int)
	OnPublishError(err error, size int)
}

// Pipeline forwards validated frames from a FrameSource to a Sink.
type Pipeline struct {
	config   PipelineConfig
	source   *FrameSource
	detector ports.PortDetector
	newSink  SinkFactory
	logger   log.Logger
	emitter  PipelineEventEmitter
	stats    *domain.Stats
}

// NewPipeline creates a pipeline with the given dependencies.
// detector may be nil when config.PortName is set.
func NewPipeline(
	config PipelineConfig,
	source *FrameSource,
	detector ports.PortDetector,
	newSink SinkFactory,
	logger log.Logger,
	emitter PipelineEventEmitter,
) *Pipeline {
	if config.FlushTimeout <= 0 {
		config.FlushTimeout = DefaultFlushTimeout
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Pipeline{
		config:   config,
		source:   source,
		detector: detector,
		newSink:  newSink,
		logger:   logger,
		emitter:  emitter,
		stats:    &domain.Stats{},
	}
}

// Stats returns the live counters of this pipeline.
func (p *Pipeline) Stats() *domain.Stats {
	return p.stats
}

// Run acquires the transport and the sink, forwards frames until ctx is
// canceled or the transport fails, then closes the source and flushes and
// closes the sink. Startup failures release whatever was acquired.
// Returns ctx.Err() after cancellation and the read fault otherwise.
func (p *Pipeline) Run(ctx context.Context) error {
	port, err := p.resolvePort()
	if err != nil {
		return err
	}

	if !p.source.Initialize(port, p.config.BaudRate, p.config.Source) {
		return fmt.Errorf("%w: %s", domain.ErrPortOpen, port)
	}

	sink, err := p.newSink()
	if err != nil {
		p.logger.Error("sink initialization failed", log.Err(err))
		_ = p.source.Close()
		return fmt.Errorf("create sink: %w", err)
	}
	defer p.shutdown(sink)

	// Closing the transport is the only way to unblock a pending read.
	stop := context.AfterFunc(ctx, func() { _ = p.source.Close() })
	defer stop()

	err = p.Forward(p.source, sink)
	if ctx.Err() != nil && (err == nil || errors.Is(err, domain.ErrSourceClosed)) {
		return ctx.Err()
	}
	return err
}

// Forward runs the source's read loop, publishing valid frames to sink in
// read order. Invalid frames and publish failures never stop the loop.
func (p *Pipeline) Forward(source *FrameSource, sink ports.Sink) error {
	return source.ReadLoop(func(frame domain.Frame) {
		p.handle(sink, frame)
	})
}

func (p *Pipeline) handle(sink ports.Sink, frame domain.Frame) {
	p.stats.RecordRead(len(frame))

	if !frame.Valid() {
		p.stats.RecordInvalid()
		p.reject(frame)
		return
	}
	p.stats.RecordValid()

	size := len(frame)
	sink.Publish(frame, func(placement domain.Placement, err error) {
		if err != nil {
			p.stats.RecordPublishFailure()
			p.logger.Error("publish failed", log.Int("bytes", size), log.Err(err))
			if p.emitter != nil {
				p.emitter.OnPublishError(err, size)
			}
			return
		}

		p.stats.RecordPublished(placement)
		p.logger.Info("frame delivered",
			log.String("topic", placement.Topic),
			log.Int32("partition", placement.Partition),
			log.Int64("offset", placement.Offset))
		if p.emitter != nil {
			p.emitter.OnPublishSuccess(placement, size)
		}
	})
}

func (p *Pipeline) reject(frame domain.Frame) {
	reason := RejectCRCMismatch
	fields := []log.Field{
		log.Int("bytes", len(frame)),
		log.String("data", frame.Hex()),
	}
	if len(frame) < domain.MinFrameSize {
		reason = RejectUndersized
	} else {
		expected, _ := domain.ExpectedCRC(frame)
		computed := domain.ComputeCRC16(frame, 0, len(frame)-domain.CRCSize)
		fields = append(fields, log.Uint16("expected", expected), log.Uint16("computed", computed))
	}
	fields = append(fields, log.String("reason", reason))

	p.logger.Error("crc validation failed, frame dropped", fields...)
	if p.emitter != nil {
		p.emitter.OnFrameRejected(frame, reason)
	}
}

func (p *Pipeline) resolvePort() (string, error) {
	if p.config.PortName != "" {
		return p.config.PortName, nil
	}
	if p.detector == nil {
		return "", domain.ErrNoPortFound
	}
	port, err := p.detector.DetectAvailablePort()
	if err != nil {
		p.logger.Error("no serial port available", log.Err(err))
		return "", err
	}
	return port, nil
}

// shutdown closes the source before the sink so no publish can race the flush.
func (p *Pipeline) shutdown(sink ports.Sink) {
	_ = p.source.Close()

	ctx, cancel := context.WithTimeout(context.Background(), p.config.FlushTimeout)
	defer cancel()

	start := time.Now()
	if err := sink.Flush(ctx); err != nil {
		p.logger.Warn("sink flush incomplete",
			log.Duration("timeout", p.config.FlushTimeout),
			log.Err(err))
	} else {
		p.logger.Debug("sink flushed", log.Duration("duration", time.Since(start)))
	}

	if err := sink.Close(); err != nil {
		p.logger.Error("sink close failed", log.Err(err))
	}
}
