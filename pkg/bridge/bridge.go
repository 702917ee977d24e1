package bridge

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bft-labs/framebridge/internal/adapters/fs"
	"github.com/bft-labs/framebridge/internal/adapters/kafka"
	"github.com/bft-labs/framebridge/internal/adapters/serial"
	"github.com/bft-labs/framebridge/internal/adapters/simulated"
	"github.com/bft-labs/framebridge/internal/app"
	"github.com/bft-labs/framebridge/internal/domain"
	"github.com/bft-labs/framebridge/internal/ports"
	"github.com/bft-labs/framebridge/pkg/log"
)

// statusWriteTimeout bounds a single status.json write.
const statusWriteTimeout = 5 * time.Second

// Bridge forwards CRC-valid serial frames to Kafka.
// Use New() to create an instance, then Start() to begin forwarding.
type Bridge struct {
	config     Config
	lifecycle  *app.Lifecycle
	source     *app.FrameSource
	pipeline   *app.Pipeline
	statusRepo ports.StatusRepository
	logger     log.Logger
	plugins    []Plugin

	mu        sync.RWMutex
	cancel    context.CancelFunc
	startedAt time.Time
}

// New creates a Bridge in StateStopped. Without WithSink, the Kafka
// settings must name bootstrap.servers and topic.name.
func New(cfg Config, opts ...Option) (*Bridge, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}

	opener, detector := o.opener, o.detector
	if cfg.Simulate {
		if opener == nil {
			opener = simulated.NewOpener(cfg.SimulateInterval, logger)
		}
		if detector == nil {
			detector = simulated.Detector{}
		}
	} else {
		if opener == nil {
			opener = serial.NewOpener(logger)
		}
		if detector == nil {
			detector = serial.NewDetector(logger)
		}
	}

	newSink, err := sinkFactory(cfg, o.sink, logger)
	if err != nil {
		return nil, err
	}

	source := app.NewFrameSource(opener, logger)
	pipeline := app.NewPipeline(cfg.pipelineConfig(), source, detector, newSink, logger, emitter)

	var statusRepo ports.StatusRepository
	if cfg.StatusDir != "" {
		statusRepo = fs.NewStatusFile(cfg.StatusDir)
	}

	return &Bridge{
		config:     cfg,
		lifecycle:  app.NewLifecycle(logger, emitter),
		source:     source,
		pipeline:   pipeline,
		statusRepo: statusRepo,
		logger:     logger,
		plugins:    o.plugins,
	}, nil
}

func sinkFactory(cfg Config, injected ports.Sink, logger log.Logger) (app.SinkFactory, error) {
	if injected != nil {
		return func() (ports.Sink, error) { return injected, nil }, nil
	}
	kcfg := cfg.kafkaConfig()
	if err := kcfg.Validate(); err != nil {
		return nil, err
	}
	return func() (ports.Sink, error) {
		return kafka.NewSink(kcfg, logger)
	}, nil
}

// Start begins forwarding in the background and returns immediately.
// Returns domain.ErrAlreadyRunning unless the bridge is stopped or crashed.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := b.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.lifecycle.SetCancel(cancel)
	b.startedAt = time.Now().UTC()

	pluginCfg := PluginConfig{
		Port:      b.config.Port,
		Topic:     b.config.Topic,
		StatusDir: b.config.StatusDir,
		Logger:    b.logger,
	}
	for _, p := range b.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			b.logger.Error("plugin initialization failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			cancel()
			_ = b.lifecycle.TransitionTo(app.StateCrashed, "plugin init failed: "+p.Name())
			return err
		}
		b.logger.Info("plugin initialized", log.String("plugin", p.Name()))
	}

	if b.statusRepo != nil {
		b.lifecycle.AddWorker()
		go func() {
			defer b.lifecycle.WorkerDone()
			b.statusLoop(runCtx)
		}()
	}

	b.lifecycle.AddWorker()
	go func() {
		defer b.lifecycle.WorkerDone()

		if err := b.lifecycle.TransitionTo(app.StateRunning, "pipeline starting"); err != nil {
			b.logger.Error("failed to transition to running", log.Err(err))
			return
		}

		err := b.pipeline.Run(runCtx)
		if err != nil && !errors.Is(err, context.Canceled) {
			b.logger.Error("pipeline stopped", log.Err(err))
			_ = b.lifecycle.TransitionTo(app.StateCrashed, err.Error())
		}
	}()

	return nil
}

// Stop closes the port, flushes outstanding publishes and shuts plugins
// down. Waits up to app.ShutdownTimeout; returns domain.ErrShutdownTimeout
// if workers are still busy after that.
func (b *Bridge) Stop() error {
	b.mu.Lock()

	if !b.lifecycle.CanStop() {
		b.mu.Unlock()
		return domain.ErrNotRunning
	}
	if err := b.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		b.mu.Unlock()
		return err
	}
	if b.cancel != nil {
		b.cancel()
	}

	b.mu.Unlock()

	err := b.lifecycle.WaitWithTimeout(app.ShutdownTimeout)

	shutdownCtx := context.Background()
	for i := len(b.plugins) - 1; i >= 0; i-- {
		p := b.plugins[i]
		if shutdownErr := p.Shutdown(shutdownCtx); shutdownErr != nil {
			b.logger.Error("plugin shutdown failed",
				log.String("plugin", p.Name()),
				log.Err(shutdownErr))
		} else {
			b.logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
		}
	}

	if err != nil {
		_ = b.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = b.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}
	b.writeStatus()

	return err
}

// Status returns the current lifecycle state.
func (b *Bridge) Status() State {
	return convertState(b.lifecycle.State())
}

// Stats returns a snapshot of the frame counters. Counters accumulate
// across restarts of the same Bridge.
func (b *Bridge) Stats() Stats {
	return b.pipeline.Stats().Snapshot()
}

// Report returns the status document written to status.json.
func (b *Bridge) Report() Report {
	b.mu.RLock()
	started := b.startedAt
	b.mu.RUnlock()

	port := b.source.PortName()
	if port == "" {
		port = b.config.Port
	}
	return Report{
		Port:      port,
		Topic:     b.config.Topic,
		State:     b.Status().String(),
		StartedAt: started,
		UpdatedAt: time.Now().UTC(),
		Stats:     b.Stats(),
	}
}

func (b *Bridge) statusLoop(ctx context.Context) {
	ticker := time.NewTicker(b.config.StatusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.writeStatus()
		}
	}
}

func (b *Bridge) writeStatus() {
	if b.statusRepo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), statusWriteTimeout)
	defer cancel()

	report := b.Report()
	if err := b.statusRepo.Save(ctx, report); err != nil {
		b.logger.Warn("status write failed",
			log.String("dir", b.config.StatusDir),
			log.Err(err))
		return
	}
	b.logger.Debug("status written",
		log.String("state", report.State),
		log.Uint64("frames_published", report.Stats.FramesPublished))
}
