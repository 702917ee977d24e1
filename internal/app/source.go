package app

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/framebridge/internal/domain"
	"github.com/bft-labs/framebridge/internal/ports"
	"github.com/bft-labs/framebridge/pkg/log"
)

// Default read parameters.
const (
	DefaultReadTimeout = 1000 * time.Millisecond
	DefaultBufferSize  = 256
	DefaultDataBits    = 8
)

// SourceConfig contains the tunable read parameters of a FrameSource.
// Framing (8 data bits, 1 stop bit, no parity) is fixed.
type SourceConfig struct {
	ReadTimeout time.Duration
	BufferSize  int
}

// FrameHandler receives one frame per successful read.
type FrameHandler func(frame domain.Frame)

// FrameSource turns a byte-oriented transport into frames.
// Whatever bytes arrive in one read call form one frame: messages split
// across reads or coalesced into one read are passed on as they are.
type FrameSource struct {
	opener ports.TransportOpener
	logger log.Logger

	mu         sync.Mutex
	transport  ports.Transport
	portName   string
	bufferSize int
	closed     atomic.Bool
}

// NewFrameSource creates a source that opens its transport through opener.
func NewFrameSource(opener ports.TransportOpener, logger log.Logger) *FrameSource {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &FrameSource{
		opener:     opener,
		logger:     logger,
		bufferSize: DefaultBufferSize,
	}
}

// Initialize opens portName at baudRate with 8N1 framing and a blocking read
// bounded by cfg.ReadTimeout. Returns false if the port could not be opened;
// ReadLoop must not be called in that case.
func (s *FrameSource) Initialize(portName string, baudRate int, cfg SourceConfig) bool {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultBufferSize
	}

	settings := ports.SerialSettings{
		BaudRate:    baudRate,
		DataBits:    DefaultDataBits,
		StopBits:    ports.OneStopBit,
		Parity:      ports.ParityNone,
		ReadTimeout: cfg.ReadTimeout,
	}

	t, err := s.opener.Open(portName, settings)
	if err != nil {
		s.logger.Error("port open failed",
			log.String("port", portName),
			log.Int("baud", baudRate),
			log.Err(err))
		return false
	}

	s.mu.Lock()
	s.transport = t
	s.portName = portName
	s.bufferSize = cfg.BufferSize
	s.closed.Store(false)
	s.mu.Unlock()

	s.logger.Info("port opened",
		log.String("port", portName),
		log.Int("baud", baudRate),
		log.Duration("read_timeout", cfg.ReadTimeout))
	return true
}

// ReadLoop reads until the transport is closed or fails.
// Each read yielding n > 0 bytes is copied into a new frame of length n and
// passed to onFrame. Empty and timed-out reads are retried silently.
// Returns domain.ErrSourceClosed after Close, or the wrapped read fault.
func (s *FrameSource) ReadLoop(onFrame FrameHandler) error {
	s.mu.Lock()
	t, port, size := s.transport, s.portName, s.bufferSize
	s.mu.Unlock()

	if t == nil {
		return domain.ErrSourceNotOpen
	}

	buf := make([]byte, size)
	for {
		n, err := t.Read(buf)
		if n > 0 {
			frame := domain.NewFrame(buf, n)
			s.logger.Debug("frame received",
				log.Int("bytes", n),
				log.String("data", frame.Hex()))
			onFrame(frame)
		}

		if err == nil {
			if n == 0 && s.closed.Load() {
				return domain.ErrSourceClosed
			}
			continue
		}
		if s.closed.Load() {
			return domain.ErrSourceClosed
		}
		if isTimeout(err) {
			continue
		}

		s.logger.Error("serial read failed", log.String("port", port), log.Err(err))
		return fmt.Errorf("read %s: %w", port, err)
	}
}

// Close closes the transport if open. Safe to call multiple times.
func (s *FrameSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transport == nil || s.closed.Load() {
		return nil
	}
	s.closed.Store(true)

	err := s.transport.Close()
	if err != nil {
		s.logger.Warn("port close failed", log.String("port", s.portName), log.Err(err))
		return err
	}
	s.logger.Info("port closed", log.String("port", s.portName))
	return nil
}

// PortName returns the name of the opened port, or "" before Initialize.
func (s *FrameSource) PortName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.portName
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
