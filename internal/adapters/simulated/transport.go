// Package simulated provides a serial transport that emits a fixed
// MODBUS response on a timer, for running the bridge without hardware.
package simulated

import (
	"os"
	"sync"
	"time"

	"github.com/bft-labs/framebridge/internal/domain"
	"github.com/bft-labs/framebridge/internal/ports"
	"github.com/bft-labs/framebridge/pkg/log"
)

// PortName is reported by Detector and logged as the open port.
const PortName = "simulated"

// DefaultInterval is the pause between emitted frames.
const DefaultInterval = 5 * time.Second

// ResponsePayload is a read-holding-registers reply; the CRC is appended on emit.
var ResponsePayload = []byte{0x01, 0x03, 0x02, 0x00, 0x7D, 0x00}

// FrameSize is the length of an emitted frame. Smaller read buffers truncate it.
func FrameSize() int { return len(ResponsePayload) + domain.CRCSize }

// Opener hands out simulated transports. It ignores the port name.
type Opener struct {
	interval time.Duration
	frame    []byte
	logger   log.Logger
}

var _ ports.TransportOpener = (*Opener)(nil)

// NewOpener returns an opener whose transports emit one frame per interval.
func NewOpener(interval time.Duration, logger log.Logger) *Opener {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Opener{
		interval: interval,
		frame:    domain.AppendCRC(ResponsePayload),
		logger:   logger,
	}
}

// Open starts a transport.
func (o *Opener) Open(portName string, settings ports.SerialSettings) (ports.Transport, error) {
	o.logger.Info("simulated transport started",
		log.String("port", portName),
		log.Duration("interval", o.interval),
		log.String("frame", domain.Frame(o.frame).Hex()))
	return newTransport(o.frame, o.interval, settings.ReadTimeout), nil
}

// Transport emits frame on every tick. Reads honor the read timeout
// like a serial driver, returning (0, nil) when no tick arrived.
type Transport struct {
	frame       []byte
	ticker      *time.Ticker
	readTimeout time.Duration

	done      chan struct{}
	closeOnce sync.Once
}

func newTransport(frame []byte, interval, readTimeout time.Duration) *Transport {
	return &Transport{
		frame:       frame,
		ticker:      time.NewTicker(interval),
		readTimeout: readTimeout,
		done:        make(chan struct{}),
	}
}

// Read blocks until the next tick, the read timeout or Close.
func (t *Transport) Read(p []byte) (int, error) {
	var timeout <-chan time.Time
	if t.readTimeout > 0 {
		timer := time.NewTimer(t.readTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-t.done:
		return 0, os.ErrClosed
	case <-t.ticker.C:
		return copy(p, t.frame), nil
	case <-timeout:
		return 0, nil
	}
}

// Close stops the ticker and unblocks pending reads.
func (t *Transport) Close() error {
	t.closeOnce.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
	return nil
}

// Detector always reports PortName.
type Detector struct{}

// DetectAvailablePort returns PortName.
func (Detector) DetectAvailablePort() (string, error) { return PortName, nil }
