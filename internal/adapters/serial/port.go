// Package serial implements the transport ports on top of go.bug.st/serial.
package serial

import (
	"fmt"

	bugst "go.bug.st/serial"

	"github.com/bft-labs/framebridge/internal/ports"
	"github.com/bft-labs/framebridge/pkg/log"
)

// Opener implements ports.TransportOpener for local serial ports.
type Opener struct {
	logger log.Logger
	open   func(name string, mode *bugst.Mode) (bugst.Port, error)
}

// NewOpener creates an opener backed by the operating system's serial driver.
func NewOpener(logger log.Logger) *Opener {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Opener{logger: logger, open: bugst.Open}
}

// Open opens portName with the given line settings and read timeout.
// Reads on the returned transport return (0, nil) when the timeout elapses.
func (o *Opener) Open(portName string, settings ports.SerialSettings) (ports.Transport, error) {
	mode := ModeFor(settings)

	p, err := o.open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", portName, err)
	}

	if settings.ReadTimeout > 0 {
		if err := p.SetReadTimeout(settings.ReadTimeout); err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("set read timeout on %s: %w", portName, err)
		}
	}

	o.logger.Debug("serial mode applied",
		log.String("port", portName),
		log.Int("baud", mode.BaudRate),
		log.Int("data_bits", mode.DataBits),
		log.Any("parity", mode.Parity),
		log.Any("stop_bits", mode.StopBits))

	return p, nil
}

// ModeFor translates line settings into a go.bug.st/serial mode.
func ModeFor(settings ports.SerialSettings) *bugst.Mode {
	mode := &bugst.Mode{
		BaudRate: settings.BaudRate,
		DataBits: settings.DataBits,
		Parity:   bugst.NoParity,
		StopBits: bugst.OneStopBit,
	}

	switch settings.Parity {
	case ports.ParityOdd:
		mode.Parity = bugst.OddParity
	case ports.ParityEven:
		mode.Parity = bugst.EvenParity
	}

	if settings.StopBits == ports.TwoStopBits {
		mode.StopBits = bugst.TwoStopBits
	}

	return mode
}
