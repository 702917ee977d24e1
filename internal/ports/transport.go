package ports

import (
	"io"
	"time"
)

// Transport is an open byte-stream connection.
// Read blocks for at most the configured read timeout and returns (0, nil)
// when nothing arrived in that window. Close unblocks a pending Read.
type Transport interface {
	io.Reader
	io.Closer
}

// Parity selects the parity bit of a serial link.
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
)

// StopBits selects the number of stop bits of a serial link.
type StopBits int

const (
	OneStopBit StopBits = iota
	TwoStopBits
)

// SerialSettings holds the line parameters used to open a transport.
type SerialSettings struct {
	BaudRate    int
	DataBits    int
	StopBits    StopBits
	Parity      Parity
	ReadTimeout time.Duration
}

// TransportOpener opens the named port with the given settings.
type TransportOpener interface {
	Open(portName string, settings SerialSettings) (Transport, error)
}

// TransportOpenerFunc adapts a function to TransportOpener.
type TransportOpenerFunc func(portName string, settings SerialSettings) (Transport, error)

// Open calls f(portName, settings).
func (f TransportOpenerFunc) Open(portName string, settings SerialSettings) (Transport, error) {
	return f(portName, settings)
}

// PortDetector enumerates platform-visible serial endpoints.
type PortDetector interface {
	// DetectAvailablePort returns the first port found.
	// Returns domain.ErrNoPortFound when there is none.
	DetectAvailablePort() (string, error)
}
