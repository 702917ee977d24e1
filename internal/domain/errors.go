package domain

import "errors"

// Domain errors represent error conditions in the framebridge domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running instance.
	ErrAlreadyRunning = errors.New("framebridge: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped instance.
	ErrNotRunning = errors.New("framebridge: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("framebridge: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("framebridge: invalid configuration")

	// ErrMissingConfig is returned when a required configuration key is absent.
	// The wrapping error names the key.
	ErrMissingConfig = errors.New("framebridge: missing required configuration")

	// ErrNoPortFound is returned when port detection finds no serial endpoint.
	ErrNoPortFound = errors.New("framebridge: no serial port found")

	// ErrPortOpen is returned when the serial transport cannot be opened.
	ErrPortOpen = errors.New("framebridge: cannot open serial port")

	// ErrSourceNotOpen is returned when ReadLoop is called before a successful Initialize.
	ErrSourceNotOpen = errors.New("framebridge: frame source not open")

	// ErrSourceClosed is returned by ReadLoop when the source was closed while reading.
	ErrSourceClosed = errors.New("framebridge: frame source closed")

	// ErrSinkClosed is reported to publish callbacks after the sink is closed.
	ErrSinkClosed = errors.New("framebridge: sink closed")
)
