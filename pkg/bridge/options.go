package bridge

import (
	"github.com/bft-labs/framebridge/internal/domain"
	"github.com/bft-labs/framebridge/internal/ports"
	"github.com/bft-labs/framebridge/pkg/log"
)

// Re-exported types so callers can implement the injectable components.
type (
	// Logger is the structured logger used by the bridge.
	Logger = log.Logger

	// LogField is a structured log field.
	LogField = log.Field

	// Sink receives valid frames.
	Sink = ports.Sink

	// DeliveryFunc is invoked once per published frame.
	DeliveryFunc = ports.DeliveryFunc

	// Placement is the topic, partition and offset of a delivered frame.
	Placement = domain.Placement

	// Transport is an open serial connection.
	Transport = ports.Transport

	// TransportOpener opens serial connections.
	TransportOpener = ports.TransportOpener

	// SerialSettings are the line parameters passed to a TransportOpener.
	SerialSettings = ports.SerialSettings

	// PortDetector finds a serial port when Config.Port is empty.
	PortDetector = ports.PortDetector

	// Stats is a snapshot of the bridge counters.
	Stats = domain.StatsSnapshot

	// Report is the snapshot persisted to status.json.
	Report = domain.Status
)

// Option configures optional behavior of a Bridge.
type Option func(*options)

type options struct {
	logger       log.Logger
	eventHandler EventHandler
	plugins      []Plugin
	sink         ports.Sink
	opener       ports.TransportOpener
	detector     ports.PortDetector
}

// WithLogger sets the logger. Without it the bridge logs nothing.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for bridge events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when the bridge starts.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithSink replaces the Kafka producer. The sink is flushed and closed
// when the bridge stops, so it cannot be reused across restarts.
func WithSink(sink Sink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithTransportOpener replaces the serial driver.
func WithTransportOpener(opener TransportOpener) Option {
	return func(o *options) {
		o.opener = opener
	}
}

// WithPortDetector replaces serial port enumeration.
func WithPortDetector(detector PortDetector) Option {
	return func(o *options) {
		o.detector = detector
	}
}
