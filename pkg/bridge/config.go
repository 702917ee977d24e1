package bridge

import (
	"fmt"
	"time"

	"github.com/bft-labs/framebridge/internal/adapters/kafka"
	"github.com/bft-labs/framebridge/internal/adapters/simulated"
	"github.com/bft-labs/framebridge/internal/app"
	"github.com/bft-labs/framebridge/internal/domain"
)

// Default values applied by Config.SetDefaults.
const (
	DefaultBaudRate       = 9600
	DefaultStatusInterval = 30 * time.Second
)

// Config holds the settings of a Bridge.
type Config struct {
	// Port is the serial device. Empty selects the first detected port.
	Port        string
	BaudRate    int
	ReadTimeout time.Duration
	BufferSize  int

	// BootstrapServers is the comma separated Kafka broker list.
	BootstrapServers string
	Topic            string
	ClientID         string
	Acks             string
	Retries          int
	FlushTimeout     time.Duration

	// StatusDir receives status.json. Empty disables the status file.
	StatusDir      string
	StatusInterval time.Duration

	Simulate         bool
	SimulateInterval time.Duration
}

// DefaultConfig returns a Config with every default applied, including
// kafka.DefaultRetries. Port, BootstrapServers and Topic are left empty.
func DefaultConfig() Config {
	cfg := Config{Retries: kafka.DefaultRetries}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills zero fields with default values. Retries is left alone
// because zero disables produce retries.
func (c *Config) SetDefaults() {
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = app.DefaultReadTimeout
	}
	if c.BufferSize == 0 {
		c.BufferSize = app.DefaultBufferSize
	}
	if c.Acks == "" {
		c.Acks = kafka.DefaultAcks
	}
	if c.FlushTimeout == 0 {
		c.FlushTimeout = kafka.DefaultFlushTimeout
	}
	if c.StatusInterval == 0 {
		c.StatusInterval = DefaultStatusInterval
	}
	if c.SimulateInterval == 0 {
		c.SimulateInterval = simulated.DefaultInterval
	}
}

// Validate checks the settings that do not depend on injected components.
// Kafka settings are checked by New when no sink is injected.
func (c Config) Validate() error {
	if c.BaudRate <= 0 {
		return fmt.Errorf("%w: baud_rate must be positive, got %d", domain.ErrInvalidConfig, c.BaudRate)
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("%w: buffer_size must be positive, got %d", domain.ErrInvalidConfig, c.BufferSize)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("%w: read_timeout must not be negative", domain.ErrInvalidConfig)
	}
	if c.Retries < 0 {
		return fmt.Errorf("%w: retries must not be negative", domain.ErrInvalidConfig)
	}
	if c.FlushTimeout < 0 || c.FlushTimeout >= app.ShutdownTimeout {
		return fmt.Errorf("%w: flush_timeout must be below %s, got %s",
			domain.ErrInvalidConfig, app.ShutdownTimeout, c.FlushTimeout)
	}
	if c.Simulate && c.BufferSize < simulated.FrameSize() {
		return fmt.Errorf("%w: buffer_size %d cannot hold a %d byte simulated frame",
			domain.ErrInvalidConfig, c.BufferSize, simulated.FrameSize())
	}
	if c.StatusDir != "" && c.StatusInterval <= 0 {
		return fmt.Errorf("%w: status_interval must be positive", domain.ErrInvalidConfig)
	}
	return nil
}

func (c Config) kafkaConfig() kafka.Config {
	return kafka.Config{
		BootstrapServers: c.BootstrapServers,
		Topic:            c.Topic,
		ClientID:         c.ClientID,
		Acks:             c.Acks,
		Retries:          c.Retries,
		FlushTimeout:     c.FlushTimeout,
	}
}

func (c Config) pipelineConfig() app.PipelineConfig {
	return app.PipelineConfig{
		PortName: c.Port,
		BaudRate: c.BaudRate,
		Source: app.SourceConfig{
			ReadTimeout: c.ReadTimeout,
			BufferSize:  c.BufferSize,
		},
		FlushTimeout: c.FlushTimeout,
	}
}
