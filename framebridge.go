// Package framebridge forwards CRC-checked MODBUS RTU frames from a serial
// port to a Kafka topic.
//
// Example usage:
//
//	cfg := framebridge.DefaultConfig()
//	cfg.Port = "/dev/ttyUSB0"
//	cfg.BootstrapServers = "localhost:9092"
//	cfg.Topic = "modbus-frames"
//	if err := framebridge.Run(ctx, cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// For lifecycle control and events, use package pkg/bridge directly.
package framebridge

import (
	"context"
	"errors"
	"time"

	"github.com/bft-labs/framebridge/internal/domain"
	"github.com/bft-labs/framebridge/pkg/bridge"
)

// Config holds the bridge configuration.
type Config = bridge.Config

// DefaultConfig returns a Config with default values.
// Port, BootstrapServers and Topic still need to be set before Run.
func DefaultConfig() Config {
	return bridge.DefaultConfig()
}

// statusPollInterval is how often Run checks for a crashed bridge.
const statusPollInterval = 100 * time.Millisecond

// Run forwards frames until ctx is canceled or the bridge crashes.
// Returns the result of Stop after cancellation, and ErrCrashed after a
// fault such as a port that cannot be opened or a failing read.
func Run(ctx context.Context, cfg Config, opts ...bridge.Option) error {
	b, err := bridge.New(cfg, opts...)
	if err != nil {
		return err
	}
	if err := b.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(statusPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return b.Stop()
		case <-ticker.C:
			if b.Status() == bridge.StateCrashed {
				_ = b.Stop()
				return ErrCrashed
			}
		}
	}
}

// ErrCrashed is returned by Run when the bridge stops on a fault.
var ErrCrashed = errors.New("framebridge: bridge crashed")

// ComputeCRC16 returns the CRC16-MODBUS of data[offset:offset+length].
func ComputeCRC16(data []byte, offset, length int) uint16 {
	return domain.ComputeCRC16(data, offset, length)
}

// IsValidFrame reports whether frame ends in the CRC16-MODBUS of its payload.
func IsValidFrame(frame []byte) bool {
	return domain.IsValidFrame(frame)
}

// AppendCRC returns payload followed by its checksum, low byte first.
func AppendCRC(payload []byte) []byte {
	return domain.AppendCRC(payload)
}
