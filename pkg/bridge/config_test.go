package bridge

import (
	"errors"
	"testing"
	"time"

	"github.com/bft-labs/framebridge/internal/adapters/kafka"
	"github.com/bft-labs/framebridge/internal/app"
	"github.com/bft-labs/framebridge/internal/domain"
)

func TestDefaultConfig_Retries(t *testing.T) {
	if got := DefaultConfig().Retries; got != kafka.DefaultRetries {
		t.Errorf("DefaultConfig().Retries = %d, want %d", got, kafka.DefaultRetries)
	}
}

func TestNew_KeepsZeroRetries(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = "/dev/ttyUSB0"
	cfg.BootstrapServers = "localhost:9092"
	cfg.Topic = "frames"
	cfg.Retries = 0

	b, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := b.config.kafkaConfig().Retries; got != 0 {
		t.Errorf("kafka Retries = %d, want 0", got)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero retries", func(c *Config) { c.Retries = 0 }, false},
		{"negative retries", func(c *Config) { c.Retries = -1 }, true},
		{"zero baud", func(c *Config) { c.BaudRate = 0 }, true},
		{"flush timeout at shutdown timeout", func(c *Config) { c.FlushTimeout = app.ShutdownTimeout }, true},
		{"flush timeout below shutdown timeout", func(c *Config) { c.FlushTimeout = app.ShutdownTimeout - time.Second }, false},
		{"negative flush timeout", func(c *Config) { c.FlushTimeout = -time.Second }, true},
		{"simulate with small buffer", func(c *Config) { c.Simulate = true; c.BufferSize = 7 }, true},
		{"simulate with exact buffer", func(c *Config) { c.Simulate = true; c.BufferSize = 8 }, false},
		{"small buffer without simulate", func(c *Config) { c.BufferSize = 7 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
