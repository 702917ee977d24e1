package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/framebridge/internal/adapters/kafka"
	"github.com/bft-labs/framebridge/internal/domain"
	"github.com/bft-labs/framebridge/pkg/bridge"
	"github.com/bft-labs/framebridge/pkg/log"
)

// Config holds CLI configuration for framebridge.
type Config struct {
	Port        string
	BaudRate    int
	ReadTimeout time.Duration
	BufferSize  int

	BootstrapServers string
	Topic            string
	ClientID         string
	Acks             string
	Retries          int
	FlushTimeout     time.Duration

	StatusDir      string
	StatusInterval time.Duration

	Simulate         bool
	SimulateInterval time.Duration

	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		BaudRate:         bridge.DefaultBaudRate,
		ReadTimeout:      time.Second,
		BufferSize:       256,
		ClientID:         "framebridge",
		Acks:             kafka.DefaultAcks,
		Retries:          kafka.DefaultRetries,
		FlushTimeout:     kafka.DefaultFlushTimeout,
		StatusInterval:   bridge.DefaultStatusInterval,
		SimulateInterval: 5 * time.Second,
		LogLevel:         "info",
	}
}

// Validate checks the configuration for errors and normalizes string values.
func (c *Config) Validate() error {
	c.Port = strings.TrimSpace(c.Port)
	c.BootstrapServers = strings.TrimSpace(c.BootstrapServers)
	c.Topic = strings.TrimSpace(c.Topic)
	c.Acks = strings.ToLower(strings.TrimSpace(c.Acks))

	if c.BootstrapServers == "" {
		return fmt.Errorf("%w: %s", domain.ErrMissingConfig, kafka.KeyBootstrapServers)
	}
	if c.Topic == "" {
		return fmt.Errorf("%w: %s", domain.ErrMissingConfig, kafka.KeyTopicName)
	}

	switch c.Acks {
	case "all", "leader", "none":
	default:
		return fmt.Errorf("%w: acks must be all, leader or none, got %q", domain.ErrInvalidConfig, c.Acks)
	}

	if c.BaudRate <= 0 {
		return fmt.Errorf("%w: baud rate must be positive", domain.ErrInvalidConfig)
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("%w: buffer size must be positive", domain.ErrInvalidConfig)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("%w: read timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.Retries < 0 {
		return fmt.Errorf("%w: retries must not be negative", domain.ErrInvalidConfig)
	}
	if c.FlushTimeout <= 0 {
		return fmt.Errorf("%w: flush timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.StatusInterval <= 0 {
		return fmt.Errorf("%w: status interval must be positive", domain.ErrInvalidConfig)
	}
	if c.Simulate && c.SimulateInterval <= 0 {
		return fmt.Errorf("%w: simulate interval must be positive", domain.ErrInvalidConfig)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}

	return c.BridgeConfig().Validate()
}

// BridgeConfig converts c into the library configuration.
func (c Config) BridgeConfig() bridge.Config {
	return bridge.Config{
		Port:             c.Port,
		BaudRate:         c.BaudRate,
		ReadTimeout:      c.ReadTimeout,
		BufferSize:       c.BufferSize,
		BootstrapServers: c.BootstrapServers,
		Topic:            c.Topic,
		ClientID:         c.ClientID,
		Acks:             c.Acks,
		Retries:          c.Retries,
		FlushTimeout:     c.FlushTimeout,
		StatusDir:        c.StatusDir,
		StatusInterval:   c.StatusInterval,
		Simulate:         c.Simulate,
		SimulateInterval: c.SimulateInterval,
	}
}

// Load layers the config file at path (if it exists) and FRAMEBRIDGE_*
// variables over base, leaving fields whose flags are in changed alone,
// and validates the result. base is not modified.
func Load(path string, base Config, changed map[string]bool) (Config, error) {
	cfg := base

	if path != "" && FileExists(path) {
		fc, err := LoadFileConfig(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		if err := ApplyFileConfig(&cfg, fc, changed); err != nil {
			return cfg, err
		}
	}

	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setIntPtr sets an int value from a pointer, allowing zero.
func (s *configSetter) setIntPtr(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if positive.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setCountFromString is setIntFromString for settings where zero is meaningful.
func (s *configSetter) setCountFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i < 0 {
		return fmt.Errorf("parse %s: negative value %d", flag, i)
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
