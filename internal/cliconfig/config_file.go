package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
// Kafka settings use dotted keys:
//
//	bootstrap.servers = "broker1:9092,broker2:9092"
//	topic.name = "modbus-frames"
type FileConfig struct {
	Port             string           `toml:"port"`
	BaudRate         int              `toml:"baud_rate"`
	ReadTimeout      string           `toml:"read_timeout"`
	BufferSize       int              `toml:"buffer_size"`
	Bootstrap        BootstrapSection `toml:"bootstrap"`
	Topic            TopicSection     `toml:"topic"`
	ClientID         string           `toml:"client_id"`
	Acks             string           `toml:"acks"`
	Retries          *int             `toml:"retries"`
	FlushTimeout     string           `toml:"flush_timeout"`
	StatusDir        string           `toml:"status_dir"`
	StatusInterval   string           `toml:"status_interval"`
	Simulate         *bool            `toml:"simulate"`
	SimulateInterval string           `toml:"simulate_interval"`
	LogLevel         string           `toml:"log_level"`
}

// BootstrapSection holds the bootstrap.* keys.
type BootstrapSection struct {
	Servers string `toml:"servers"`
}

// TopicSection holds the topic.* keys.
type TopicSection struct {
	Name string `toml:"name"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.framebridge/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".framebridge", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("port", fc.Port, &cfg.Port)
	s.setString("bootstrap-servers", fc.Bootstrap.Servers, &cfg.BootstrapServers)
	s.setString("topic", fc.Topic.Name, &cfg.Topic)
	s.setString("client-id", fc.ClientID, &cfg.ClientID)
	s.setString("acks", fc.Acks, &cfg.Acks)
	s.setString("status-dir", fc.StatusDir, &cfg.StatusDir)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setInt("baud-rate", fc.BaudRate, &cfg.BaudRate)
	s.setInt("buffer-size", fc.BufferSize, &cfg.BufferSize)
	s.setIntPtr("retries", fc.Retries, &cfg.Retries)

	if err := s.setDuration("read-timeout", fc.ReadTimeout, &cfg.ReadTimeout); err != nil {
		return err
	}
	if err := s.setDuration("flush-timeout", fc.FlushTimeout, &cfg.FlushTimeout); err != nil {
		return err
	}
	if err := s.setDuration("status-interval", fc.StatusInterval, &cfg.StatusInterval); err != nil {
		return err
	}
	if err := s.setDuration("simulate-interval", fc.SimulateInterval, &cfg.SimulateInterval); err != nil {
		return err
	}

	s.setBool("simulate", fc.Simulate, &cfg.Simulate)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
