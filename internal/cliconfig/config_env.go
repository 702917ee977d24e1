package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (FRAMEBRIDGE_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("port", os.Getenv("FRAMEBRIDGE_PORT"), &cfg.Port)
	s.setString("bootstrap-servers", os.Getenv("FRAMEBRIDGE_BOOTSTRAP_SERVERS"), &cfg.BootstrapServers)
	s.setString("topic", os.Getenv("FRAMEBRIDGE_TOPIC_NAME"), &cfg.Topic)
	s.setString("client-id", os.Getenv("FRAMEBRIDGE_CLIENT_ID"), &cfg.ClientID)
	s.setString("acks", os.Getenv("FRAMEBRIDGE_ACKS"), &cfg.Acks)
	s.setString("status-dir", os.Getenv("FRAMEBRIDGE_STATUS_DIR"), &cfg.StatusDir)
	s.setString("log-level", os.Getenv("FRAMEBRIDGE_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setIntFromString("baud-rate", os.Getenv("FRAMEBRIDGE_BAUD_RATE"), &cfg.BaudRate); err != nil {
		return err
	}
	if err := s.setIntFromString("buffer-size", os.Getenv("FRAMEBRIDGE_BUFFER_SIZE"), &cfg.BufferSize); err != nil {
		return err
	}
	if err := s.setCountFromString("retries", os.Getenv("FRAMEBRIDGE_RETRIES"), &cfg.Retries); err != nil {
		return err
	}

	if err := s.setDuration("read-timeout", os.Getenv("FRAMEBRIDGE_READ_TIMEOUT"), &cfg.ReadTimeout); err != nil {
		return err
	}
	if err := s.setDuration("flush-timeout", os.Getenv("FRAMEBRIDGE_FLUSH_TIMEOUT"), &cfg.FlushTimeout); err != nil {
		return err
	}
	if err := s.setDuration("status-interval", os.Getenv("FRAMEBRIDGE_STATUS_INTERVAL"), &cfg.StatusInterval); err != nil {
		return err
	}
	if err := s.setDuration("simulate-interval", os.Getenv("FRAMEBRIDGE_SIMULATE_INTERVAL"), &cfg.SimulateInterval); err != nil {
		return err
	}

	s.setBoolFromString("simulate", os.Getenv("FRAMEBRIDGE_SIMULATE"), &cfg.Simulate)

	return nil
}
