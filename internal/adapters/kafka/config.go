package kafka

import (
	"fmt"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/bft-labs/framebridge/internal/domain"
)

// Configuration keys, named as in the bridge's config file.
const (
	KeyBootstrapServers = "bootstrap.servers"
	KeyTopicName        = "topic.name"
)

// Producer defaults mirror a durable, ordered delivery setup.
const (
	DefaultAcks         = "all"
	DefaultRetries      = 3
	DefaultFlushTimeout = 10 * time.Second
)

// Config holds the producer settings of a Sink.
type Config struct {
	// BootstrapServers is a comma separated broker list ("host:port,host:port").
	BootstrapServers string
	Topic            string
	ClientID         string

	// Acks is "all", "leader" or "none".
	Acks         string
	Retries      int
	FlushTimeout time.Duration
}

// Validate reports the first missing required key.
func (c Config) Validate() error {
	if len(c.Brokers()) == 0 {
		return fmt.Errorf("%w: %s", domain.ErrMissingConfig, KeyBootstrapServers)
	}
	if strings.TrimSpace(c.Topic) == "" {
		return fmt.Errorf("%w: %s", domain.ErrMissingConfig, KeyTopicName)
	}
	if _, err := c.requiredAcks(); err != nil {
		return err
	}
	return nil
}

// Brokers splits BootstrapServers into seed addresses.
func (c Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.BootstrapServers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func (c Config) requiredAcks() (kgo.Acks, error) {
	switch strings.ToLower(strings.TrimSpace(c.Acks)) {
	case "", "all", "-1":
		return kgo.AllISRAcks(), nil
	case "leader", "1":
		return kgo.LeaderAck(), nil
	case "none", "0":
		return kgo.NoAck(), nil
	default:
		return kgo.Acks{}, fmt.Errorf("%w: acks %q (want all, leader or none)", domain.ErrInvalidConfig, c.Acks)
	}
}

// clientOptions builds the franz-go options for this configuration.
func (c Config) clientOptions() ([]kgo.Opt, error) {
	acks, err := c.requiredAcks()
	if err != nil {
		return nil, err
	}

	retries := c.Retries
	if retries < 0 {
		retries = DefaultRetries
	}

	delivery := c.FlushTimeout
	if delivery <= 0 {
		delivery = DefaultFlushTimeout
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(c.Brokers()...),
		kgo.DefaultProduceTopic(c.Topic),
		kgo.RequiredAcks(acks),
		kgo.RecordRetries(retries),
		kgo.RecordDeliveryTimeout(delivery),
	}
	if c.ClientID != "" {
		opts = append(opts, kgo.ClientID(c.ClientID))
	}
	// Idempotent writes require acks from all in-sync replicas.
	if acks != kgo.AllISRAcks() {
		opts = append(opts, kgo.DisableIdempotentWrite())
	}
	return opts, nil
}
