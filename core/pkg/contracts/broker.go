package contracts

import (
	"context"
	"time"
)

// Broker publishes messages to topics. The SMS gateway consumes them outside this module.
// Implementations: Kafka (contrib/broker/kafka), in-memory (core/pkg/adapters/broker/memory).
type Broker interface {
	Publish(ctx context.Context, topic string, msg *BrokerMessage) error
	PublishBatch(ctx context.Context, topic string, msgs []*BrokerMessage) error

	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Ping(ctx context.Context) error
	IsConnected() bool

	Name() string
}

// BrokerMessage represents a message across brokers
type BrokerMessage struct {
	ID    string
	Topic string

	Key     []byte
	Body    []byte
	Headers map[string]string

	// Set by the broker on publish
	Partition int
	Offset    int64
	Timestamp time.Time
}

// BrokerConfig configures the Kafka broker
type BrokerConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Brokers  []string `mapstructure:"brokers"`
	ClientID string   `mapstructure:"client_id"`
	Version  string   `mapstructure:"version"`
	Topic    string   `mapstructure:"topic"`
}
