// Package kafka provides a Kafka implementation of the contracts.Broker interface.
// The alert dispatcher publishes outbound SMS through it. The SMS gateway, a
// separate service, consumes the topic.
//
// Usage:
//
//	driver := kafka.NewDriverFromConfig(contracts.BrokerConfig{
//	    Brokers:  []string{"localhost:9092"},
//	    ClientID: "agroguard",
//	})
//	if err := driver.Connect(ctx); err != nil { ... }
package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/agroguard/agroguard/core/pkg/contracts"
)

// ErrNotConnected is returned when publishing before Connect
var ErrNotConnected = errors.New("kafka: not connected")

// HeaderMessageID carries BrokerMessage.ID across the wire
const HeaderMessageID = "message-id"

// Driver implements contracts.Broker using Kafka (Sarama)
type Driver struct {
	config    *Config
	client    sarama.Client
	producer  sarama.SyncProducer
	mu        sync.RWMutex
	connected bool
	now       func() time.Time
}

// Config for Kafka driver
type Config struct {
	Brokers  []string
	ClientID string
	Version  string // Kafka version, e.g., "2.8.0"

	RequiredAcks    sarama.RequiredAcks
	Compression     sarama.CompressionCodec
	MaxMessageBytes int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Brokers:         []string{"localhost:9092"},
		ClientID:        "agroguard",
		Version:         "2.8.0",
		RequiredAcks:    sarama.WaitForAll,
		Compression:     sarama.CompressionSnappy,
		MaxMessageBytes: 1024 * 1024,
	}
}

// NewDriver creates a new Kafka driver
func NewDriver(cfg *Config) *Driver {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Driver{config: cfg, now: time.Now}
}

// NewDriverFromConfig creates a driver from the application broker settings
func NewDriverFromConfig(bc contracts.BrokerConfig) *Driver {
	cfg := DefaultConfig()
	if len(bc.Brokers) > 0 {
		cfg.Brokers = bc.Brokers
	}
	if bc.ClientID != "" {
		cfg.ClientID = bc.ClientID
	}
	if bc.Version != "" {
		cfg.Version = bc.Version
	}
	return NewDriver(cfg)
}

// WithProducer sets a pre-built producer; Connect will then not dial a client.
// Used with sarama/mocks in tests.
func (d *Driver) WithProducer(p sarama.SyncProducer) *Driver {
	d.producer = p
	return d
}

// SaramaConfig builds the Sarama configuration
func (d *Driver) SaramaConfig() *sarama.Config {
	cfg := sarama.NewConfig()

	version, err := sarama.ParseKafkaVersion(d.config.Version)
	if err != nil {
		version = sarama.V2_8_0_0
	}
	cfg.Version = version
	cfg.ClientID = d.config.ClientID

	cfg.Producer.RequiredAcks = d.config.RequiredAcks
	cfg.Producer.Compression = d.config.Compression
	cfg.Producer.MaxMessageBytes = d.config.MaxMessageBytes
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true

	return cfg
}

// Connect establishes connection to Kafka
func (d *Driver) Connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.producer != nil {
		d.connected = true
		return nil
	}

	client, err := sarama.NewClient(d.config.Brokers, d.SaramaConfig())
	if err != nil {
		return err
	}

	producer, err := sarama.NewSyncProducerFromClient(client)
	if err != nil {
		_ = client.Close()
		return err
	}

	d.client = client
	d.producer = producer
	d.connected = true
	return nil
}

// Disconnect closes connections
func (d *Driver) Disconnect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var errs []error
	if d.producer != nil {
		errs = append(errs, d.producer.Close())
		d.producer = nil
	}
	if d.client != nil && !d.client.Closed() {
		errs = append(errs, d.client.Close())
	}
	d.client = nil
	d.connected = false
	return errors.Join(errs...)
}

// Ping checks Kafka connectivity
func (d *Driver) Ping(ctx context.Context) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.connected {
		return ErrNotConnected
	}
	if d.client == nil {
		return nil
	}
	return d.client.RefreshMetadata()
}

// IsConnected returns connection status
func (d *Driver) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// Name returns broker name
func (d *Driver) Name() string {
	return "kafka"
}

func (d *Driver) producerMessage(topic string, msg *contracts.BrokerMessage) *sarama.ProducerMessage {
	pm := &sarama.ProducerMessage{
		Topic:     topic,
		Value:     sarama.ByteEncoder(msg.Body),
		Timestamp: d.now(),
	}
	if len(msg.Key) > 0 {
		pm.Key = sarama.ByteEncoder(msg.Key)
	}
	if msg.ID != "" {
		pm.Headers = append(pm.Headers, sarama.RecordHeader{Key: []byte(HeaderMessageID), Value: []byte(msg.ID)})
	}
	for k, v := range msg.Headers {
		pm.Headers = append(pm.Headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}
	return pm
}

// Publish publishes a message to a topic
func (d *Driver) Publish(ctx context.Context, topic string, msg *contracts.BrokerMessage) error {
	d.mu.RLock()
	producer, connected := d.producer, d.connected
	d.mu.RUnlock()

	if !connected {
		return ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	pm := d.producerMessage(topic, msg)
	partition, offset, err := producer.SendMessage(pm)
	if err != nil {
		return err
	}

	msg.Topic = topic
	msg.Partition = int(partition)
	msg.Offset = offset
	msg.Timestamp = pm.Timestamp
	return nil
}

// PublishBatch publishes messages in a single producer call
func (d *Driver) PublishBatch(ctx context.Context, topic string, msgs []*contracts.BrokerMessage) error {
	d.mu.RLock()
	producer, connected := d.producer, d.connected
	d.mu.RUnlock()

	if !connected {
		return ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}

	pms := make([]*sarama.ProducerMessage, len(msgs))
	for i, msg := range msgs {
		pms[i] = d.producerMessage(topic, msg)
	}

	if err := producer.SendMessages(pms); err != nil {
		var perrs sarama.ProducerErrors
		if errors.As(err, &perrs) && len(perrs) > 0 {
			return perrs[0].Err
		}
		return err
	}

	for i, msg := range msgs {
		msg.Topic = topic
		msg.Partition = int(pms[i].Partition)
		msg.Offset = pms[i].Offset
		msg.Timestamp = pms[i].Timestamp
	}
	return nil
}

// Ensure Driver implements contracts.Broker
var _ contracts.Broker = (*Driver)(nil)
