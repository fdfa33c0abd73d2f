// Package memory is an in-process broker. The CLI uses it for dry runs
// and tests use it in place of Kafka.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/agroguard/agroguard/core/pkg/contracts"
)

// ErrNotConnected is returned by operations on a disconnected broker
var ErrNotConnected = errors.New("memory broker: not connected")

// Broker keeps every published message per topic
type Broker struct {
	mu        sync.RWMutex
	connected bool
	published map[string][]*contracts.BrokerMessage
	offsets   map[string]int64
}

// New creates a new in-memory broker
func New() *Broker {
	return &Broker{
		published: make(map[string][]*contracts.BrokerMessage),
		offsets:   make(map[string]int64),
	}
}

// Name returns broker name
func (b *Broker) Name() string {
	return "memory"
}

// Connect marks the broker as connected
func (b *Broker) Connect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connected = true
	return nil
}

// Disconnect marks the broker as disconnected. Published messages are kept.
func (b *Broker) Disconnect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connected = false
	return nil
}

// Ping checks connection
func (b *Broker) Ping(ctx context.Context) error {
	if !b.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected returns connection status
func (b *Broker) IsConnected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.connected
}

// Publish records msg under topic and assigns its offset
func (b *Broker) Publish(ctx context.Context, topic string, msg *contracts.BrokerMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.connected {
		return ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg.Topic = topic
	msg.Timestamp = time.Now()
	msg.Offset = b.offsets[topic]
	b.offsets[topic]++
	b.published[topic] = append(b.published[topic], msg)
	return nil
}

// PublishBatch publishes multiple messages
func (b *Broker) PublishBatch(ctx context.Context, topic string, msgs []*contracts.BrokerMessage) error {
	for _, msg := range msgs {
		if err := b.Publish(ctx, topic, msg); err != nil {
			return err
		}
	}
	return nil
}

// Messages returns every message published to topic, oldest first
func (b *Broker) Messages(topic string) []*contracts.BrokerMessage {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]*contracts.BrokerMessage, len(b.published[topic]))
	copy(out, b.published[topic])
	return out
}

// Ensure Broker implements contracts.Broker
var (
	_ contracts.Broker        = (*Broker)(nil)
	_ contracts.HealthChecker = (*Broker)(nil)
)
