package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// EventPublisher publishes domain events. Implementations must be safe for
// concurrent use.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
	Close() error
}

// watermillPublisher adapts a watermill publisher to typed payloads.
type watermillPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
}

// NewGoChannelPublisher returns an in-process publisher, the default when no
// broker is configured.
func NewGoChannelPublisher(logger *slog.Logger) EventPublisher {
	pub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewSlogLogger(logger),
	)
	return &watermillPublisher{publisher: pub, logger: logger}
}

// NewKafkaPublisher returns a publisher backed by the given Kafka brokers.
func NewKafkaPublisher(brokers []string, logger *slog.Logger) (EventPublisher, error) {
	pub, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}
	return &watermillPublisher{publisher: pub, logger: logger}, nil
}

func (p *watermillPublisher) Publish(ctx context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), data)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	p.logger.Debug("Event published", "topic", topic, "message_id", msg.UUID)
	return nil
}

func (p *watermillPublisher) Close() error {
	return p.publisher.Close()
}

// PublishedEvent captures one Publish call for assertions in tests.
type PublishedEvent struct {
	Topic   string
	Payload interface{}
}

// MockEventPublisher records events instead of delivering them.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
	logger *slog.Logger
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (m *MockEventPublisher) Publish(ctx context.Context, topic string, payload interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, PublishedEvent{Topic: topic, Payload: payload})
	return nil
}

func (m *MockEventPublisher) Close() error {
	return nil
}

// GetPublishedEvents returns a snapshot of everything published so far.
func (m *MockEventPublisher) GetPublishedEvents() []PublishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PublishedEvent, len(m.events))
	copy(out, m.events)
	return out
}
