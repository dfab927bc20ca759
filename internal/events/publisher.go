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
)

// EventPublisher abstracts the message broker from the service layer.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event interface{}) error
	Close() error
}

// ===== KAFKA PUBLISHER =====

type kafkaEventPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
}

// NewKafkaEventPublisher builds a watermill Kafka publisher. Events are
// JSON-marshaled; the message UUID doubles as a correlation id.
func NewKafkaEventPublisher(brokers []string, logger *slog.Logger) (EventPublisher, error) {
	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return &kafkaEventPublisher{
		publisher: publisher,
		logger:    logger,
	}, nil
}

func (p *kafkaEventPublisher) Publish(ctx context.Context, topic string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	p.logger.Debug("event published", "topic", topic, "message_id", msg.UUID)
	return nil
}

func (p *kafkaEventPublisher) Close() error {
	return p.publisher.Close()
}

// ===== NOOP PUBLISHER =====

// NoopEventPublisher drops events. Used when no broker is configured so
// the service layer never has to nil-check its publisher.
type NoopEventPublisher struct{}

func NewNoopEventPublisher() EventPublisher { return &NoopEventPublisher{} }

func (p *NoopEventPublisher) Publish(ctx context.Context, topic string, event interface{}) error {
	return nil
}

func (p *NoopEventPublisher) Close() error { return nil }

// ===== MOCK PUBLISHER =====

// PublishedEvent records a single Publish call for test inspection.
type PublishedEvent struct {
	Topic string
	Event interface{}
}

// MockEventPublisher captures events in memory for tests.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
	failOn map[string]error
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{failOn: make(map[string]error)}
}

func (m *MockEventPublisher) Publish(ctx context.Context, topic string, event interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failOn[topic]; ok {
		return err
	}
	m.events = append(m.events, PublishedEvent{Topic: topic, Event: event})
	return nil
}

func (m *MockEventPublisher) Close() error { return nil }

// GetPublishedEvents returns a copy of everything published so far.
func (m *MockEventPublisher) GetPublishedEvents() []PublishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PublishedEvent, len(m.events))
	copy(out, m.events)
	return out
}

// FailOnTopic makes subsequent publishes to topic return err.
func (m *MockEventPublisher) FailOnTopic(topic string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn[topic] = err
}
