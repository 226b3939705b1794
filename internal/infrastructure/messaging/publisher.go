// Package messaging adapts the domain's outbox events onto a transport —
// Kafka in production, a no-op in tests — the same EventPublisher/
// NoOpEventPublisher split the teacher used for its deposit/withdrawal/
// transfer events, generalized to publish one outbox.Event at a time
// keyed by aggregate id (spec.md §4.10's dispatch step).
package messaging

import (
	"fmt"

	"github.com/nsparik/fund-transfer-engine/internal/domain/outbox"
	"github.com/nsparik/fund-transfer-engine/internal/infrastructure/messaging/kafka"
)

// EventPublisher dispatches a claimed outbox event to its transport.
type EventPublisher interface {
	Publish(e outbox.Event) error
	Close() error
	IsHealthy() bool
}

// KafkaEventPublisher implements EventPublisher using Kafka, topic chosen
// by the event's EventType and keyed by its AggregateID so all events for
// one aggregate land on the same partition.
type KafkaEventPublisher struct {
	producer *kafka.Producer
}

func NewKafkaEventPublisher(config *kafka.Config) (*KafkaEventPublisher, error) {
	producer, err := kafka.NewProducer(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return &KafkaEventPublisher{producer: producer}, nil
}

func (p *KafkaEventPublisher) Publish(e outbox.Event) error {
	topic := kafka.TopicForEventType(e.EventType)
	return p.producer.PublishEvent(topic, e.AggregateID, e)
}

func (p *KafkaEventPublisher) Close() error     { return p.producer.Close() }
func (p *KafkaEventPublisher) IsHealthy() bool  { return p.producer.IsHealthy() }

// NoOpEventPublisher is used in tests and Kafka-less environments — the
// outbox row is still marked published, only the transport is skipped.
type NoOpEventPublisher struct{}

func NewNoOpEventPublisher() *NoOpEventPublisher { return &NoOpEventPublisher{} }

func (p *NoOpEventPublisher) Publish(e outbox.Event) error { return nil }
func (p *NoOpEventPublisher) Close() error                 { return nil }
func (p *NoOpEventPublisher) IsHealthy() bool              { return true }
