package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Topics consumed by the notification subsystem. Delivery itself is external;
// this service only publishes.
const (
	TopicAllocationCreated  = "portal.allocation.created"
	TopicAssignmentDeadline = "portal.assignment.deadline"
)

// AllocationCreatedEvent is emitted when a student's question set is
// materialized for the first time.
type AllocationCreatedEvent struct {
	EventID      string    `json:"event_id"`
	AssignmentID uint      `json:"assignment_id"`
	StudentRoll  string    `json:"student_roll"`
	QuestionIDs  []uint    `json:"question_ids"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// EventPublisher publishes portal events to the message bus.
type EventPublisher interface {
	PublishAllocationCreated(ctx context.Context, event AllocationCreatedEvent) error
	Close() error
}

type watermillPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
}

// NewKafkaEventPublisher builds a Kafka-backed publisher.
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

	return &watermillPublisher{publisher: publisher, logger: logger}, nil
}

// NewInProcessEventPublisher builds a publisher backed by watermill's
// in-process pub/sub, for development deployments without a broker.
func NewInProcessEventPublisher(logger *slog.Logger) EventPublisher {
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewSlogLogger(logger))
	return &watermillPublisher{publisher: pubsub, logger: logger}
}

func (p *watermillPublisher) PublishAllocationCreated(ctx context.Context, event AllocationCreatedEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal allocation event: %w", err)
	}

	msg := message.NewMessage(event.EventID, payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(TopicAllocationCreated, msg); err != nil {
		return fmt.Errorf("failed to publish allocation event: %w", err)
	}

	p.logger.Info("Published allocation event",
		"event_id", event.EventID,
		"assignment_id", event.AssignmentID,
		"student_roll", event.StudentRoll)

	return nil
}

func (p *watermillPublisher) Close() error {
	return p.publisher.Close()
}
