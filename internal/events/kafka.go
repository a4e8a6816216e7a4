package events

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/repository"
	"go.uber.org/zap"
)

// KafkaPublisher writes outbox events to a single topic
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewKafkaPublisher creates a publisher for topic on brokers
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}

	logger.Info("kafka publisher created",
		zap.Strings("brokers", brokers),
		zap.String("topic", topic),
	)

	return &KafkaPublisher{writer: writer, logger: logger}, nil
}

// Publish sends the event payload keyed by its aggregate so that all events
// of one alert land on the same partition.
func (p *KafkaPublisher) Publish(ctx context.Context, event repository.OutboxEvent) error {
	if err := p.writer.WriteMessages(ctx, Message(event)); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.ID, err)
	}

	p.logger.Debug("event published",
		zap.String("topic", p.writer.Topic),
		zap.String("event_id", event.ID),
		zap.String("event_type", event.EventType),
	)
	return nil
}

// Topic returns the configured topic
func (p *KafkaPublisher) Topic() string {
	return p.writer.Topic
}

// Close flushes and closes the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Message builds the broker message for an outbox event
func Message(event repository.OutboxEvent) kafka.Message {
	return kafka.Message{
		Key:   []byte(event.AggregateType + "-" + event.AggregateID),
		Value: event.Payload,
		Time:  event.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.ID)},
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
}
