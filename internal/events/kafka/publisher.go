// Package kafka implements the events.Publisher interface on top of a
// Kafka writer.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/example/bank-core/internal/events"
)

// Publisher writes JSON-encoded events to Kafka.
type Publisher struct {
	writer *kafka.Writer
}

var _ events.Publisher = (*Publisher)(nil)

// NewPublisher creates a publisher for the given brokers and default topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Publish encodes the event as JSON and writes it. The topic argument is
// accepted for interface compatibility; the writer's configured topic is
// authoritative.
func (p *Publisher) Publish(_ string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	return p.writer.WriteMessages(
		context.Background(),
		kafka.Message{Value: data},
	)
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
