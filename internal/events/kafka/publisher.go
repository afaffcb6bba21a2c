// Package kafka publishes newly inserted notifications to a Kafka topic
// for downstream consumers (push delivery, email digests). The watcher
// only hands over first-time inserts, so topic consumers inherit the
// dedup guarantee.
package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/watcher"
)

// Ensure Publisher implements watcher.Sink
var _ watcher.Sink = (*Publisher)(nil)

// Publisher writes JSON-encoded notifications to Kafka.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a Publisher for the given brokers.
func NewPublisher(brokers []string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Publish writes one event to the topic.
func (p *Publisher) Publish(topic string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(context.Background(), kafka.Message{
		Topic: topic,
		Value: data,
	})
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
