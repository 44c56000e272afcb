package kafka

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"
)

// EventHandler processes one decoded order event.
type EventHandler func(ctx context.Context, event OrderEvent) error

// Consumer reads order events from the topic and hands them to a
// handler already decoded. Messages that do not decode as an OrderEvent
// are dropped with a log line so one bad message cannot wedge the
// group.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader}
}

func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("[Kafka] Error reading message: %v", err)
				continue
			}

			var event OrderEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("[Kafka] Dropping undecodable message with key %q: %v", msg.Key, err)
				continue
			}

			if err := handler(ctx, event); err != nil {
				log.Printf("[Kafka] Error handling %s event %s: %v", event.Type, event.ID, err)
			}
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
