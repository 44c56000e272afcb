package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/example/minishop/internal/domain/order"
)

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Producer{writer: writer}
}

// OrderPlaced publishes the event for a newly created order.
func (p *Producer) OrderPlaced(ctx context.Context, o order.Order) error {
	return p.publish(ctx, OrderEvent{
		ID:         uuid.New().String(),
		Type:       EventOrderPlaced,
		Order:      o,
		OccurredAt: time.Now(),
	})
}

// OrderStatusChanged publishes the event for an order moving to a new
// lifecycle status.
func (p *Producer) OrderStatusChanged(ctx context.Context, o order.Order, previous order.Status) error {
	return p.publish(ctx, OrderEvent{
		ID:             uuid.New().String(),
		Type:           EventOrderStatusChanged,
		Order:          o,
		PreviousStatus: previous,
		OccurredAt:     time.Now(),
	})
}

// publish keys messages by order ID so one order's events stay ordered
// within a partition.
func (p *Producer) publish(ctx context.Context, event OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Order.ID),
		Value: data,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
