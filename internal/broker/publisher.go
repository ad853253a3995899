package broker

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	OrderPlaced    = "order.placed"
	OrderAdvanced  = "order.advanced"
	OrderCancelled = "order.cancelled"
	OrderPaid      = "order.paid"
)

// OrderEvent is the payload written to the order topic.
type OrderEvent struct {
	Type       string    `json:"type"`
	OrderID    int       `json:"orderId"`
	UserID     int       `json:"userId"`
	Status     string    `json:"status"`
	Total      string    `json:"total"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Publisher interface {
	PublishOrder(ctx context.Context, ev OrderEvent) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireOne,
	}}
}

// PublishOrder keys messages by order id so one order's events stay ordered.
func (p *KafkaPublisher) PublishOrder(ctx context.Context, ev OrderEvent) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.Itoa(ev.OrderID)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Noop drops events; used when KAFKA_BROKERS is empty.
type Noop struct{}

func (Noop) PublishOrder(context.Context, OrderEvent) error { return nil }
