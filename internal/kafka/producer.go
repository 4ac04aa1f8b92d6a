package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Shopify/sarama"
)

const (
	TopicOrderPlaced     = "order.placed"
	TopicPaymentCaptured = "payment.captured"
	TopicPaymentFailed   = "payment.failed"
)

type event struct {
	OrderID    string    `json:"order_id"`
	Type       string    `json:"type"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventBus publishes order lifecycle events through a synchronous Kafka
// producer.
type EventBus struct {
	producer sarama.SyncProducer
}

func NewEventBus(brokers []string) (*EventBus, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &EventBus{producer: producer}, nil
}

func (b *EventBus) Close() error {
	return b.producer.Close()
}

func (b *EventBus) PublishOrderPlaced(_ context.Context, orderID string) error {
	return b.send(TopicOrderPlaced, event{OrderID: orderID, Type: "order_placed", OccurredAt: time.Now().UTC()})
}

func (b *EventBus) PublishPaymentCaptured(_ context.Context, orderID string) error {
	return b.send(TopicPaymentCaptured, event{OrderID: orderID, Type: "payment_captured", OccurredAt: time.Now().UTC()})
}

func (b *EventBus) PublishPaymentFailed(_ context.Context, orderID string, reason string) error {
	return b.send(TopicPaymentFailed, event{OrderID: orderID, Type: "payment_failed", Reason: reason, OccurredAt: time.Now().UTC()})
}

func (b *EventBus) send(topic string, payload event) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	_, _, err = b.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(payload.OrderID),
		Value: sarama.ByteEncoder(encoded),
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}
