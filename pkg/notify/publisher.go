// Package notify publishes order events to Kafka for the notification
// pipeline. Publishing is fire-and-forget from the checkout path: a broker
// outage costs a notification, never an order.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cellex-webapp/cellex-storefront/pkg/config"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventOrderCreated    = "ORDER_CREATED"
	EventOrderCheckedOut = "ORDER_CHECKED_OUT"
)

type OrderEvent struct {
	Type          string    `json:"type"`
	OrderID       string    `json:"order_id"`
	SessionID     string    `json:"session_id"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	TotalAmount   string    `json:"total_amount,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type Publisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewPublisher(cfg *config.KafkaConfig, logger *zap.Logger) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		},
		logger: logger,
	}
}

// Publish writes one event keyed by order ID so per-order ordering holds.
func (p *Publisher) Publish(ctx context.Context, event OrderEvent) error {
	event.OccurredAt = time.Now()
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: value,
	})
}

// PublishAsync publishes on its own goroutine and logs failures. Nil
// publishers are safe to call, for deployments without Kafka.
func (p *Publisher) PublishAsync(event OrderEvent) {
	if p == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.Publish(ctx, event); err != nil {
			p.logger.Warn("order event publish failed",
				zap.String("type", event.Type),
				zap.String("order_id", event.OrderID),
				zap.Error(err))
		}
	}()
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
