// Package events publishes order lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/valmere/storefront/internal/domain/order"
)

var _ order.Notifier = (*KafkaPublisher)(nil)

// orderCreated is the wire shape of an order-created event.
type orderCreated struct {
	OrderID   string          `json:"order_id"`
	UserID    string          `json:"user_id"`
	UserEmail string          `json:"user_email"`
	Total     decimal.Decimal `json:"total"`
	LineCount int             `json:"line_count"`
	CreatedAt time.Time       `json:"created_at"`
}

// KafkaPublisher implements order.Notifier on a Kafka topic. Publishing is
// best effort: a broker failure is logged and the purchase proceeds.
type KafkaPublisher struct {
	writer *kafka.Writer
	lg     *zap.Logger
}

// NewKafkaPublisher creates a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string, lg *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: 5 * time.Second,
		},
		lg: lg,
	}
}

// OrderCreated publishes the event keyed by the owning user, so one user's
// orders stay ordered within a partition.
func (p *KafkaPublisher) OrderCreated(ctx context.Context, o *order.Order) {
	payload, err := json.Marshal(orderCreated{
		OrderID:   o.ID,
		UserID:    o.UserID,
		UserEmail: o.UserEmail,
		Total:     o.Total(),
		LineCount: len(o.Lines),
		CreatedAt: o.CreatedAt,
	})
	if err != nil {
		p.lg.Error("Marshal order event", zap.String("order_id", o.ID), zap.Error(err))
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(o.UserID),
		Value: payload,
	})
	if err != nil {
		p.lg.Error("Publish order event", zap.String("order_id", o.ID), zap.Error(err))
	}
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
