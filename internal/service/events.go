package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/autoimport/pkg/database"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RoutingKeyStatusChanged is the routing key of status change events
const RoutingKeyStatusChanged = "order.status_changed"

// StatusChangedEvent is published after an order status update commits
type StatusChangedEvent struct {
	OrderID      string    `json:"orderId"`
	OrderNumber  string    `json:"orderNumber"`
	TrackingCode string    `json:"trackingCode"`
	Status       string    `json:"status"`
	Stage        int       `json:"stage"`
	Note         *string   `json:"note,omitempty"`
	Location     *string   `json:"location,omitempty"`
	ChangedBy    *string   `json:"changedBy,omitempty"`
	ChangedAt    time.Time `json:"changedAt"`
}

// AMQPPublisher publishes order events to a topic exchange
type AMQPPublisher struct {
	mq       *database.RabbitMQ
	exchange string
}

// NewAMQPPublisher creates a publisher on an already declared exchange
func NewAMQPPublisher(mq *database.RabbitMQ, exchange string) *AMQPPublisher {
	return &AMQPPublisher{mq: mq, exchange: exchange}
}

func (p *AMQPPublisher) PublishStatusChanged(ctx context.Context, event StatusChangedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal status event: %w", err)
	}

	// amqp channels are not safe for concurrent publishing
	p.mq.Lock()
	defer p.mq.Unlock()

	err = p.mq.Channel.PublishWithContext(
		ctx,
		p.exchange,
		RoutingKeyStatusChanged,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.New().String(),
			Timestamp:    event.ChangedAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish status event: %w", err)
	}

	return nil
}

// NoopPublisher drops events. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishStatusChanged(context.Context, StatusChangedEvent) error {
	return nil
}
