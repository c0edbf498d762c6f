package database

import (
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQ holds a broker connection and one publishing channel
type RabbitMQ struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel

	mu sync.Mutex
}

// NewRabbitMQ dials the broker and declares a durable topic exchange
func NewRabbitMQ(url, exchange string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return &RabbitMQ{Conn: conn, Channel: ch}, nil
}

// Lock serializes publishes on the shared channel
func (r *RabbitMQ) Lock() { r.mu.Lock() }

// Unlock releases the publish lock
func (r *RabbitMQ) Unlock() { r.mu.Unlock() }

// Close closes channel and connection
func (r *RabbitMQ) Close() error {
	if r == nil {
		return nil
	}
	chErr := r.Channel.Close()
	connErr := r.Conn.Close()
	if chErr != nil {
		return chErr
	}
	return connErr
}
