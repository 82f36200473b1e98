package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends JSON messages over one channel. amqp channels are not
// safe for concurrent publishing, so sends are serialized.
type Publisher struct {
	mu sync.Mutex
	ch channel
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	const op = "mq.NewPublisher"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &Publisher{ch: ch}, nil
}

func (p *Publisher) send(ctx context.Context, queue string, message any) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(
		ctx,
		"",
		queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish to queue %s: %w", queue, err)
	}

	return nil
}

func (p *Publisher) PublishBookingConfirmed(ctx context.Context, msg BookingConfirmedMessage) error {
	return p.send(ctx, BookingConfirmedQueue, msg)
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.ch.Close()
}
