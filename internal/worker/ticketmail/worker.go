// Package ticketmail sends a ticket notice for every confirmed booking.
package ticketmail

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kirinyoku/eventease/internal/mq"
	amqp "github.com/rabbitmq/amqp091-go"
)

type Mailer interface {
	SendTicket(ctx context.Context, msg mq.BookingConfirmedMessage) error
}

// LogMailer writes tickets to the log instead of sending mail.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) SendTicket(_ context.Context, msg mq.BookingConfirmedMessage) error {
	m.Logger.Info("ticket issued",
		slog.String("booking_id", msg.BookingID.String()),
		slog.String("email", msg.Email),
		slog.String("event", msg.EventTitle),
		slog.String("date", msg.EventDate.Format("2006-01-02")),
	)
	return nil
}

type Worker struct {
	conn   *amqp.Connection
	mailer Mailer
	logger *slog.Logger
}

func New(conn *amqp.Connection, mailer Mailer, logger *slog.Logger) *Worker {
	return &Worker{
		conn:   conn,
		mailer: mailer,
		logger: logger,
	}
}

// Run consumes booking confirmations until ctx is done or the delivery
// channel closes.
func (w *Worker) Run(ctx context.Context) error {
	const op = "ticketmail.Worker.Run"

	ch, err := w.conn.Channel()
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}
	defer ch.Close()

	if err := ch.Qos(8, 0, false); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	msgs, err := ch.ConsumeWithContext(ctx, mq.BookingConfirmedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	w.logger.Info("ticket mailer consuming", slog.String("queue", mq.BookingConfirmedQueue))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := w.handle(ctx, d); err != nil {
				w.logger.Warn("ticket delivery failed", slog.Any("err", err))
			}
		}
	}
}

// handle acks a delivered ticket, drops malformed messages and requeues
// mailer failures.
func (w *Worker) handle(ctx context.Context, d amqp.Delivery) error {
	var msg mq.BookingConfirmedMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		_ = d.Nack(false, false)
		return fmt.Errorf("decode message: %w", err)
	}

	if err := w.mailer.SendTicket(ctx, msg); err != nil {
		_ = d.Nack(false, !d.Redelivered)
		return fmt.Errorf("send ticket for booking %s: %w", msg.BookingID, err)
	}

	return d.Ack(false)
}
