package mq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

func NewConn(url string) (*amqp.Connection, error) {
	const op = "mq.NewConn"

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return conn, nil
}

// InitQueues declares every queue the application uses.
func InitQueues(conn *amqp.Connection) error {
	const op = "mq.InitQueues"

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}
	defer ch.Close()

	if err := SetupImmediateQueue(ch, BookingConfirmedQueue); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func SetupImmediateQueue(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(name, true, false, false, false, nil)
	return err
}
