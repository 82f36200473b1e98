package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	queue  string
	msg    amqp.Publishing
	err    error
	closed bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	f.queue = key
	f.msg = msg
	return f.err
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_PublishBookingConfirmed(t *testing.T) {
	t.Parallel()

	ch := &fakeChannel{}
	p := &Publisher{ch: ch}

	msg := BookingConfirmedMessage{BookingID: uuid.New(), Email: "a@b.c", EventTitle: "Gala"}
	require.NoError(t, p.PublishBookingConfirmed(context.Background(), msg))

	require.Equal(t, BookingConfirmedQueue, ch.queue)
	require.Equal(t, "application/json", ch.msg.ContentType)
	require.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)

	var got BookingConfirmedMessage
	require.NoError(t, json.Unmarshal(ch.msg.Body, &got))
	require.Equal(t, msg.BookingID, got.BookingID)
	require.Equal(t, "Gala", got.EventTitle)

	require.NoError(t, p.Close())
	require.True(t, ch.closed)
}

func TestPublisher_Error(t *testing.T) {
	t.Parallel()

	p := &Publisher{ch: &fakeChannel{err: errors.New("closed")}}

	err := p.PublishBookingConfirmed(context.Background(), BookingConfirmedMessage{})
	require.ErrorContains(t, err, BookingConfirmedQueue)
}
