package ticketmail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/kirinyoku/eventease/internal/mq"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
)

type ackRecorder struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *ackRecorder) Ack(uint64, bool) error {
	a.acked = true
	return nil
}

func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

func (a *ackRecorder) Reject(_ uint64, requeue bool) error {
	return a.Nack(0, false, requeue)
}

type fakeMailer struct {
	got []mq.BookingConfirmedMessage
	err error
}

func (f *fakeMailer) SendTicket(_ context.Context, msg mq.BookingConfirmedMessage) error {
	f.got = append(f.got, msg)
	return f.err
}

func delivery(t *testing.T, ack *ackRecorder, body any, redelivered bool) amqp.Delivery {
	t.Helper()

	var b []byte
	switch v := body.(type) {
	case []byte:
		b = v
	default:
		var err error
		b, err = json.Marshal(v)
		require.NoError(t, err)
	}

	return amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: b, Redelivered: redelivered}
}

func newWorker(m Mailer) *Worker {
	return New(nil, m, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandle_Acks(t *testing.T) {
	t.Parallel()

	m := &fakeMailer{}
	w := newWorker(m)
	ack := &ackRecorder{}

	msg := mq.BookingConfirmedMessage{BookingID: uuid.New(), Email: "a@b.c"}
	require.NoError(t, w.handle(context.Background(), delivery(t, ack, msg, false)))

	require.True(t, ack.acked)
	require.Len(t, m.got, 1)
	require.Equal(t, msg.BookingID, m.got[0].BookingID)
}

func TestHandle_MalformedIsDropped(t *testing.T) {
	t.Parallel()

	m := &fakeMailer{}
	w := newWorker(m)
	ack := &ackRecorder{}

	require.Error(t, w.handle(context.Background(), delivery(t, ack, []byte("{"), false)))

	require.True(t, ack.nacked)
	require.False(t, ack.requeue)
	require.Empty(t, m.got)
}

func TestHandle_MailerFailureRequeuesOnce(t *testing.T) {
	t.Parallel()

	w := newWorker(&fakeMailer{err: errors.New("smtp down")})

	first := &ackRecorder{}
	require.Error(t, w.handle(context.Background(), delivery(t, first, mq.BookingConfirmedMessage{}, false)))
	require.True(t, first.nacked)
	require.True(t, first.requeue)

	second := &ackRecorder{}
	require.Error(t, w.handle(context.Background(), delivery(t, second, mq.BookingConfirmedMessage{}, true)))
	require.True(t, second.nacked)
	require.False(t, second.requeue)
}

func TestLogMailer(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	m := LogMailer{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	require.NoError(t, m.SendTicket(context.Background(), mq.BookingConfirmedMessage{Email: "a@b.c", EventTitle: "Gala"}))
	require.Contains(t, buf.String(), "ticket issued")
	require.Contains(t, buf.String(), "Gala")
}
