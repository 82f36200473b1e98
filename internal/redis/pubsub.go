package redisx

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventsPubSub fans catalog changes out to every running instance.
// Messages published by this instance are not delivered back to it.
type EventsPubSub struct {
	rdb     *redis.Client
	channel string
	origin  string
	now     func() time.Time
}

func NewEventsPubSub(rdb *redis.Client) *EventsPubSub {
	return &EventsPubSub{
		rdb:     rdb,
		channel: ChannelEventsChanged(),
		origin:  uuid.NewString(),
		now:     time.Now,
	}
}

// EventChange is the wire form of one change.
type EventChange struct {
	EventID uuid.UUID `json:"event_id"`
	Origin  string    `json:"origin"`
	At      time.Time `json:"at"`
}

func (p *EventsPubSub) PublishEventChanged(ctx context.Context, eventID uuid.UUID) error {
	const op = "redisx.EventsPubSub.PublishEventChanged"

	b, err := json.Marshal(EventChange{
		EventID: eventID,
		Origin:  p.origin,
		At:      p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if err := p.rdb.Publish(ctx, p.channel, b).Err(); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

// Subscribe blocks, invoking handler for every change made elsewhere,
// until ctx is done. Undecodable messages are skipped.
func (p *EventsPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, eventID uuid.UUID)) error {
	const op = "redisx.EventsPubSub.Subscribe"

	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}

			var change EventChange
			if err := json.Unmarshal([]byte(m.Payload), &change); err != nil {
				continue
			}
			if change.EventID == uuid.Nil || change.Origin == p.origin {
				continue
			}

			handler(ctx, change.EventID)
		}
	}
}
