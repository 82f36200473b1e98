// Package reconcile turns the return from the payment provider into a
// booking.
//
// The return URL is only a hint that payment succeeded. The reconciler
// asks the bookings backend to create the booking at most once per
// (user, event) while its lock or result lives and treats any failure as
// "the booking list decides". A handled return replaces the location, and
// the list is read by the request that follows.
package reconcile

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/eventease/internal/domain"
	redisx "github.com/kirinyoku/eventease/internal/redis"
	"github.com/kirinyoku/eventease/internal/service/lifecycle"
)

const (
	StatusSuccess = "success"

	// DashboardPath replaces the return URL once a success was handled.
	DashboardPath = "/dashboard"
)

type Notice string

const (
	NoticeNone       Notice = ""
	NoticeRegistered Notice = "registered"
)

func (n Notice) Message() string {
	switch n {
	case NoticeRegistered:
		return "Successfully registered for the event!"
	default:
		return ""
	}
}

// ReturnParams are the values the payment provider sends back.
type ReturnParams struct {
	Status  string
	EventID string
}

func ParseReturn(q url.Values) ReturnParams {
	return ReturnParams{
		Status:  q.Get("status"),
		EventID: q.Get("eventId"),
	}
}

func (p ReturnParams) succeeded() bool {
	return p.Status == StatusSuccess && p.EventID != ""
}

type Outcome struct {
	// Created is true only for the call that actually created the booking.
	Created bool
	Notice  Notice
	// ReplaceWith is the location that must replace the current one, or
	// empty when the current location may stay.
	ReplaceWith string
	// View is only read when the location stays.
	View lifecycle.View
}

type BookingCreator interface {
	CreateBooking(ctx context.Context, userID, eventID uuid.UUID) (*domain.Booking, error)
}

type BookingViewer interface {
	View(ctx context.Context, userID uuid.UUID, loc *time.Location) lifecycle.View
}

// Locker is the idempotency store guarding booking creation.
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	SaveResult(ctx context.Context, key string, payload string) error
	GetResult(ctx context.Context, key string) (string, bool, error)
	Release(ctx context.Context, key string) error
}

type Config struct {
	LockTTL time.Duration
}

type Reconciler struct {
	bookings BookingCreator
	viewer   BookingViewer
	locker   Locker
	logger   *slog.Logger
	cfg      Config
}

// New builds a Reconciler. locker may be nil; creation is then guarded by
// the backend's uniqueness alone.
func New(bookings BookingCreator, viewer BookingViewer, locker Locker, logger *slog.Logger, cfg Config) *Reconciler {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}

	return &Reconciler{
		bookings: bookings,
		viewer:   viewer,
		locker:   locker,
		logger:   logger,
		cfg:      cfg,
	}
}

// Reconcile handles one arrival on the dashboard for sess. Creation
// failures are logged, never returned; the booking list is the source of
// truth. When the location stays, the view is built for the viewer's zone
// loc. The only error is a context that ended before the view could be
// read.
func (r *Reconciler) Reconcile(ctx context.Context, sess domain.Session, p ReturnParams, loc *time.Location) (Outcome, error) {
	var out Outcome

	if p.succeeded() {
		out.ReplaceWith = DashboardPath

		if r.createOnce(ctx, sess.UserID, p.EventID) {
			out.Created = true
			out.Notice = NoticeRegistered
		}

		return out, nil
	}

	if err := ctx.Err(); err != nil {
		return out, err
	}

	out.View = r.viewer.View(ctx, sess.UserID, loc)

	return out, nil
}

type savedResult struct {
	BookingID uuid.UUID `json:"booking_id"`
}

func (r *Reconciler) createOnce(ctx context.Context, userID uuid.UUID, rawEventID string) bool {
	log := r.logger.With(
		slog.String("user_id", userID.String()),
		slog.String("event_id", rawEventID),
	)

	eventID, err := uuid.Parse(rawEventID)
	if err != nil {
		log.Warn("payment return carries an invalid event id", slog.Any("err", err))
		return false
	}

	key := redisx.KeyIdemBooking(userID, eventID)

	if r.locker != nil {
		acquired, err := r.locker.AcquireLock(ctx, key, r.cfg.LockTTL)
		switch {
		case err != nil:
			log.Warn("idempotency lock unavailable, relying on backend uniqueness", slog.Any("err", err))
		case !acquired:
			log.Info("payment return already handled", r.savedBooking(ctx, key))
			return false
		}
	}

	b, err := r.bookings.CreateBooking(ctx, userID, eventID)
	if err != nil {
		log.Warn("booking creation after payment failed", slog.Any("err", err))
		if r.locker != nil {
			if err := r.locker.Release(context.WithoutCancel(ctx), key); err != nil {
				log.Warn("release reconcile lock", slog.Any("err", err))
			}
		}
		return false
	}

	if r.locker != nil {
		payload, _ := json.Marshal(savedResult{BookingID: b.ID})
		if err := r.locker.SaveResult(ctx, key, string(payload)); err != nil {
			log.Warn("save reconcile result", slog.Any("err", err))
		}
	}

	log.Info("booking created after payment", slog.String("booking_id", b.ID.String()))

	return true
}

// savedBooking describes what an earlier handling of key left behind.
func (r *Reconciler) savedBooking(ctx context.Context, key string) slog.Attr {
	payload, ok, err := r.locker.GetResult(ctx, key)
	if err != nil || !ok {
		return slog.String("booking_id", "pending")
	}

	var res savedResult
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return slog.String("booking_id", "unknown")
	}

	return slog.String("booking_id", res.BookingID.String())
}
