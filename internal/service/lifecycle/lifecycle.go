// Package lifecycle builds the bookings view of the dashboard.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/eventease/internal/domain"
)

// State selects which empty or populated rendering the dashboard shows.
type State string

const (
	StateEmpty       State = "empty"
	StateNoUpcoming  State = "no_upcoming"
	StateHasUpcoming State = "has_upcoming"
)

type View struct {
	Bookings  []domain.Booking `json:"bookings"`
	Upcoming  []domain.Booking `json:"upcoming"`
	Completed []domain.Booking `json:"completed"`
	State     State            `json:"state"`
}

type BookingLister interface {
	ListBookings(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error)
}

type Service struct {
	bookings BookingLister
	logger   *slog.Logger
	now      func() time.Time
}

func New(bookings BookingLister, logger *slog.Logger) *Service {
	return &Service{
		bookings: bookings,
		logger:   logger,
		now:      time.Now,
	}
}

// Load fetches the user's bookings and drops the orphaned ones.
func (s *Service) Load(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	const op = "service.lifecycle.Load"

	bookings, err := s.bookings.ListBookings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return DiscardOrphans(bookings), nil
}

// View loads and partitions the user's bookings against the start of the
// current day in loc, the viewer's zone. A nil loc means the server's zone.
// A failed load is logged and rendered as an empty view.
func (s *Service) View(ctx context.Context, userID uuid.UUID, loc *time.Location) View {
	now := s.now()
	if loc != nil {
		now = now.In(loc)
	}

	bookings, err := s.Load(ctx, userID)
	if err != nil {
		s.logger.Error("load bookings",
			slog.String("user_id", userID.String()),
			slog.Any("err", err),
		)
		return Build(nil, now)
	}

	return Build(bookings, now)
}

// DiscardOrphans returns the bookings whose event still exists. The input
// is not modified.
func DiscardOrphans(bookings []domain.Booking) []domain.Booking {
	out := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Orphaned() {
			continue
		}
		out = append(out, b)
	}

	return out
}

// StartOfDay truncates now to midnight in now's own location.
func StartOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// Partition splits bookings into those dated today or later and those
// dated before today. Orphaned bookings are skipped. Event dates carry no
// zone of their own, so they are compared as calendar dates in now's
// location.
func Partition(bookings []domain.Booking, now time.Time) (upcoming, completed []domain.Booking) {
	upcoming = []domain.Booking{}
	completed = []domain.Booking{}

	today := StartOfDay(now)

	for _, b := range bookings {
		if b.Orphaned() {
			continue
		}

		if eventDay(b.Event.Date, now.Location()).Before(today) {
			completed = append(completed, b)
		} else {
			upcoming = append(upcoming, b)
		}
	}

	return upcoming, completed
}

func eventDay(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Build discards orphans, partitions the rest and picks the state.
func Build(bookings []domain.Booking, now time.Time) View {
	kept := DiscardOrphans(bookings)
	upcoming, completed := Partition(kept, now)

	v := View{
		Bookings:  kept,
		Upcoming:  upcoming,
		Completed: completed,
	}

	switch {
	case len(kept) == 0:
		v.State = StateEmpty
	case len(upcoming) == 0:
		v.State = StateNoUpcoming
	default:
		v.State = StateHasUpcoming
	}

	return v
}
