// Package registration tells whether a user may start registering for an
// event. The answer is advisory: the bookings table rejects duplicates
// on its own.
package registration

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kirinyoku/eventease/internal/domain"
)

type Decision string

const (
	DecisionProceed           Decision = "proceed"
	DecisionAlreadyRegistered Decision = "already_registered"
	DecisionLoginRequired     Decision = "login_required"
)

type BookingLister interface {
	ListBookings(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error)
}

type Gate struct {
	bookings BookingLister
}

func NewGate(bookings BookingLister) *Gate {
	return &Gate{bookings: bookings}
}

// IsRegistered reports whether the user holds a booking for eventID whose
// event still exists.
func (g *Gate) IsRegistered(ctx context.Context, userID, eventID uuid.UUID) (bool, error) {
	const op = "service.registration.IsRegistered"

	bookings, err := g.bookings.ListBookings(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	for _, b := range bookings {
		if !b.Orphaned() && b.Event.ID == eventID {
			return true, nil
		}
	}

	return false, nil
}

// Check decides what a registration attempt by sess should lead to.
// sess is nil for a signed-out visitor.
func (g *Gate) Check(ctx context.Context, sess *domain.Session, eventID uuid.UUID) (Decision, error) {
	if sess == nil {
		return DecisionLoginRequired, nil
	}

	registered, err := g.IsRegistered(ctx, sess.UserID, eventID)
	if err != nil {
		return "", err
	}

	if registered {
		return DecisionAlreadyRegistered, nil
	}

	return DecisionProceed, nil
}
