package bookings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kirinyoku/eventease/internal/domain"
	"github.com/kirinyoku/eventease/internal/mq"
	"github.com/kirinyoku/eventease/internal/repository"
	postgresrepo "github.com/kirinyoku/eventease/internal/repository/postgres"
	"github.com/kirinyoku/eventease/internal/uow"
)

// ConfirmationPublisher announces committed bookings.
type ConfirmationPublisher interface {
	PublishBookingConfirmed(ctx context.Context, msg mq.BookingConfirmedMessage) error
}

type Service struct {
	store     *postgresrepo.Store
	uow       *uow.UoW
	publisher ConfirmationPublisher
	logger    *slog.Logger
}

// New builds the service. publisher may be nil, in which case no
// confirmations are sent.
func New(store *postgresrepo.Store, publisher ConfirmationPublisher, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		uow:       uow.NewUoW(store),
		publisher: publisher,
		logger:    logger,
	}
}

// ListBookings returns all bookings of the user, orphaned ones included.
func (s *Service) ListBookings(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	const op = "service.bookings.ListBookings"

	bookings, err := s.store.Bookings().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bookings, nil
}

// CreateBooking records a paid booking of eventID by userID.
//
// Returns:
//   - *domain.Booking: the created booking, with its event.
//   - error: bookings.ErrAlreadyBooked if the user already holds a booking
//     for the event.
//   - error: bookings.ErrEventNotFound if the event does not exist.
//   - error: bookings.ErrUserNotFound if the user does not exist.
func (s *Service) CreateBooking(ctx context.Context, userID, eventID uuid.UUID) (*domain.Booking, error) {
	const op = "service.bookings.CreateBooking"

	var created *domain.Booking

	err := s.uow.Do(ctx, func(ctx context.Context, tx *uow.Tx) error {
		event, err := tx.Events().GetEvent(ctx, eventID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrEventNotFound)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		user, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrUserNotFound)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		b, err := tx.Bookings().Create(ctx, userID, eventID)
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrConflict):
				return fmt.Errorf("%s: %w", op, ErrAlreadyBooked)
			case errors.Is(err, repository.ErrForeignKey):
				return fmt.Errorf("%s: %w", op, ErrEventNotFound)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		b.Event = event
		created = b

		tx.After(func(ctx context.Context) {
			s.publishConfirmed(ctx, user, b)
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (s *Service) publishConfirmed(ctx context.Context, user *domain.User, b *domain.Booking) {
	if s.publisher == nil {
		return
	}

	msg := mq.BookingConfirmedMessage{
		BookingID:  b.ID,
		UserID:     user.ID,
		Email:      user.Email,
		FullName:   user.FullName,
		EventID:    b.Event.ID,
		EventTitle: b.Event.Title,
		EventDate:  b.Event.Date,
		Venue:      b.Event.Venue,
		BookedAt:   b.CreatedAt,
	}

	if err := s.publisher.PublishBookingConfirmed(ctx, msg); err != nil {
		s.logger.Warn("publish booking confirmation",
			slog.String("booking_id", b.ID.String()),
			slog.Any("err", err),
		)
	}
}
