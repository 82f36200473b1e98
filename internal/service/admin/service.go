package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kirinyoku/eventease/internal/domain"
	"github.com/kirinyoku/eventease/internal/repository"
	postgresrepo "github.com/kirinyoku/eventease/internal/repository/postgres"
	"github.com/kirinyoku/eventease/internal/uow"
)

type CacheInvalidator interface {
	InvalidateEvent(ctx context.Context, eventID uuid.UUID) error
}

type ChangePublisher interface {
	PublishEventChanged(ctx context.Context, eventID uuid.UUID) error
}

type Service struct {
	store  *postgresrepo.Store
	cache  CacheInvalidator
	pubsub ChangePublisher
	uow    *uow.UoW
	logger *slog.Logger
}

func New(store *postgresrepo.Store, cache CacheInvalidator, pubsub ChangePublisher, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		pubsub: pubsub,
		uow:    uow.NewUoW(store),
		logger: logger,
	}
}

// DeleteEvent removes an event. Bookings of the event are kept and
// become orphaned; every user's dashboard then hides them.
//
// Returns:
//   - int64: number of bookings orphaned.
//   - error: admin.ErrEventNotFound if the event does not exist.
func (s *Service) DeleteEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	const op = "service.admin.DeleteEvent"

	var orphaned int64

	err := s.uow.Do(ctx, func(ctx context.Context, tx *uow.Tx) error {
		var err error
		orphaned, err = tx.Admin().DeleteEvent(ctx, eventID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrEventNotFound)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		tx.After(func(ctx context.Context) {
			s.announce(ctx, eventID)
		})
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("event deleted",
		slog.String("event_id", eventID.String()),
		slog.Int64("orphaned_bookings", orphaned),
	)

	return orphaned, nil
}

func (s *Service) announce(ctx context.Context, eventID uuid.UUID) {
	if s.cache != nil {
		if err := s.cache.InvalidateEvent(ctx, eventID); err != nil {
			s.logger.Warn("invalidate event cache", slog.String("event_id", eventID.String()), slog.Any("err", err))
		}
	}

	if s.pubsub != nil {
		if err := s.pubsub.PublishEventChanged(ctx, eventID); err != nil {
			s.logger.Warn("publish event change", slog.String("event_id", eventID.String()), slog.Any("err", err))
		}
	}
}

// Dashboard lists all events and all registrations.
func (s *Service) Dashboard(ctx context.Context) ([]domain.Event, []domain.Registration, error) {
	const op = "service.admin.Dashboard"

	events, err := s.store.Events().ListEvents(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	regs, err := s.store.Bookings().ListAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, regs, nil
}

// EventRegistrations returns an event together with who registered for it.
//
// Returns:
//   - error: admin.ErrEventNotFound if the event does not exist.
func (s *Service) EventRegistrations(ctx context.Context, eventID uuid.UUID) (*domain.Event, []domain.Registration, error) {
	const op = "service.admin.EventRegistrations"

	event, err := s.store.Events().GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	regs, err := s.store.Bookings().ListByEvent(ctx, eventID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return event, regs, nil
}
