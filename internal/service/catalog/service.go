package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/eventease/internal/domain"
	redisx "github.com/kirinyoku/eventease/internal/redis"
	"github.com/kirinyoku/eventease/internal/repository"
	redisrepo "github.com/kirinyoku/eventease/internal/repository/redis"
)

// FeaturedCount is how many upcoming events the home view shows.
const FeaturedCount = 4

type EventReader interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
}

type Config struct {
	EventTTL time.Duration
	ListTTL  time.Duration
}

type Service struct {
	events EventReader
	cache  *redisrepo.Cache
	cfg    Config
}

// New builds the catalog. cache may be nil to read straight through.
func New(events EventReader, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.EventTTL <= 0 {
		cfg.EventTTL = 60 * time.Second
	}

	if cfg.ListTTL <= 0 {
		cfg.ListTTL = 30 * time.Second
	}

	return &Service{
		events: events,
		cache:  cache,
		cfg:    cfg,
	}
}

// GetEvent retrieves an event by its ID through the cache.
//
// Returns:
//   - *domain.Event: the event when found.
//   - error: catalog.ErrEventNotFound if the event is not found.
func (s *Service) GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	const op = "service.catalog.GetEvent"

	load := func(ctx context.Context) (domain.Event, error) {
		e, err := s.events.GetEvent(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.Event{}, ErrEventNotFound
			}
			return domain.Event{}, err
		}
		return *e, nil
	}

	var (
		event domain.Event
		err   error
	)
	if s.cache != nil {
		event, err = redisrepo.GetOrSetJSON(ctx, s.cache, redisx.KeyEvent(id), s.cfg.EventTTL, load)
	} else {
		event, err = load(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &event, nil
}

// ListEvents returns every event ordered by date.
func (s *Service) ListEvents(ctx context.Context) ([]domain.Event, error) {
	const op = "service.catalog.ListEvents"

	var (
		events []domain.Event
		err    error
	)
	if s.cache != nil {
		events, err = redisrepo.GetOrSetJSON(ctx, s.cache, redisx.KeyEventsList(), s.cfg.ListTTL, s.events.ListEvents)
	} else {
		events, err = s.events.ListEvents(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, nil
}

// Featured picks up to n events dated today or later, soonest first.
func Featured(events []domain.Event, now time.Time, n int) []domain.Event {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	out := make([]domain.Event, 0, n)
	for _, e := range events {
		ey, em, ed := e.Date.Date()
		if time.Date(ey, em, ed, 0, 0, 0, 0, now.Location()).Before(today) {
			continue
		}
		out = append(out, e)
	}

	slices.SortStableFunc(out, func(a, b domain.Event) int {
		return a.Date.Compare(b.Date)
	})

	if len(out) > n {
		out = out[:n]
	}

	return out
}

// Invalidate drops the cached copies of one event and of the list.
func (s *Service) Invalidate(ctx context.Context, id uuid.UUID) error {
	if s.cache == nil {
		return nil
	}

	return s.cache.InvalidateEvent(ctx, id)
}
