package postgresrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/eventease/internal/domain"
)

type EventRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *EventRepo) With(db DB) *EventRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *EventRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const eventColumns = `id, title, description, event_date, venue, price_cents, category, image_ref`

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	var e domain.Event

	if err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&e.Date,
		&e.Venue,
		&e.PriceCents,
		&e.Category,
		&e.ImageRef,
	); err != nil {
		return nil, err
	}

	return &e, nil
}

// GetEvent retrieves an event by its ID.
//
// Returns:
//   - *domain.Event: the event when found.
//   - error: repository.ErrNotFound if the event is not found.
func (r *EventRepo) GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	const op = "postgresrepo.EventRepo.GetEvent"

	db := r.handle()

	e, err := scanEvent(db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return e, nil
}

// ListEvents lists all events ordered by date.
func (r *EventRepo) ListEvents(ctx context.Context) ([]domain.Event, error) {
	const op = "postgresrepo.EventRepo.ListEvents"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 ORDER BY event_date, title`,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	out := []domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}

		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}
