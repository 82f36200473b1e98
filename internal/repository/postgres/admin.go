package postgresrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/eventease/internal/repository"
)

type AdminRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *AdminRepo) With(db DB) *AdminRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *AdminRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// DeleteEvent removes an event. Its bookings stay behind with a NULL
// event_id and show up as orphaned.
//
// Returns:
//   - int64: number of bookings orphaned by the delete.
//   - error: repository.ErrNotFound if the event does not exist.
func (r *AdminRepo) DeleteEvent(ctx context.Context, id uuid.UUID) (int64, error) {
	const op = "postgresrepo.AdminRepo.DeleteEvent"

	db := r.handle()

	var orphaned int64
	if err := db.QueryRow(ctx,
		`SELECT count(*) FROM bookings WHERE event_id = $1`,
		id,
	).Scan(&orphaned); err != nil {
		return 0, wrapDBErr(op, err)
	}

	tag, err := db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return 0, wrapDBErr(op, repository.ErrNotFound)
	}

	return orphaned, nil
}
