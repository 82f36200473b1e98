package postgresrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/eventease/internal/domain"
)

type BookingRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *BookingRepo) With(db DB) *BookingRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *BookingRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// nullableEvent holds the LEFT JOINed event columns of a booking row.
type nullableEvent struct {
	ID          pgtype.UUID
	Title       pgtype.Text
	Description pgtype.Text
	Date        pgtype.Date
	Venue       pgtype.Text
	PriceCents  pgtype.Int4
	Category    pgtype.Text
	ImageRef    pgtype.Text
}

func (n *nullableEvent) dest() []any {
	return []any{
		&n.ID,
		&n.Title,
		&n.Description,
		&n.Date,
		&n.Venue,
		&n.PriceCents,
		&n.Category,
		&n.ImageRef,
	}
}

// event returns nil when the booking's event was deleted.
func (n *nullableEvent) event() *domain.Event {
	if !n.ID.Valid {
		return nil
	}

	return &domain.Event{
		ID:          uuid.UUID(n.ID.Bytes),
		Title:       n.Title.String,
		Description: n.Description.String,
		Date:        n.Date.Time,
		Venue:       n.Venue.String,
		PriceCents:  int(n.PriceCents.Int32),
		Category:    n.Category.String,
		ImageRef:    n.ImageRef.String,
	}
}

// ListByUser returns every booking of the user, newest first. Bookings
// whose event was deleted are returned with a nil Event.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	const op = "postgresrepo.BookingRepo.ListByUser"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT b.id, b.user_id, b.payment_status, b.created_at,
		        e.id, e.title, e.description, e.event_date, e.venue, e.price_cents, e.category, e.image_ref
		 FROM bookings b
		 LEFT JOIN events e ON e.id = b.event_id
		 WHERE b.user_id = $1
		 ORDER BY b.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	out := []domain.Booking{}
	for rows.Next() {
		var b domain.Booking
		var status string
		var ev nullableEvent

		dest := append([]any{&b.ID, &b.UserID, &status, &b.CreatedAt}, ev.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, wrapDBErr(op, err)
		}

		b.PaymentStatus = domain.StatusOrPaid(status)
		b.Event = ev.event()
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// Create inserts a paid booking.
//
// Returns:
//   - error: repository.ErrConflict if the user already booked the event.
//   - error: repository.ErrForeignKey if the user or event does not exist.
func (r *BookingRepo) Create(ctx context.Context, userID, eventID uuid.UUID) (*domain.Booking, error) {
	const op = "postgresrepo.BookingRepo.Create"

	db := r.handle()

	var b domain.Booking
	var status string

	err := db.QueryRow(ctx,
		`INSERT INTO bookings(user_id, event_id, payment_status)
		 VALUES ($1, $2, $3)
		 RETURNING id, user_id, payment_status, created_at`,
		userID, eventID, string(domain.PaymentPaid),
	).Scan(&b.ID, &b.UserID, &status, &b.CreatedAt)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	b.PaymentStatus = domain.StatusOrPaid(status)

	return &b, nil
}

const registrationSelect = `SELECT b.id, b.payment_status, b.created_at,
        u.id, u.full_name, u.email, u.phone, u.profile_pic, u.role, u.created_at,
        e.id, e.title, e.description, e.event_date, e.venue, e.price_cents, e.category, e.image_ref
 FROM bookings b
 JOIN users u ON u.id = b.user_id
 LEFT JOIN events e ON e.id = b.event_id`

func (r *BookingRepo) queryRegistrations(ctx context.Context, op, sql string, args ...any) ([]domain.Registration, error) {
	db := r.handle()

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	out := []domain.Registration{}
	for rows.Next() {
		var reg domain.Registration
		var status, role string
		var p domain.Profile
		var ev nullableEvent

		dest := append([]any{
			&reg.BookingID, &status, &reg.CreatedAt,
			&p.ID, &p.FullName, &p.Email, &p.Phone, &p.ProfilePic, &role, &p.CreatedAt,
		}, ev.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, wrapDBErr(op, err)
		}

		p.Role = domain.Role(role)
		reg.User = &p
		reg.PaymentStatus = domain.StatusOrPaid(status)
		reg.Event = ev.event()
		out = append(out, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// ListByEvent returns the registrations of one event, oldest first.
func (r *BookingRepo) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Registration, error) {
	const op = "postgresrepo.BookingRepo.ListByEvent"

	return r.queryRegistrations(ctx, op,
		registrationSelect+`
		 WHERE b.event_id = $1
		 ORDER BY b.created_at`,
		eventID,
	)
}

// ListAll returns every registration across all events, newest first.
func (r *BookingRepo) ListAll(ctx context.Context) ([]domain.Registration, error) {
	const op = "postgresrepo.BookingRepo.ListAll"

	return r.queryRegistrations(ctx, op,
		registrationSelect+`
		 ORDER BY b.created_at DESC`,
	)
}
