package postgresrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/eventease/internal/domain"
)

type UserRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *UserRepo) With(db DB) *UserRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *UserRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const userColumns = `id, full_name, email, phone, profile_pic, role, password_hash, created_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	var role string

	if err := row.Scan(
		&u.ID,
		&u.FullName,
		&u.Email,
		&u.Phone,
		&u.ProfilePic,
		&role,
		&u.PasswordHash,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}

	u.Role = domain.Role(role)

	return &u, nil
}

// Create inserts a user. The email column is unique; a duplicate
// yields repository.ErrConflict.
func (r *UserRepo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	const op = "postgresrepo.UserRepo.Create"

	db := r.handle()

	created, err := scanUser(db.QueryRow(ctx,
		`INSERT INTO users(full_name, email, phone, profile_pic, role, password_hash)
		 VALUES ($1, lower($2), $3, $4, $5, $6)
		 RETURNING `+userColumns,
		u.FullName, u.Email, u.Phone, u.ProfilePic, string(u.Role), u.PasswordHash,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return created, nil
}

// GetByEmail looks a user up case-insensitively.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const op = "postgresrepo.UserRepo.GetByEmail"

	db := r.handle()

	u, err := scanUser(db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = lower($1)`,
		email,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "postgresrepo.UserRepo.GetByID"

	db := r.handle()

	u, err := scanUser(db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return u, nil
}

// UpdateProfile overwrites the editable profile fields and returns the
// updated row.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, upd domain.ProfileUpdate) (*domain.User, error) {
	const op = "postgresrepo.UserRepo.UpdateProfile"

	db := r.handle()

	u, err := scanUser(db.QueryRow(ctx,
		`UPDATE users
		 SET full_name = $2, email = lower($3), phone = $4, profile_pic = $5
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, upd.FullName, upd.Email, upd.Phone, upd.ProfilePic,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return u, nil
}
