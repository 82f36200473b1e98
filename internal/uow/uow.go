// Package uow runs service work inside one database transaction and
// defers side effects until that transaction committed.
package uow

import (
	"context"

	"github.com/jackc/pgx/v5"

	postgresrepo "github.com/kirinyoku/eventease/internal/repository/postgres"
)

// AfterCommit runs once the transaction committed.
type AfterCommit func(ctx context.Context)

// Tx exposes the repositories bound to the running transaction.
type Tx struct {
	db    postgresrepo.DB
	store *postgresrepo.Store
	hooks []AfterCommit
}

func (t *Tx) Users() *postgresrepo.UserRepo       { return t.store.Users().With(t.db) }
func (t *Tx) Events() *postgresrepo.EventRepo     { return t.store.Events().With(t.db) }
func (t *Tx) Bookings() *postgresrepo.BookingRepo { return t.store.Bookings().With(t.db) }
func (t *Tx) Admin() *postgresrepo.AdminRepo      { return t.store.Admin().With(t.db) }

// After schedules h for after the commit. Hooks of an attempt that was
// rolled back never run.
func (t *Tx) After(h AfterCommit) {
	t.hooks = append(t.hooks, h)
}

type UoW struct {
	store *postgresrepo.Store
}

func NewUoW(store *postgresrepo.Store) *UoW {
	return &UoW{store: store}
}

// Do runs fn in a serializable transaction.
func (u *UoW) Do(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	return u.DoWithOpts(ctx, nil, fn)
}

// DoWithOpts runs fn in a transaction with opts. fn may run more than once
// when the transaction is retried. Hooks run in registration order on a
// context that outlives the caller's cancellation.
func (u *UoW) DoWithOpts(ctx context.Context, opts *pgx.TxOptions, fn func(ctx context.Context, tx *Tx) error) error {
	var committed *Tx

	err := u.store.RunTx(ctx, opts, func(ctx context.Context, db postgresrepo.DB) error {
		tx := &Tx{db: db, store: u.store}
		if err := fn(ctx, tx); err != nil {
			return err
		}
		committed = tx
		return nil
	})
	if err != nil {
		return err
	}

	hookCtx := context.WithoutCancel(ctx)
	for _, h := range committed.hooks {
		h(hookCtx)
	}

	return nil
}
