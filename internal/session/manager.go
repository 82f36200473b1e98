package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/eventease/internal/domain"
)

var ErrNoSession = errors.New("no session")

// Manager issues and resolves session tokens.
type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

func NewManager(store Store, secret []byte, ttl time.Duration, logger *slog.Logger) *Manager {
	return &Manager{
		store:  store,
		secret: secret,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Set stores sess under a fresh id and returns the token for the tab.
func (m *Manager) Set(ctx context.Context, sess domain.Session) (string, error) {
	const op = "session.Manager.Set"

	sid := uuid.NewString()

	if err := m.store.Save(ctx, sid, sess, m.ttl); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := signToken(sid, m.secret, m.now(), m.ttl)
	if err != nil {
		_ = m.store.Delete(ctx, sid)
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

// Get resolves token to its session. Every failure reads as "no session".
func (m *Manager) Get(ctx context.Context, token string) (domain.Session, bool) {
	if token == "" {
		return domain.Session{}, false
	}

	sid, err := parseToken(token, m.secret, m.now())
	if err != nil {
		return domain.Session{}, false
	}

	sess, ok, err := m.store.Load(ctx, sid)
	if err != nil {
		m.logger.Error("session lookup failed", slog.Any("err", err))
		return domain.Session{}, false
	}

	return sess, ok
}

// Clear removes the session behind token. Clearing an unknown or invalid
// token is not an error.
func (m *Manager) Clear(ctx context.Context, token string) error {
	const op = "session.Manager.Clear"

	sid, err := parseToken(token, m.secret, m.now())
	if err != nil {
		return nil
	}

	if err := m.store.Delete(ctx, sid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Refresh replaces the display name of the session behind token.
func (m *Manager) Refresh(ctx context.Context, token, displayName string) error {
	const op = "session.Manager.Refresh"

	sid, err := parseToken(token, m.secret, m.now())
	if err != nil {
		return fmt.Errorf("%s: %w", op, ErrNoSession)
	}

	sess, ok, err := m.store.Load(ctx, sid)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", op, ErrNoSession)
	}

	sess.DisplayName = displayName

	if err := m.store.Save(ctx, sid, sess, m.ttl); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
