package redisrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/eventease/internal/domain"
	redisx "github.com/kirinyoku/eventease/internal/redis"
	"github.com/redis/go-redis/v9"
)

const (
	fieldUserID      = "user_id"
	fieldRole        = "role"
	fieldDisplayName = "display_name"
)

// SessionStore keeps each session as one hash so that its fields are
// written, expired and removed together.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func (s *SessionStore) Save(ctx context.Context, id string, sess domain.Session, ttl time.Duration) error {
	const op = "redisrepo.SessionStore.Save"

	key := redisx.KeySession(id)

	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key,
			fieldUserID, sess.UserID.String(),
			fieldRole, string(sess.Role),
			fieldDisplayName, sess.DisplayName,
		)
		p.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

// Load reports false when no session is stored under id.
func (s *SessionStore) Load(ctx context.Context, id string) (domain.Session, bool, error) {
	const op = "redisrepo.SessionStore.Load"

	vals, err := s.rdb.HGetAll(ctx, redisx.KeySession(id)).Result()
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("%s:%w", op, err)
	}

	if len(vals) == 0 {
		return domain.Session{}, false, nil
	}

	userID, err := uuid.Parse(vals[fieldUserID])
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("%s: bad user id: %w", op, err)
	}

	role, err := domain.ParseRole(vals[fieldRole])
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("%s:%w", op, err)
	}

	return domain.Session{
		UserID:      userID,
		Role:        role,
		DisplayName: vals[fieldDisplayName],
	}, true, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	const op = "redisrepo.SessionStore.Delete"

	if err := s.rdb.Del(ctx, redisx.KeySession(id)).Err(); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}
