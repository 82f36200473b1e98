package redisrepo

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/kirinyoku/eventease/internal/domain"
	redisx "github.com/kirinyoku/eventease/internal/redis"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return mr, rdb
}

func TestSessionStore(t *testing.T) {
	mr, rdb := newRedis(t)
	store := NewSessionStore(rdb)
	ctx := context.Background()

	sess := domain.Session{UserID: uuid.New(), Role: domain.RoleAdmin, DisplayName: "Ada"}
	require.NoError(t, store.Save(ctx, "sid-1", sess, time.Hour))

	got, ok, err := store.Load(ctx, "sid-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, sess, got)

	require.Equal(t, time.Hour, mr.TTL(redisx.KeySession("sid-1")))

	_, ok, err = store.Load(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Delete(ctx, "sid-1"))
	_, ok, err = store.Load(ctx, "sid-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSessionStore_Expires(t *testing.T) {
	mr, rdb := newRedis(t)
	store := NewSessionStore(rdb)
	ctx := context.Background()

	sess := domain.Session{UserID: uuid.New(), Role: domain.RoleUser, DisplayName: "Bo"}
	require.NoError(t, store.Save(ctx, "sid", sess, time.Minute))

	mr.FastForward(2 * time.Minute)

	_, ok, err := store.Load(ctx, "sid")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSessionStore_RejectsUnknownRole(t *testing.T) {
	mr, rdb := newRedis(t)
	store := NewSessionStore(rdb)

	mr.HSet(redisx.KeySession("bad"), fieldUserID, uuid.NewString(), fieldRole, "root", fieldDisplayName, "x")

	_, ok, err := store.Load(context.Background(), "bad")
	require.Error(t, err)
	require.False(t, ok)
}

func TestIdempotencyStore(t *testing.T) {
	_, rdb := newRedis(t)
	idem := NewIdempotencyStore(rdb, time.Hour)
	ctx := context.Background()

	ok, err := idem.AcquireLock(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = idem.AcquireLock(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	_, found, err := idem.GetResult(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, idem.SaveResult(ctx, "k", `{"created":true}`))
	payload, found, err := idem.GetResult(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.JSONEq(t, `{"created":true}`, payload)

	ok, err = idem.AcquireLock(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, idem.Release(ctx, "k"))
	ok, err = idem.AcquireLock(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSlidingWindowLimiter(t *testing.T) {
	_, rdb := newRedis(t)
	l := NewSlidingWindowLimiter(rdb, "login", 2, time.Minute)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, _, _, err := l.Allow(ctx, "ip:1.2.3.4")
		require.NoError(t, err)
		require.True(t, ok)
	}

	ok, count, retry, err := l.Allow(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	require.False(t, ok)
	require.EqualValues(t, 3, count)
	require.Equal(t, time.Minute, retry)

	ok, _, _, err = l.Allow(ctx, "ip:5.6.7.8")
	require.NoError(t, err)
	require.True(t, ok)
}

type cached struct {
	Name string `json:"name"`
}

func TestGetOrSetJSON(t *testing.T) {
	_, rdb := newRedis(t)
	c := New(rdb)
	ctx := context.Background()

	var calls atomic.Int32
	load := func(context.Context) (cached, error) {
		calls.Add(1)
		return cached{Name: "gala"}, nil
	}

	v, err := GetOrSetJSON(ctx, c, "k", time.Minute, load)
	require.NoError(t, err)
	require.Equal(t, "gala", v.Name)

	v, err = GetOrSetJSON(ctx, c, "k", time.Minute, load)
	require.NoError(t, err)
	require.Equal(t, "gala", v.Name)
	require.EqualValues(t, 1, calls.Load())

	boom := errors.New("boom")
	_, err = GetOrSetJSON(ctx, c, "other", time.Minute, func(context.Context) (cached, error) {
		return cached{}, boom
	})
	require.ErrorIs(t, err, boom)
}

func TestGetOrSetJSON_CorruptEntryReloads(t *testing.T) {
	mr, rdb := newRedis(t)
	c := New(rdb)
	ctx := context.Background()

	require.NoError(t, mr.Set("k", "{not json"))

	v, err := GetOrSetJSON(ctx, c, "k", time.Minute, func(context.Context) (cached, error) {
		return cached{Name: "fresh"}, nil
	})
	require.NoError(t, err)
	require.Equal(t, "fresh", v.Name)

	got, ok, err := GetJSON[cached](ctx, c, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "fresh", got.Name)
}

func TestGetOrSetJSON_RedisDownFallsThrough(t *testing.T) {
	mr, rdb := newRedis(t)
	c := New(rdb)
	mr.Close()

	v, err := GetOrSetJSON(context.Background(), c, "k", time.Minute, func(context.Context) (cached, error) {
		return cached{Name: "db"}, nil
	})
	require.NoError(t, err)
	require.Equal(t, "db", v.Name)
}

func TestCache_InvalidateEvent(t *testing.T) {
	mr, rdb := newRedis(t)
	c := New(rdb)
	ctx := context.Background()

	id := uuid.New()
	require.NoError(t, SetJSON(ctx, c, redisx.KeyEvent(id), domain.Event{ID: id}, time.Minute))
	require.NoError(t, SetJSON(ctx, c, redisx.KeyEventsList(), []domain.Event{{ID: id}}, time.Minute))

	require.NoError(t, c.InvalidateEvent(ctx, id))

	require.False(t, mr.Exists(redisx.KeyEvent(id)))
	require.False(t, mr.Exists(redisx.KeyEventsList()))
}
