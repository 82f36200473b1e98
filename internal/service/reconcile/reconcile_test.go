package reconcile

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/kirinyoku/eventease/internal/domain"
	redisrepo "github.com/kirinyoku/eventease/internal/repository/redis"
	"github.com/kirinyoku/eventease/internal/service/lifecycle"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDuplicate = errors.New("already booked")

// fakeBackend creates at most one booking per (user, event), like the
// bookings table does.
type fakeBackend struct {
	mu       sync.Mutex
	calls    int
	bookings map[[2]uuid.UUID]domain.Booking
	err      error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{bookings: map[[2]uuid.UUID]domain.Booking{}}
}

func (f *fakeBackend) CreateBooking(_ context.Context, userID, eventID uuid.UUID) (*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return nil, f.err
	}

	k := [2]uuid.UUID{userID, eventID}
	if _, ok := f.bookings[k]; ok {
		return nil, errDuplicate
	}

	b := domain.Booking{
		ID:     uuid.New(),
		UserID: userID,
		Event:  &domain.Event{ID: eventID, Date: time.Now().AddDate(0, 0, 7)},
	}
	f.bookings[k] = b

	return &b, nil
}

func (f *fakeBackend) View(_ context.Context, userID uuid.UUID, loc *time.Location) lifecycle.View {
	f.mu.Lock()
	defer f.mu.Unlock()

	var list []domain.Booking
	for k, b := range f.bookings {
		if k[0] == userID {
			list = append(list, b)
		}
	}

	now := time.Now()
	if loc != nil {
		now = now.In(loc)
	}

	return lifecycle.Build(list, now)
}

type fakeLocker struct {
	mu          sync.Mutex
	keys        map[string]string
	err         error
	released    []string
	releaseErrs []error
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{keys: map[string]string{}}
}

func (l *fakeLocker) AcquireLock(_ context.Context, key string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.err != nil {
		return false, l.err
	}
	if _, ok := l.keys[key]; ok {
		return false, nil
	}
	l.keys[key] = "LOCK"

	return true, nil
}

func (l *fakeLocker) SaveResult(_ context.Context, key, payload string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.keys[key] = payload
	return nil
}

func (l *fakeLocker) GetResult(_ context.Context, key string) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.keys[key]
	if !ok || v == "LOCK" {
		return "", false, nil
	}
	return v, true, nil
}

func (l *fakeLocker) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.releaseErrs = append(l.releaseErrs, ctx.Err())
	if ctx.Err() != nil {
		return ctx.Err()
	}

	delete(l.keys, key)
	l.released = append(l.released, key)
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func session() domain.Session {
	return domain.Session{UserID: uuid.New(), Role: domain.RoleUser, DisplayName: "Ada"}
}

func success(eventID uuid.UUID) ReturnParams {
	return ReturnParams{Status: StatusSuccess, EventID: eventID.String()}
}

func TestParseReturn(t *testing.T) {
	t.Parallel()

	q, err := url.ParseQuery("status=success&eventId=abc&other=1")
	require.NoError(t, err)
	require.Equal(t, ReturnParams{Status: "success", EventID: "abc"}, ParseReturn(q))

	require.Equal(t, ReturnParams{}, ParseReturn(url.Values{}))
}

func TestReconcile_SuccessCreatesOnce(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	r := New(backend, backend, newFakeLocker(), discard(), Config{})

	sess := session()
	event := uuid.New()
	ctx := context.Background()

	out, err := r.Reconcile(ctx, sess, success(event), nil)
	require.NoError(t, err)
	require.True(t, out.Created)
	require.Equal(t, NoticeRegistered, out.Notice)
	require.Equal(t, "/dashboard", out.ReplaceWith)
	require.Empty(t, out.View.Bookings, "the replacing location renders the list")

	// Replays (refresh, back button) must not create or notify again.
	for i := 0; i < 3; i++ {
		out, err = r.Reconcile(ctx, sess, success(event), nil)
		require.NoError(t, err)
		require.False(t, out.Created)
		require.Equal(t, NoticeNone, out.Notice)
		require.Equal(t, "/dashboard", out.ReplaceWith)
	}

	require.Equal(t, 1, backend.calls)

	out, err = r.Reconcile(ctx, sess, ReturnParams{}, nil)
	require.NoError(t, err)
	require.Empty(t, out.ReplaceWith)
	require.Len(t, out.View.Bookings, 1)
	require.Equal(t, lifecycle.StateHasUpcoming, out.View.State)
}

func TestReconcile_ConcurrentReplays(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	r := New(backend, backend, newFakeLocker(), discard(), Config{})

	sess := session()
	event := uuid.New()

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := r.Reconcile(context.Background(), sess, success(event), nil)
			assert.NoError(t, err)
			if out.Created {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, created)
	require.Equal(t, 1, backend.calls)
}

func TestReconcile_BackendRejectsDuplicate(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	sess := session()
	event := uuid.New()

	_, err := backend.CreateBooking(context.Background(), sess.UserID, event)
	require.NoError(t, err)

	locker := newFakeLocker()
	r := New(backend, backend, locker, discard(), Config{})

	out, err := r.Reconcile(context.Background(), sess, success(event), nil)
	require.NoError(t, err)
	require.False(t, out.Created)
	require.Equal(t, NoticeNone, out.Notice)
	require.Equal(t, "/dashboard", out.ReplaceWith)
	require.Len(t, backend.View(context.Background(), sess.UserID, nil).Bookings, 1)
	require.Len(t, locker.released, 1, "a failed attempt releases its lock")
}

func TestReconcile_NonSuccessOnlyRefreshes(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	r := New(backend, backend, newFakeLocker(), discard(), Config{})

	for _, p := range []ReturnParams{
		{},
		{Status: "cancel", EventID: uuid.NewString()},
		{Status: StatusSuccess},
	} {
		out, err := r.Reconcile(context.Background(), session(), p, nil)
		require.NoError(t, err)
		require.False(t, out.Created)
		require.Empty(t, out.ReplaceWith)
		require.Equal(t, lifecycle.StateEmpty, out.View.State)
	}

	require.Zero(t, backend.calls)
}

func TestReconcile_InvalidEventID(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	r := New(backend, backend, newFakeLocker(), discard(), Config{})

	out, err := r.Reconcile(context.Background(), session(), ReturnParams{Status: StatusSuccess, EventID: "42"}, nil)
	require.NoError(t, err)
	require.False(t, out.Created)
	require.Equal(t, "/dashboard", out.ReplaceWith)
	require.Zero(t, backend.calls)
}

func TestReconcile_LockerDownStillCreates(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	locker := newFakeLocker()
	locker.err = errors.New("redis down")
	r := New(backend, backend, locker, discard(), Config{})

	out, err := r.Reconcile(context.Background(), session(), success(uuid.New()), nil)
	require.NoError(t, err)
	require.True(t, out.Created)
	require.Equal(t, 1, backend.calls)
}

func TestReconcile_NilLocker(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	r := New(backend, backend, nil, discard(), Config{})

	sess := session()
	event := uuid.New()

	out, err := r.Reconcile(context.Background(), sess, success(event), nil)
	require.NoError(t, err)
	require.True(t, out.Created)

	out, err = r.Reconcile(context.Background(), sess, success(event), nil)
	require.NoError(t, err)
	require.False(t, out.Created)
	require.Equal(t, 2, backend.calls)
	require.Len(t, backend.View(context.Background(), sess.UserID, nil).Bookings, 1)
}

func TestReconcile_BackendErrorNotSurfaced(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	backend.err = errors.New("500")
	r := New(backend, backend, newFakeLocker(), discard(), Config{})

	out, err := r.Reconcile(context.Background(), session(), success(uuid.New()), nil)
	require.NoError(t, err)
	require.False(t, out.Created)
	require.Equal(t, "/dashboard", out.ReplaceWith)
}

func TestReconcile_CanceledContext(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	r := New(backend, backend, nil, discard(), Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Reconcile(ctx, session(), ReturnParams{}, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestReconcile_WithRedisIdempotencyStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	backend := newFakeBackend()
	r := New(backend, backend, redisrepo.NewIdempotencyStore(rdb, time.Hour), discard(), Config{})

	sess := session()
	event := uuid.New()

	out, err := r.Reconcile(context.Background(), sess, success(event), nil)
	require.NoError(t, err)
	require.True(t, out.Created)

	out, err = r.Reconcile(context.Background(), sess, success(event), nil)
	require.NoError(t, err)
	require.False(t, out.Created)
	require.Equal(t, 1, backend.calls)
}

func TestReconcile_ReleasesLockAfterClientLeft(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	backend.err = errors.New("500")
	locker := newFakeLocker()
	r := New(backend, backend, locker, discard(), Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := r.Reconcile(ctx, session(), success(uuid.New()), nil)
	require.NoError(t, err)
	require.False(t, out.Created)
	require.Equal(t, []error{nil}, locker.releaseErrs)
	require.Len(t, locker.released, 1)
	require.Empty(t, locker.keys)
}

func TestReconcile_ReplayLogsSavedBooking(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	backend := newFakeBackend()
	r := New(backend, backend, newFakeLocker(), slog.New(slog.NewTextHandler(&buf, nil)), Config{})

	sess := session()
	event := uuid.New()

	_, err := r.Reconcile(context.Background(), sess, success(event), nil)
	require.NoError(t, err)

	var created domain.Booking
	for _, b := range backend.bookings {
		created = b
	}

	buf.Reset()
	_, err = r.Reconcile(context.Background(), sess, success(event), nil)
	require.NoError(t, err)
	require.Contains(t, buf.String(), "payment return already handled")
	require.Contains(t, buf.String(), "booking_id="+created.ID.String())
}

func TestNoticeMessage(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Successfully registered for the event!", NoticeRegistered.Message())
	require.Empty(t, NoticeNone.Message())
	require.Empty(t, Notice("bogus").Message())
}
