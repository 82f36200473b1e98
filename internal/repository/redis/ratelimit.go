package redisrepo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	redisx "github.com/kirinyoku/eventease/internal/redis"
	"github.com/redis/go-redis/v9"
)

// SlidingWindowLimiter allows at most limit hits per window and per key.
// Hits live in a sorted set scored by their time in milliseconds; rejected
// hits are recorded too, so hammering keeps the caller locked out.
type SlidingWindowLimiter struct {
	rdb    *redis.Client
	scope  string
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewSlidingWindowLimiter creates a limiter whose keys live under
// redisx.KeyRateLimit(scope).
func NewSlidingWindowLimiter(
	rdb *redis.Client,
	scope string,
	limit int,
	window time.Duration,
) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		rdb:    rdb,
		scope:  scope,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (l *SlidingWindowLimiter) key(suffix string) string {
	return redisx.KeyRateLimit(l.scope) + ":" + suffix
}

// Allow records a hit for suffix. When the limit is exceeded it reports
// how long until the oldest hit leaves the window.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, suffix string) (allowed bool, current int64, retryAfter time.Duration, err error) {
	const op = "redisrepo.SlidingWindowLimiter.Allow"

	key := l.key(suffix)
	nowMs := l.now().UnixMilli()
	winMs := l.window.Milliseconds()

	var (
		count  *redis.IntCmd
		oldest *redis.ZSliceCmd
	)

	_, err = l.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(nowMs-winMs, 10))
		p.ZAdd(ctx, key, redis.Z{Score: float64(nowMs), Member: uuid.NewString()})
		count = p.ZCard(ctx, key)
		oldest = p.ZRangeWithScores(ctx, key, 0, 0)
		p.PExpire(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return false, 0, 0, fmt.Errorf("%s:%w", op, err)
	}

	current = count.Val()
	if current <= int64(l.limit) {
		return true, current, 0, nil
	}

	earliest := nowMs - winMs
	if z := oldest.Val(); len(z) > 0 {
		earliest = int64(z[0].Score)
	}

	wait := winMs - (nowMs - earliest)
	if wait < 0 {
		wait = 0
	}

	return false, current, time.Duration(wait) * time.Millisecond, nil
}
