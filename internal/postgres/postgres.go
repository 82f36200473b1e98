package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
)

type Config struct {
	DSN      string
	MaxConns int32
	// ConnectAttempts bounds the start-up pings while the database comes up.
	ConnectAttempts uint64
}

func New(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	const op = "postgres.New"

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	attempts := cfg.ConnectAttempts
	if attempts == 0 {
		attempts = 5
	}

	backoff := retry.WithMaxRetries(attempts-1, retry.NewExponential(200*time.Millisecond))

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		ctxPing, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()

		if err := pool.Ping(ctxPing); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return pool, nil
}
