package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// TxQuerier is implemented by both pgxpool.Pool and pgx.Tx.
// Repository methods that must run inside a booking transaction accept TxQuerier.
type TxQuerier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// RetryOptions controls how NewPool retries the initial connection.
type RetryOptions struct {
	MaxRetries  int
	BaseBackoff time.Duration
}

// DefaultRetryOptions retries 5 times with backoff 1s, 2s, 4s, 8s, 16s.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{MaxRetries: 5, BaseBackoff: time.Second}
}

// NewPool creates a PostgreSQL connection pool, retrying with exponential backoff
// until a ping succeeds or the attempts run out.
func NewPool(ctx context.Context, dsn string, opts RetryOptions) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	var err error

	attempts := opts.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	base := opts.BaseBackoff
	if base <= 0 {
		base = time.Second
	}

	for attempt := 0; attempt < attempts; attempt++ {
		pool, err = pgxpool.New(ctx, dsn)
		if err == nil {
			pingErr := pool.Ping(ctx)
			if pingErr == nil {
				log.Info().Int("attempt", attempt+1).Msg("database connection established")
				return pool, nil
			}
			pool.Close()
			err = fmt.Errorf("ping failed: %w", pingErr)
		}

		if attempt == attempts-1 {
			break
		}

		backoff := base * time.Duration(1<<attempt)
		log.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Int("max_retries", attempts).
			Dur("next_retry_in", backoff).
			Msg("database connection failed, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return nil, fmt.Errorf("failed to connect after %d attempts: %w", attempts, err)
}
