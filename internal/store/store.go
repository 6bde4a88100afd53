// Package store owns the PostgreSQL connection pool and schema migrations.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Pool is the subset of *pgxpool.Pool used by the repositories. pgxmock.PgxPoolIface satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ Pool = (*pgxpool.Pool)(nil)

// ConnectOptions controls pool sizing and the startup retry loop.
type ConnectOptions struct {
	MaxConns     int
	Attempts     int
	InitialDelay time.Duration
}

// Connect opens a pool against databaseURL and pings it, retrying with
// exponential backoff while the database is still coming up.
func Connect(ctx context.Context, databaseURL string, opts ConnectOptions) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONFIG_INVALID").Wrap(err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = int32(opts.MaxConns)
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 1
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = 500 * time.Millisecond
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}

	attempt := 0
	backoff := retry.WithMaxRetries(uint64(opts.Attempts-1), retry.NewExponential(opts.InitialDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := pool.Ping(ctx); err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("database not ready")
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").With("attempts", attempt).Wrap(err)
	}

	log.Info().Int32("max_conns", cfg.MaxConns).Msg("database connected")
	return pool, nil
}
