package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aholiveira/zabbix-VB-R-SQL/internal/config"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

// Opener opens a database handle. sql.Open is the default.
type Opener func(driverName, dsn string) (*sql.DB, error)

// QueryError is the single failure value reported for a query that could
// not produce data, whether the connection or the statement failed.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string { return fmt.Sprintf("database %s failed: %v", e.Op, e.Err) }

func (e *QueryError) Unwrap() error { return e.Err }

// Executor runs read-only queries, each on its own connection.
type Executor struct {
	driver     string
	dsn        string
	open       Opener
	retryDelay time.Duration
	logger     zerolog.Logger
}

type Option func(*Executor)

func WithOpener(o Opener) Option {
	return func(e *Executor) { e.open = o }
}

func WithRetryDelay(d time.Duration) Option {
	return func(e *Executor) { e.retryDelay = d }
}

func NewExecutor(cfg config.DatabaseConfig, logger zerolog.Logger, opts ...Option) (*Executor, error) {
	driver, dsn, err := BuildDSN(cfg)
	if err != nil {
		return nil, err
	}
	e := &Executor{
		driver:     driver,
		dsn:        dsn,
		open:       sql.Open,
		retryDelay: cfg.RetryDelay,
		logger:     logger.With().Str("component", "database").Str("driver", driver).Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Query opens a connection, runs query and hands the rows to scan. A failed
// open is retried once after the configured delay. The statement runs
// without a deadline so large history tables are read in full. The
// connection is closed before Query returns on every path.
func (e *Executor) Query(ctx context.Context, query string, scan func(*sql.Rows) error) error {
	db, err := e.connect(ctx)
	if err != nil {
		return &QueryError{Op: "connect", Err: err}
	}
	defer e.release(db)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return &QueryError{Op: "query", Err: err}
	}
	defer rows.Close()

	if err := scan(rows); err != nil {
		return &QueryError{Op: "scan", Err: err}
	}
	if err := rows.Err(); err != nil {
		return &QueryError{Op: "query", Err: err}
	}
	return nil
}

func (e *Executor) connect(ctx context.Context) (*sql.DB, error) {
	delay := e.retryDelay
	if delay <= 0 {
		// go-retry rejects non-positive intervals.
		delay = time.Nanosecond
	}
	backoff := retry.WithMaxRetries(1, retry.NewConstant(delay))

	var (
		db      *sql.DB
		attempt int
	)
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		d, err := e.open(e.driver, e.dsn)
		if err == nil {
			if err = d.PingContext(ctx); err != nil {
				e.release(d)
			}
		}
		if err != nil {
			e.logger.Warn().Err(err).Int("attempt", attempt).Msg("database connection failed")
			return retry.RetryableError(errors.Wrapf(err, "connect attempt %d", attempt))
		}
		db = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// release closes db. There is nothing useful to do with a close error, so it
// is only logged.
func (e *Executor) release(db *sql.DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		e.logger.Debug().Err(err).Msg("closing database connection")
	}
}
