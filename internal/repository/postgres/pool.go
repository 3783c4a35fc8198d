// Package postgres contains PostgreSQL implementations of repository interfaces.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/serbe/rugo-sub000/internal/errs"
	"github.com/serbe/rugo-sub000/internal/repository"
)

// PgxPool is a minimal abstraction over a Postgres connection pool.
// It is implemented by *pgxpool.Pool and pgxmock.PgxPoolIface.
type PgxPool interface {
	// Exec executes a SQL command and returns the command tag.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	// Query executes a SELECT and returns a rows iterator.
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	// QueryRow executes a query expected to return at most one row.
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	// BeginTx starts a transaction on a connection held until commit or rollback.
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	// Close shuts down the pool and frees resources.
	Close()
}

// DB is the bounded pool every dispatched operation borrows one connection from.
type DB struct {
	Pool PgxPool
	// AcquireTimeout bounds the wait for a free connection. Zero waits for ctx.
	AcquireTimeout time.Duration
}

var _ repository.Runner = (*DB)(nil)

// New creates a pool of at most maxConns connections for the given DSN.
func New(ctx context.Context, dsn string, maxConns int32, acquireTimeout time.Duration) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = maxConns
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &DB{Pool: pool, AcquireTimeout: acquireTimeout}, nil
}

// Close closes the underlying pool.
func (db *DB) Close() { db.Pool.Close() }

// Run borrows one connection inside a transaction, runs fn on it and commits.
// Any error or panic rolls back. Errors are classified for the client.
func (db *DB) Run(ctx context.Context, fn func(q repository.Querier) error) (err error) {
	tx, err := db.begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			err = classify(err)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = classify(e)
		}
	}()
	return fn(tx)
}

func (db *DB) begin(ctx context.Context) (pgx.Tx, error) {
	actx, cancel := ctx, context.CancelFunc(func() {})
	if db.AcquireTimeout > 0 {
		actx, cancel = context.WithTimeout(ctx, db.AcquireTimeout)
	}
	defer cancel()

	tx, err := db.Pool.BeginTx(actx, pgx.TxOptions{})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %w", errs.ErrPoolExhausted, err)
		}
		return nil, classify(err)
	}
	return tx, nil
}

// classify wraps store failures in errs.ErrStore, keeping already classified errors.
func classify(err error) error {
	switch {
	case errors.Is(err, errs.ErrStore),
		errors.Is(err, errs.ErrPoolExhausted),
		errors.Is(err, errs.ErrBadRequest),
		errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("%w: %w", errs.ErrStore, errs.ErrNotFound)
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %w", errs.ErrStore, errs.ErrAlreadyExists)
	}
	return fmt.Errorf("%w: %w", errs.ErrStore, err)
}

// isUniqueViolation reports whether the error is a unique constraint violation.
func isUniqueViolation(err error) bool {
	var pg *pgconn.PgError
	return errors.As(err, &pg) && pg.Code == "23505"
}

// expectOne turns a zero-row command tag into errs.ErrNotFound.
func expectOne(tag pgconn.CommandTag, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() == 0 {
		return 0, errs.ErrNotFound
	}
	return tag.RowsAffected(), nil
}

// collect scans every row with fn and never returns a nil slice on success.
func collect[T any](ctx context.Context, q repository.Querier, sql string, fn pgx.RowToFunc[T], args ...any) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, fn)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
