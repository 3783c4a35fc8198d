// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier runs statements on one acquired connection.
// It is implemented by pgx.Tx and pgxmock.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Runner scopes fn to one pooled connection, released on every exit path.
type Runner interface {
	Run(ctx context.Context, fn func(q Querier) error) error
}

// Entity is the capability set of one record kind.
type Entity[T any] interface {
	// Get loads a record. ID 0 yields the empty record.
	Get(ctx context.Context, q Querier, id int64) (T, error)
	// Insert stores a record and returns its new ID.
	Insert(ctx context.Context, q Querier, rec T) (int64, error)
	// Update rewrites a record and returns the affected row count (always 1 on success).
	Update(ctx context.Context, q Querier, rec T) (int64, error)
	// Delete removes a record with its children and returns the affected row count.
	Delete(ctx context.Context, q Querier, id int64) (int64, error)
}
