// Package migrate applies the embedded SQL migrations.
package migrate

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/serbe/rugo-sub000/migrations"
)

// Up runs all pending migrations.
func Up(ctx context.Context, dsn string) error {
	return run(dsn, func(db *sql.DB) error { return goose.UpContext(ctx, db, ".") })
}

// Down rolls back the latest migration.
func Down(ctx context.Context, dsn string) error {
	return run(dsn, func(db *sql.DB) error { return goose.DownContext(ctx, db, ".") })
}

// Status prints the state of every migration through goose's logger.
func Status(ctx context.Context, dsn string) error {
	return run(dsn, func(db *sql.DB) error { return goose.StatusContext(ctx, db, ".") })
}

func run(dsn string, fn func(db *sql.DB) error) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return fn(db)
}
