package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// OpenInMemory returns a migrated, single-connection SQLite database. Each call
// yields an isolated database, which makes it suitable for tests and demos.
func OpenInMemory(ctx context.Context) (*sqlx.DB, error) {
	dbConn, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, err
	}
	// every connection to :memory: is a separate database
	dbConn.SetMaxOpenConns(1)

	if _, err := dbConn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := Migrate(ctx, dbConn); err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return dbConn, nil
}
