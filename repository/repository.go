// Package repository is the SQL-backed credential store: users and their
// list items. Queries are written with '?' placeholders and rebound for the
// connection's driver, so the same code serves SQLite and Postgres.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"liist/common"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// withTx runs fn inside a transaction. The transaction is rolled back when fn
// returns an error, so callers never observe partial writes.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return common.StoreError("begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return common.StoreError("commit transaction", err)
	}
	return nil
}

// isUniqueViolation recognises unique-constraint failures from the drivers
// this service runs on.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// storeErr maps a driver error onto the common taxonomy.
func storeErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, common.ErrNotFound)
	}
	return common.StoreError(op, err)
}
