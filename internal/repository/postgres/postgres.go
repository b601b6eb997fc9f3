// Package postgres implements the persistence layer on PostgreSQL via sqlx.
package postgres

import (
	"context"
	"fmt"

	"estateguard/pkg/errors"

	"github.com/jmoiron/sqlx"
)

// storageErr marks a failed database operation as a retryable storage
// failure while keeping the driver error in the chain.
func storageErr(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %v", message, errors.ErrStorageUnavailable, err)
}

// withTx runs fn inside a transaction, rolling back on error or panic.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return storageErr(err, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return storageErr(err, "failed to commit transaction")
	}
	return nil
}
