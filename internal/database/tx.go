package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TxRunner runs a function inside a database transaction. The transaction
// commits when fn returns nil and rolls back otherwise. Services depend on
// this interface so transactional flows can be tested without a database.
type TxRunner interface {
	RunTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

// SQLTxRunner implements TxRunner on a sqlx connection pool.
type SQLTxRunner struct {
	db *sqlx.DB
}

func NewTxRunner(db *sqlx.DB) *SQLTxRunner {
	return &SQLTxRunner{db: db}
}

func (r *SQLTxRunner) RunTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
