package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/football-investment/practice-booking-system-sub013/repositories"
)

// TxRunner runs a function inside a storage transaction. The SQL-backed
// implementation hands fn the open *sql.Tx as its executor, so every
// repository call made through it joins the same transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error
}

type sqlTxRunner struct {
	db *sql.DB
}

func NewTxRunner(db *sql.DB) TxRunner {
	return sqlTxRunner{db: db}
}

func (r sqlTxRunner) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
