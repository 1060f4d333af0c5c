package main

import (
	"context"
	"database/sql"
	"time"

	dErrors "kycgate/pkg/domain-errors"
	txcontext "kycgate/pkg/platform/tx"
)

const defaultCaseTxTimeout = 5 * time.Second

// casePostgresTx runs a unit of work in one database transaction. A
// transaction-scoped advisory lock on the entity key serializes writers,
// including the first writer of an entity that has no row to lock yet.
type casePostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newCasePostgresTx(db *sql.DB, timeout time.Duration) *casePostgresTx {
	return &casePostgresTx{db: db, timeout: timeout}
}

func (t *casePostgresTx) RunInTx(ctx context.Context, lockKey string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultCaseTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, lockKey); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to acquire case lock")
	}

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit transaction")
	}
	return nil
}
