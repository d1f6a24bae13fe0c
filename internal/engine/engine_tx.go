package engine

import (
	"context"

	"github.com/pkg/errors"
)

// Exec runs statements against the database in one transaction. Any
// failure rolls back all of them.
func (e *Engine) Exec(ctx context.Context, stmts ...string) error {
	db, err := e.database()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	for i, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "statement %d", i+1)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit tx")
	}
	return nil
}
