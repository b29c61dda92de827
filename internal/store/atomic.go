package store

import (
	"context"
	"fmt"
)

// Tx is one all-or-nothing unit against the store. All typed statement
// helpers hang off it; if the body of WithTx returns an error, none of
// its statements are visible afterward.
type Tx struct {
	q dbtx
}

// WithTx executes fn as a single atomic unit. Any error from fn or from
// commit rolls the unit back and surfaces as a *StorageError.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin", err)
	}

	if err := fn(&Tx{q: sqlTx}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return storageErr("rollback", fmt.Errorf("%v (rollback failed: %w)", err, rbErr))
		}
		return storageErr("atomic unit", err)
	}

	if err := sqlTx.Commit(); err != nil {
		return storageErr("commit", err)
	}
	return nil
}
