package store

import (
	"context"

	"tasksync/internal/models"
)

const transactionColumns = "id, type, entityType, entityId, payload, status, retries, createdAt"

func scanTransaction(scanner interface{ Scan(dest ...any) error }) (*models.Transaction, error) {
	var t models.Transaction
	if err := scanner.Scan(&t.ID, &t.Type, &t.EntityType, &t.EntityID, &t.Payload,
		&t.Status, &t.Retries, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func queryTransactions(ctx context.Context, q dbtx, query string, args ...any) ([]models.Transaction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}

// PendingTransactions returns the eligible queue slice: pending rows
// below the retry ceiling, FIFO by creation time, capped at limit.
func (s *Store) PendingTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	return queryTransactions(ctx, s.db, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE status = 'pending' AND retries < ?
		ORDER BY createdAt ASC
		LIMIT ?
	`, models.MaxRetries, limit)
}

// StalledTransactions returns pending transactions that exhausted their
// retries and are no longer selected for processing.
func (s *Store) StalledTransactions(ctx context.Context) ([]models.Transaction, error) {
	return queryTransactions(ctx, s.db, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE status = 'pending' AND retries >= ?
		ORDER BY createdAt ASC
	`, models.MaxRetries)
}

// ListTransactions returns the whole queue, FIFO.
func (s *Store) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	return queryTransactions(ctx, s.db, `
		SELECT `+transactionColumns+` FROM transactions ORDER BY createdAt ASC
	`)
}

// GetTransaction returns one queue record by id, or nil.
func (s *Store) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	txns, err := queryTransactions(ctx, s.db, "SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, nil
	}
	return &txns[0], nil
}

// BumpTransactionRetries records one failed attempt.
func (s *Store) BumpTransactionRetries(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE transactions SET retries = retries + 1 WHERE id = ?", id)
	return storageErr("bump retries", err)
}

// RequeueTransaction resets a stalled transaction's retry count so it
// becomes eligible again.
func (s *Store) RequeueTransaction(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE transactions SET retries = 0, status = 'pending' WHERE id = ?", id)
	return storageErr("requeue transaction", err)
}

// DiscardTransaction drops a queue record without touching the entity
// row it referenced.
func (s *Store) DiscardTransaction(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	return storageErr("discard transaction", err)
}

// InsertTransaction appends a record to the durable queue.
func (tx *Tx) InsertTransaction(ctx context.Context, t models.Transaction) error {
	_, err := tx.q.ExecContext(ctx, `
		INSERT INTO transactions (id, type, entityType, entityId, payload, status, retries, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Type, t.EntityType, t.EntityID, t.Payload, t.Status, t.Retries, t.CreatedAt)
	return err
}

// MarkTransactionCommitted flips a queue record to committed.
func (tx *Tx) MarkTransactionCommitted(ctx context.Context, id string) error {
	_, err := tx.q.ExecContext(ctx, "UPDATE transactions SET status = 'committed' WHERE id = ?", id)
	return err
}

// DeleteTransaction removes a queue record.
func (tx *Tx) DeleteTransaction(ctx context.Context, id string) error {
	_, err := tx.q.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	return err
}
