package store

import (
	"context"
	"database/sql"
	"time"

	"tasksync/internal/models"
)

const contextColumns = "id, name, status, server_id, created_at, version"

func scanContext(scanner interface{ Scan(dest ...any) error }) (*models.Context, error) {
	var c models.Context
	var serverID sql.NullString
	if err := scanner.Scan(&c.ID, &c.Name, &c.Status, &serverID, &c.CreatedAt, &c.Version); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	c.ServerID = serverID.String
	return &c, nil
}

func listContexts(ctx context.Context, q dbtx, includeDeleted bool) ([]models.Context, error) {
	query := "SELECT " + contextColumns + " FROM contexts"
	if !includeDeleted {
		query += " WHERE status != 'deleted'"
	}
	query += " ORDER BY created_at DESC"

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contexts []models.Context
	for rows.Next() {
		c, err := scanContext(rows)
		if err != nil {
			return nil, err
		}
		contexts = append(contexts, *c)
	}
	return contexts, rows.Err()
}

// ListContexts returns all user-visible contexts, newest first.
func (s *Store) ListContexts(ctx context.Context) ([]models.Context, error) {
	return listContexts(ctx, s.db, false)
}

func getContext(ctx context.Context, q dbtx, id string) (*models.Context, error) {
	row := q.QueryRowContext(ctx, "SELECT "+contextColumns+" FROM contexts WHERE id = ?", id)
	return scanContext(row)
}

// GetContext returns a context by local id, including soft-deleted rows.
// Returns nil when no row matches.
func (s *Store) GetContext(ctx context.Context, id string) (*models.Context, error) {
	return getContext(ctx, s.db, id)
}

// GetContext is the in-unit variant of Store.GetContext.
func (tx *Tx) GetContext(ctx context.Context, id string) (*models.Context, error) {
	return getContext(ctx, tx.q, id)
}

// Contexts returns every context row, soft-deleted included.
func (tx *Tx) Contexts(ctx context.Context) ([]models.Context, error) {
	return listContexts(ctx, tx.q, true)
}

// CreateContextWithTransaction inserts a pending context row and its
// create transaction as one atomic unit.
func (s *Store) CreateContextWithTransaction(ctx context.Context, name string) (models.Context, string, error) {
	now := time.Now().UnixMilli()
	c := models.Context{
		ID:        NewID(ContextIDPrefix),
		Name:      name,
		Status:    models.StatusPending,
		CreatedAt: now,
		Version:   1,
	}

	payload, err := models.EncodePayload(models.CreateContextPayload{Name: name})
	if err != nil {
		return models.Context{}, "", err
	}
	txn := models.Transaction{
		ID:         NewID(TransactionIDPrefix),
		Type:       models.TxCreate,
		EntityType: models.TableContexts,
		EntityID:   c.ID,
		Payload:    payload,
		Status:     models.TxPending,
		CreatedAt:  now,
	}

	err = s.WithTx(ctx, func(tx *Tx) error {
		if err := tx.InsertContext(ctx, c); err != nil {
			return err
		}
		return tx.InsertTransaction(ctx, txn)
	})
	if err != nil {
		return models.Context{}, "", err
	}
	return c, txn.ID, nil
}

// DeleteContextWithTransaction soft-deletes the context and queues its
// delete transaction in one atomic unit.
func (s *Store) DeleteContextWithTransaction(ctx context.Context, c models.Context) (string, error) {
	payload, err := models.EncodePayload(models.DeletePayload{ServerID: c.ServerID})
	if err != nil {
		return "", err
	}
	txn := models.Transaction{
		ID:         NewID(TransactionIDPrefix),
		Type:       models.TxDelete,
		EntityType: models.TableContexts,
		EntityID:   c.ID,
		Payload:    payload,
		Status:     models.TxPending,
		CreatedAt:  time.Now().UnixMilli(),
	}

	err = s.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.q.ExecContext(ctx, "UPDATE contexts SET status = 'deleted' WHERE id = ?", c.ID); err != nil {
			return err
		}
		return tx.InsertTransaction(ctx, txn)
	})
	if err != nil {
		return "", err
	}
	return txn.ID, nil
}

// InsertContext inserts a context row.
func (tx *Tx) InsertContext(ctx context.Context, c models.Context) error {
	_, err := tx.q.ExecContext(ctx, `
		INSERT INTO contexts (id, name, status, server_id, created_at, version)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Status, nullIfEmpty(c.ServerID), c.CreatedAt, c.Version)
	return err
}

// InsertContextIgnore inserts a context row, ignoring local id conflicts.
func (tx *Tx) InsertContextIgnore(ctx context.Context, c models.Context) error {
	_, err := tx.q.ExecContext(ctx, `
		INSERT OR IGNORE INTO contexts (id, name, status, server_id, created_at, version)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Status, nullIfEmpty(c.ServerID), c.CreatedAt, c.Version)
	return err
}

// UpdateContextFromRemote applies the remote copy's mutable fields to the
// row matching serverID.
func (tx *Tx) UpdateContextFromRemote(ctx context.Context, serverID, name string, bump bool) error {
	query := "UPDATE contexts SET name = ?, status = 'synced' WHERE server_id = ?"
	if bump {
		query = "UPDATE contexts SET name = ?, status = 'synced', version = version + 1 WHERE server_id = ?"
	}
	_, err := tx.q.ExecContext(ctx, query, name, serverID)
	return err
}

// MarkContextSynced records the server-assigned id after a committed create.
func (tx *Tx) MarkContextSynced(ctx context.Context, id, serverID string) error {
	_, err := tx.q.ExecContext(ctx, `
		UPDATE contexts SET server_id = ?, status = 'synced', version = version + 1 WHERE id = ?
	`, serverID, id)
	return err
}

// DeleteContextRow physically removes a context row.
func (tx *Tx) DeleteContextRow(ctx context.Context, id string) error {
	_, err := tx.q.ExecContext(ctx, "DELETE FROM contexts WHERE id = ?", id)
	return err
}
