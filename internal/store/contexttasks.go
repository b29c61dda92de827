package store

import (
	"context"
	"database/sql"
	"time"

	"tasksync/internal/models"
)

const contextTaskColumns = "id, local_context_id, local_task_id, server_id, server_context_id, server_task_id, status, created_at, version"

func scanContextTask(scanner interface{ Scan(dest ...any) error }) (*models.ContextTask, error) {
	var ct models.ContextTask
	var serverID, serverContextID, serverTaskID sql.NullString
	if err := scanner.Scan(&ct.ID, &ct.LocalContextID, &ct.LocalTaskID, &serverID,
		&serverContextID, &serverTaskID, &ct.Status, &ct.CreatedAt, &ct.Version); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	ct.ServerID = serverID.String
	ct.ServerContextID = serverContextID.String
	ct.ServerTaskID = serverTaskID.String
	return &ct, nil
}

func listContextTasks(ctx context.Context, q dbtx, includeDeleted bool) ([]models.ContextTask, error) {
	query := "SELECT " + contextTaskColumns + " FROM contexts_tasks"
	if !includeDeleted {
		query += " WHERE status != 'deleted'"
	}
	query += " ORDER BY created_at DESC"

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assocs []models.ContextTask
	for rows.Next() {
		ct, err := scanContextTask(rows)
		if err != nil {
			return nil, err
		}
		assocs = append(assocs, *ct)
	}
	return assocs, rows.Err()
}

// ListContextTasks returns all user-visible associations, newest first.
func (s *Store) ListContextTasks(ctx context.Context) ([]models.ContextTask, error) {
	return listContextTasks(ctx, s.db, false)
}

func getContextTask(ctx context.Context, q dbtx, id string) (*models.ContextTask, error) {
	row := q.QueryRowContext(ctx, "SELECT "+contextTaskColumns+" FROM contexts_tasks WHERE id = ?", id)
	return scanContextTask(row)
}

// GetContextTask returns an association by local id, including
// soft-deleted rows. Returns nil when no row matches.
func (s *Store) GetContextTask(ctx context.Context, id string) (*models.ContextTask, error) {
	return getContextTask(ctx, s.db, id)
}

// GetContextTask is the in-unit variant of Store.GetContextTask.
func (tx *Tx) GetContextTask(ctx context.Context, id string) (*models.ContextTask, error) {
	return getContextTask(ctx, tx.q, id)
}

// ContextTasks returns every association row, soft-deleted included.
func (tx *Tx) ContextTasks(ctx context.Context) ([]models.ContextTask, error) {
	return listContextTasks(ctx, tx.q, true)
}

func (tx *Tx) contextTasksForTask(ctx context.Context, taskID string) ([]models.ContextTask, error) {
	rows, err := tx.q.QueryContext(ctx, "SELECT "+contextTaskColumns+" FROM contexts_tasks WHERE local_task_id = ?", taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assocs []models.ContextTask
	for rows.Next() {
		ct, err := scanContextTask(rows)
		if err != nil {
			return nil, err
		}
		assocs = append(assocs, *ct)
	}
	return assocs, rows.Err()
}

// CreateContextTaskWithTransaction inserts a pending association row and
// its create transaction as one atomic unit.
func (s *Store) CreateContextTaskWithTransaction(ctx context.Context, contextID, taskID string) (models.ContextTask, string, error) {
	now := time.Now().UnixMilli()
	assoc := models.ContextTask{
		ID:             NewID(ContextTaskIDPrefix),
		LocalContextID: contextID,
		LocalTaskID:    taskID,
		Status:         models.StatusPending,
		CreatedAt:      now,
		Version:        1,
	}

	payload, err := models.EncodePayload(models.CreateContextTaskPayload{
		LocalContextID: contextID,
		LocalTaskID:    taskID,
	})
	if err != nil {
		return models.ContextTask{}, "", err
	}
	txn := models.Transaction{
		ID:         NewID(TransactionIDPrefix),
		Type:       models.TxCreate,
		EntityType: models.TableContextTasks,
		EntityID:   assoc.ID,
		Payload:    payload,
		Status:     models.TxPending,
		CreatedAt:  now,
	}

	err = s.WithTx(ctx, func(tx *Tx) error {
		if err := tx.InsertContextTask(ctx, assoc); err != nil {
			return err
		}
		return tx.InsertTransaction(ctx, txn)
	})
	if err != nil {
		return models.ContextTask{}, "", err
	}
	return assoc, txn.ID, nil
}

// DeleteContextTaskWithTransaction soft-deletes the association and
// queues its delete transaction in one atomic unit.
func (s *Store) DeleteContextTaskWithTransaction(ctx context.Context, assoc models.ContextTask) (string, error) {
	payload, err := models.EncodePayload(models.DeletePayload{ServerID: assoc.ServerID})
	if err != nil {
		return "", err
	}
	txn := models.Transaction{
		ID:         NewID(TransactionIDPrefix),
		Type:       models.TxDelete,
		EntityType: models.TableContextTasks,
		EntityID:   assoc.ID,
		Payload:    payload,
		Status:     models.TxPending,
		CreatedAt:  time.Now().UnixMilli(),
	}

	err = s.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.q.ExecContext(ctx, "UPDATE contexts_tasks SET status = 'deleted' WHERE id = ?", assoc.ID); err != nil {
			return err
		}
		return tx.InsertTransaction(ctx, txn)
	})
	if err != nil {
		return "", err
	}
	return txn.ID, nil
}

// InsertContextTask inserts an association row.
func (tx *Tx) InsertContextTask(ctx context.Context, ct models.ContextTask) error {
	_, err := tx.q.ExecContext(ctx, `
		INSERT INTO contexts_tasks (id, local_context_id, local_task_id, server_id, server_context_id, server_task_id, status, created_at, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ct.ID, ct.LocalContextID, ct.LocalTaskID, nullIfEmpty(ct.ServerID),
		nullIfEmpty(ct.ServerContextID), nullIfEmpty(ct.ServerTaskID), ct.Status, ct.CreatedAt, ct.Version)
	return err
}

// InsertContextTaskIgnore inserts an association row, ignoring local id
// conflicts.
func (tx *Tx) InsertContextTaskIgnore(ctx context.Context, ct models.ContextTask) error {
	_, err := tx.q.ExecContext(ctx, `
		INSERT OR IGNORE INTO contexts_tasks (id, local_context_id, local_task_id, server_id, server_context_id, server_task_id, status, created_at, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ct.ID, ct.LocalContextID, ct.LocalTaskID, nullIfEmpty(ct.ServerID),
		nullIfEmpty(ct.ServerContextID), nullIfEmpty(ct.ServerTaskID), ct.Status, ct.CreatedAt, ct.Version)
	return err
}

// UpdateContextTaskFromRemote applies the remote association's resolved
// endpoints to the row matching serverID. Association versions track the
// mapped value verbatim, so no bump happens here.
func (tx *Tx) UpdateContextTaskFromRemote(ctx context.Context, serverID string, localContextID, localTaskID, serverContextID, serverTaskID string) error {
	_, err := tx.q.ExecContext(ctx, `
		UPDATE contexts_tasks
		SET local_context_id = ?, local_task_id = ?, server_context_id = ?, server_task_id = ?, status = 'synced'
		WHERE server_id = ?
	`, localContextID, localTaskID, serverContextID, serverTaskID, serverID)
	return err
}

// MarkContextTaskSynced records the server-assigned association id and
// the resolved server-side endpoint ids after a committed create.
func (tx *Tx) MarkContextTaskSynced(ctx context.Context, id, serverID, serverContextID, serverTaskID string) error {
	_, err := tx.q.ExecContext(ctx, `
		UPDATE contexts_tasks
		SET server_id = ?, server_context_id = ?, server_task_id = ?, status = 'synced', version = version + 1
		WHERE id = ?
	`, serverID, serverContextID, serverTaskID, id)
	return err
}

// DeleteContextTaskRow physically removes an association row.
func (tx *Tx) DeleteContextTaskRow(ctx context.Context, id string) error {
	_, err := tx.q.ExecContext(ctx, "DELETE FROM contexts_tasks WHERE id = ?", id)
	return err
}
