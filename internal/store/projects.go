package store

import (
	"context"
	"database/sql"
	"time"

	"tasksync/internal/models"
)

const projectColumns = "id, name, status, server_id, created_at, version"

func scanProject(scanner interface{ Scan(dest ...any) error }) (*models.Project, error) {
	var p models.Project
	var serverID sql.NullString
	if err := scanner.Scan(&p.ID, &p.Name, &p.Status, &serverID, &p.CreatedAt, &p.Version); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	p.ServerID = serverID.String
	return &p, nil
}

func listProjects(ctx context.Context, q dbtx, includeDeleted bool) ([]models.Project, error) {
	query := "SELECT " + projectColumns + " FROM projects"
	if !includeDeleted {
		query += " WHERE status != 'deleted'"
	}
	query += " ORDER BY created_at DESC"

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// ListProjects returns all user-visible projects, newest first.
func (s *Store) ListProjects(ctx context.Context) ([]models.Project, error) {
	return listProjects(ctx, s.db, false)
}

func getProject(ctx context.Context, q dbtx, id string) (*models.Project, error) {
	row := q.QueryRowContext(ctx, "SELECT "+projectColumns+" FROM projects WHERE id = ?", id)
	return scanProject(row)
}

// GetProject returns a project by local id, including soft-deleted rows.
// Returns nil when no row matches.
func (s *Store) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return getProject(ctx, s.db, id)
}

// GetProject is the in-unit variant of Store.GetProject.
func (tx *Tx) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return getProject(ctx, tx.q, id)
}

// Projects returns every project row, soft-deleted included. Used by the
// sync engine, which needs the full local set.
func (tx *Tx) Projects(ctx context.Context) ([]models.Project, error) {
	return listProjects(ctx, tx.q, true)
}

// CreateProjectWithTransaction inserts a pending project row and its
// create transaction as one atomic unit. Returns the new project and the
// id of the queued transaction.
func (s *Store) CreateProjectWithTransaction(ctx context.Context, name string) (models.Project, string, error) {
	now := time.Now().UnixMilli()
	project := models.Project{
		ID:        NewID(ProjectIDPrefix),
		Name:      name,
		Status:    models.StatusPending,
		CreatedAt: now,
		Version:   1,
	}

	payload, err := models.EncodePayload(models.CreateProjectPayload{Name: name})
	if err != nil {
		return models.Project{}, "", err
	}
	txn := models.Transaction{
		ID:         NewID(TransactionIDPrefix),
		Type:       models.TxCreate,
		EntityType: models.TableProjects,
		EntityID:   project.ID,
		Payload:    payload,
		Status:     models.TxPending,
		CreatedAt:  now,
	}

	err = s.WithTx(ctx, func(tx *Tx) error {
		if err := tx.InsertProject(ctx, project); err != nil {
			return err
		}
		return tx.InsertTransaction(ctx, txn)
	})
	if err != nil {
		return models.Project{}, "", err
	}
	return project, txn.ID, nil
}

// DeleteProjectWithTransaction soft-deletes the project and queues its
// delete transaction in one atomic unit.
func (s *Store) DeleteProjectWithTransaction(ctx context.Context, project models.Project) (string, error) {
	payload, err := models.EncodePayload(models.DeletePayload{ServerID: project.ServerID})
	if err != nil {
		return "", err
	}
	txn := models.Transaction{
		ID:         NewID(TransactionIDPrefix),
		Type:       models.TxDelete,
		EntityType: models.TableProjects,
		EntityID:   project.ID,
		Payload:    payload,
		Status:     models.TxPending,
		CreatedAt:  time.Now().UnixMilli(),
	}

	err = s.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.q.ExecContext(ctx, "UPDATE projects SET status = 'deleted' WHERE id = ?", project.ID); err != nil {
			return err
		}
		return tx.InsertTransaction(ctx, txn)
	})
	if err != nil {
		return "", err
	}
	return txn.ID, nil
}

// InsertProject inserts a project row.
func (tx *Tx) InsertProject(ctx context.Context, p models.Project) error {
	_, err := tx.q.ExecContext(ctx, `
		INSERT INTO projects (id, name, status, server_id, created_at, version)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Status, nullIfEmpty(p.ServerID), p.CreatedAt, p.Version)
	return err
}

// InsertProjectIgnore inserts a project row, ignoring local id conflicts.
func (tx *Tx) InsertProjectIgnore(ctx context.Context, p models.Project) error {
	_, err := tx.q.ExecContext(ctx, `
		INSERT OR IGNORE INTO projects (id, name, status, server_id, created_at, version)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Status, nullIfEmpty(p.ServerID), p.CreatedAt, p.Version)
	return err
}

// UpdateProjectFromRemote applies the remote copy's mutable fields to the
// row matching serverID. The version bumps only when bump is set, keeping
// repeated syncs of unchanged data idempotent.
func (tx *Tx) UpdateProjectFromRemote(ctx context.Context, serverID, name string, bump bool) error {
	query := "UPDATE projects SET name = ?, status = 'synced' WHERE server_id = ?"
	if bump {
		query = "UPDATE projects SET name = ?, status = 'synced', version = version + 1 WHERE server_id = ?"
	}
	_, err := tx.q.ExecContext(ctx, query, name, serverID)
	return err
}

// MarkProjectSynced records the server-assigned id after a committed
// create, flipping the row to synced and bumping its version.
func (tx *Tx) MarkProjectSynced(ctx context.Context, id, serverID string) error {
	_, err := tx.q.ExecContext(ctx, `
		UPDATE projects SET server_id = ?, status = 'synced', version = version + 1 WHERE id = ?
	`, serverID, id)
	return err
}

// DeleteProjectRow physically removes a project row.
func (tx *Tx) DeleteProjectRow(ctx context.Context, id string) error {
	_, err := tx.q.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	return err
}
