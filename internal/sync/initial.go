package sync

import (
	"context"
	"fmt"
	"log/slog"

	"tasksync/internal/store"
)

// Engine performs the bidirectional initial sync: it pulls the complete
// remote state, then merges it with the local tables inside a single
// storage transaction. Remote wins for matched rows, unsynced local rows
// survive, and a failure anywhere rolls the whole merge back.
type Engine struct {
	store  *store.Store
	remote Remote
	log    *slog.Logger
	tables []tableSync
}

func NewEngine(st *store.Store, remote Remote, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:  st,
		remote: remote,
		log:    logger.With("component", "initial-sync"),
		tables: registry(),
	}
}

// Run executes the initial sync. Any fetch or merge failure aborts the
// whole run and is reported as a *SyncAbortedError; the local database
// is left exactly as it was.
func (e *Engine) Run(ctx context.Context) error {
	snap := &snapshot{}
	for _, t := range e.tables {
		if err := t.fetch(ctx, e.remote, snap); err != nil {
			return &SyncAbortedError{Err: fmt.Errorf("fetch %s: %w", t.table, err)}
		}
	}
	e.log.Debug("remote state fetched",
		"projects", len(snap.projects),
		"contexts", len(snap.contexts),
		"tasks", len(snap.tasks),
		"associations", len(snap.associations))

	err := e.store.WithTx(ctx, func(tx *store.Tx) error {
		for _, t := range e.tables {
			if err := t.merge(ctx, tx, snap); err != nil {
				return fmt.Errorf("merge %s: %w", t.table, err)
			}
		}
		return nil
	})
	if err != nil {
		return &SyncAbortedError{Err: err}
	}

	e.log.Info("initial sync complete",
		"projects", len(snap.projects),
		"contexts", len(snap.contexts),
		"tasks", len(snap.tasks),
		"associations", len(snap.associations))
	return nil
}
