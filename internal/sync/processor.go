package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"tasksync/internal/models"
	"tasksync/internal/store"
)

// DefaultBatchSize caps how many transactions one processing pass drains.
const DefaultBatchSize = 50

// Processor drains the pending-transaction queue against the backend.
// Failures are isolated per transaction: a failed remote call increments
// the record's retry count and the pass moves on.
type Processor struct {
	store     *store.Store
	handlers  map[string]entityHandler
	sink      Sink
	log       *slog.Logger
	batchSize int

	mu sync.Mutex // serializes passes; an overlapping call is a no-op
}

// NewProcessor constructs a Processor. A nil sink disables invalidation
// notifications; a nil logger falls back to slog.Default().
func NewProcessor(st *store.Store, remote Remote, sink Sink, logger *slog.Logger) *Processor {
	if sink == nil {
		sink = NoopSink{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		store:     st,
		handlers:  newHandlers(st, remote),
		sink:      sink,
		log:       logger.With("component", "processor"),
		batchSize: DefaultBatchSize,
	}
}

// SetBatchSize overrides how many transactions one pass may drain.
// Values below one are ignored.
func (p *Processor) SetBatchSize(n int) {
	if n > 0 {
		p.batchSize = n
	}
}

// ProcessPending runs one processing pass. If a pass is already in
// flight the call returns immediately without touching the queue, so
// overlapping triggers (connectivity event plus manual run) cannot
// double-dispatch a transaction.
func (p *Processor) ProcessPending(ctx context.Context) error {
	if !p.mu.TryLock() {
		p.log.Debug("processing pass already in flight, skipping")
		return nil
	}
	defer p.mu.Unlock()

	txns, err := p.store.PendingTransactions(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("select pending transactions: %w", err)
	}
	if len(txns) == 0 {
		return nil
	}

	p.log.Debug("processing pass", "transactions", len(txns))

	for _, txn := range orderForDispatch(txns) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.process(ctx, txn); err != nil {
			p.log.Warn("transaction failed",
				"id", txn.ID, "type", txn.Type, "entity", txn.EntityType, "error", err)
			if bumpErr := p.store.BumpTransactionRetries(ctx, txn.ID); bumpErr != nil {
				return fmt.Errorf("record retry for %s: %w", txn.ID, bumpErr)
			}
		}
		p.sink.Invalidate(txn.EntityType)
	}

	return nil
}

// orderForDispatch front-loads create transactions in dependency order
// (projects, contexts, tasks, associations) so an association is never
// dispatched before its parents had a chance to acquire server ids in
// the same pass. Everything else follows in original FIFO order.
func orderForDispatch(txns []models.Transaction) []models.Transaction {
	creates := make([]models.Transaction, 0, len(txns))
	rest := make([]models.Transaction, 0, len(txns))
	for _, txn := range txns {
		if txn.Type == models.TxCreate {
			creates = append(creates, txn)
		} else {
			rest = append(rest, txn)
		}
	}

	// Stable sort keeps FIFO order within a table.
	sort.SliceStable(creates, func(i, j int) bool {
		return models.DependencyRank(creates[i].EntityType) < models.DependencyRank(creates[j].EntityType)
	})

	return append(creates, rest...)
}

func (p *Processor) process(ctx context.Context, txn models.Transaction) error {
	handler, ok := p.handlers[txn.EntityType]
	if !ok {
		return fmt.Errorf("no handler for entity type %q", txn.EntityType)
	}

	switch txn.Type {
	case models.TxCreate:
		serverID, err := handler.Create(ctx, txn)
		if err != nil {
			return err
		}
		err = p.store.WithTx(ctx, func(tx *store.Tx) error {
			if err := handler.CommitCreate(ctx, tx, txn.EntityID, serverID); err != nil {
				return err
			}
			return tx.MarkTransactionCommitted(ctx, txn.ID)
		})
		if err != nil {
			return err
		}
		p.log.Info("synced", "entity", txn.EntityType, "id", txn.EntityID, "server_id", serverID)
		return nil

	case models.TxUpdate:
		if err := handler.Update(ctx, txn); err != nil {
			return err
		}
		return p.store.WithTx(ctx, func(tx *store.Tx) error {
			if err := handler.CommitUpdate(ctx, tx, txn.EntityID); err != nil {
				return err
			}
			return tx.MarkTransactionCommitted(ctx, txn.ID)
		})

	case models.TxDelete:
		payload, err := decodeAs[models.DeletePayload](txn)
		if err != nil {
			return err
		}
		// A row that never synced has no server copy to delete.
		if payload.ServerID != "" {
			if err := handler.Delete(ctx, payload.ServerID); err != nil {
				return err
			}
		}
		return p.store.WithTx(ctx, func(tx *store.Tx) error {
			if err := tx.DeleteTransaction(ctx, txn.ID); err != nil {
				return err
			}
			return handler.PurgeRow(ctx, tx, txn.EntityID)
		})

	default:
		return fmt.Errorf("unknown transaction type %q", txn.Type)
	}
}
