package store

import (
	"context"
	"fmt"
	"testing"

	"tasksync/internal/models"
)

// queueTransaction inserts a queue record directly, with an explicit
// creation time so ordering tests are deterministic.
func queueTransaction(t *testing.T, st *Store, id string, txType models.TxType, entityType, entityID string, createdAt int64) {
	t.Helper()
	ctx := context.Background()
	err := st.WithTx(ctx, func(tx *Tx) error {
		return tx.InsertTransaction(ctx, models.Transaction{
			ID:         id,
			Type:       txType,
			EntityType: entityType,
			EntityID:   entityID,
			Payload:    "{}",
			Status:     models.TxPending,
			CreatedAt:  createdAt,
		})
	})
	if err != nil {
		t.Fatalf("queue transaction %s: %v", id, err)
	}
}

func TestPendingTransactionsFIFOAndLimit(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		queueTransaction(t, st, fmt.Sprintf("txn_%d", i), models.TxDelete,
			models.TableTasks, fmt.Sprintf("task_%d", i), int64(1000+i))
	}

	txns, err := st.PendingTransactions(ctx, 3)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(txns) != 3 {
		t.Fatalf("expected 3, got %d", len(txns))
	}
	for i, txn := range txns {
		if txn.ID != fmt.Sprintf("txn_%d", i) {
			t.Fatalf("expected FIFO order, position %d got %s", i, txn.ID)
		}
	}
}

func TestRetryCeilingExcludesFromPending(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	queueTransaction(t, st, "txn_a", models.TxDelete, models.TableTasks, "task_a", 1000)

	for i := 0; i < models.MaxRetries; i++ {
		if err := st.BumpTransactionRetries(ctx, "txn_a"); err != nil {
			t.Fatalf("bump: %v", err)
		}
	}

	pending, err := st.PendingTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected stalled transaction excluded, got %d", len(pending))
	}

	stalled, err := st.StalledTransactions(ctx)
	if err != nil {
		t.Fatalf("stalled: %v", err)
	}
	if len(stalled) != 1 || !stalled[0].Stalled() {
		t.Fatalf("expected one stalled transaction, got %+v", stalled)
	}
}

func TestRequeueResetsRetries(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	queueTransaction(t, st, "txn_a", models.TxDelete, models.TableTasks, "task_a", 1000)
	for i := 0; i < models.MaxRetries; i++ {
		if err := st.BumpTransactionRetries(ctx, "txn_a"); err != nil {
			t.Fatalf("bump: %v", err)
		}
	}

	if err := st.RequeueTransaction(ctx, "txn_a"); err != nil {
		t.Fatalf("requeue: %v", err)
	}

	pending, err := st.PendingTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].Retries != 0 {
		t.Fatalf("expected requeued transaction eligible, got %+v", pending)
	}
}

func TestDiscardRemovesRecord(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	queueTransaction(t, st, "txn_a", models.TxDelete, models.TableTasks, "task_a", 1000)
	if err := st.DiscardTransaction(ctx, "txn_a"); err != nil {
		t.Fatalf("discard: %v", err)
	}

	txn, err := st.GetTransaction(ctx, "txn_a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if txn != nil {
		t.Fatalf("expected record gone, got %+v", txn)
	}
}

func TestCommittedExcludedFromPending(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	queueTransaction(t, st, "txn_a", models.TxDelete, models.TableTasks, "task_a", 1000)
	err := st.WithTx(ctx, func(tx *Tx) error {
		return tx.MarkTransactionCommitted(ctx, "txn_a")
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	pending, err := st.PendingTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected committed excluded, got %+v", pending)
	}

	all, err := st.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 || all[0].Status != models.TxCommitted {
		t.Fatalf("expected committed record retained, got %+v", all)
	}
}
