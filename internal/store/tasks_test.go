package store

import (
	"context"
	"testing"

	"tasksync/internal/models"
)

func TestCreateTaskWithContextsIsOneUnit(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	home, _, err := st.CreateContextWithTransaction(ctx, "home")
	if err != nil {
		t.Fatalf("create context: %v", err)
	}
	errands, _, err := st.CreateContextWithTransaction(ctx, "errands")
	if err != nil {
		t.Fatalf("create context: %v", err)
	}

	task, txID, err := st.CreateTaskWithTransaction(ctx, "Buy milk", models.PriorityHigh, "", []string{home.ID, errands.ID})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if txID == "" {
		t.Fatal("expected transaction id")
	}

	assocs, err := st.ListContextTasks(ctx)
	if err != nil {
		t.Fatalf("list associations: %v", err)
	}
	if len(assocs) != 2 {
		t.Fatalf("expected 2 associations, got %d", len(assocs))
	}
	for _, assoc := range assocs {
		if assoc.LocalTaskID != task.ID {
			t.Fatalf("association does not reference task: %+v", assoc)
		}
	}

	// Two context creates, one task create, two association creates.
	txns, err := st.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txns) != 5 {
		t.Fatalf("expected 5 queued transactions, got %d", len(txns))
	}
}

func TestListTasksOrdersByPriority(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	if _, _, err := st.CreateTaskWithTransaction(ctx, "Low", models.PriorityLow, "", nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := st.CreateTaskWithTransaction(ctx, "Urgent", models.PriorityUrgent, "", nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := st.CreateTaskWithTransaction(ctx, "Medium", models.PriorityImportant, "", nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	tasks, err := st.ListTasks(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	if tasks[0].Name != "Urgent" || tasks[1].Name != "Medium" || tasks[2].Name != "Low" {
		t.Fatalf("unexpected order: %s, %s, %s", tasks[0].Name, tasks[1].Name, tasks[2].Name)
	}
}

func TestUpdateTaskPriorityIsOptimistic(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	task, _, err := st.CreateTaskWithTransaction(ctx, "Buy milk", models.PriorityLow, "", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	txID, err := st.UpdateTaskPriorityWithTransaction(ctx, task.ID, models.PriorityUrgent)
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := st.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Priority != models.PriorityUrgent {
		t.Fatalf("expected priority applied locally, got %d", got.Priority)
	}
	// Version moves only on server confirmation.
	if got.Version != 1 {
		t.Fatalf("expected version 1, got %d", got.Version)
	}

	txn, err := st.GetTransaction(ctx, txID)
	if err != nil {
		t.Fatalf("get transaction: %v", err)
	}
	if txn == nil || txn.Type != models.TxUpdate {
		t.Fatalf("expected update transaction, got %+v", txn)
	}
}

func TestDeleteTaskSoftDeletesAssociations(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	home, _, err := st.CreateContextWithTransaction(ctx, "home")
	if err != nil {
		t.Fatalf("create context: %v", err)
	}
	task, _, err := st.CreateTaskWithTransaction(ctx, "Buy milk", models.DefaultPriority, "", []string{home.ID})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if _, err := st.DeleteTaskWithTransaction(ctx, task); err != nil {
		t.Fatalf("delete: %v", err)
	}

	tasks, err := st.ListTasks(ctx)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected task hidden, got %d", len(tasks))
	}

	assocs, err := st.ListContextTasks(ctx)
	if err != nil {
		t.Fatalf("list associations: %v", err)
	}
	if len(assocs) != 0 {
		t.Fatalf("expected associations hidden, got %d", len(assocs))
	}
}

func TestListTasksByContext(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	home, _, err := st.CreateContextWithTransaction(ctx, "home")
	if err != nil {
		t.Fatalf("create context: %v", err)
	}
	work, _, err := st.CreateContextWithTransaction(ctx, "work")
	if err != nil {
		t.Fatalf("create context: %v", err)
	}
	if _, _, err := st.CreateTaskWithTransaction(ctx, "Buy milk", models.DefaultPriority, "", []string{home.ID}); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, _, err := st.CreateTaskWithTransaction(ctx, "File report", models.DefaultPriority, "", []string{work.ID}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	tasks, err := st.ListTasksByContext(ctx, home.ID)
	if err != nil {
		t.Fatalf("list by context: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Name != "Buy milk" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
}

func TestListTasksWithDetails(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	project, _, err := st.CreateProjectWithTransaction(ctx, "Groceries")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	home, _, err := st.CreateContextWithTransaction(ctx, "home")
	if err != nil {
		t.Fatalf("create context: %v", err)
	}
	if _, _, err := st.CreateTaskWithTransaction(ctx, "Buy milk", models.DefaultPriority, project.ID, []string{home.ID}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	details, err := st.ListTasksWithDetails(ctx)
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if len(details) != 1 {
		t.Fatalf("expected 1 task, got %d", len(details))
	}
	if details[0].ProjectName != "Groceries" {
		t.Fatalf("expected project name, got %q", details[0].ProjectName)
	}
	if len(details[0].ContextNames) != 1 || details[0].ContextNames[0] != "home" {
		t.Fatalf("expected context names, got %+v", details[0].ContextNames)
	}
}
