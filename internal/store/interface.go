package store

import (
	"context"

	"tasksync/internal/models"
)

// TransactionQueue abstracts selection and bookkeeping on the durable
// mutation queue.
type TransactionQueue interface {
	PendingTransactions(ctx context.Context, limit int) ([]models.Transaction, error)
	StalledTransactions(ctx context.Context) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	BumpTransactionRetries(ctx context.Context, id string) error
	RequeueTransaction(ctx context.Context, id string) error
	DiscardTransaction(ctx context.Context, id string) error
}

// EntityReader abstracts the one-shot reads the sync handlers need to
// resolve server ids at dispatch time.
type EntityReader interface {
	GetProject(ctx context.Context, id string) (*models.Project, error)
	GetContext(ctx context.Context, id string) (*models.Context, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	GetContextTask(ctx context.Context, id string) (*models.ContextTask, error)
}

var (
	_ TransactionQueue = (*Store)(nil)
	_ EntityReader     = (*Store)(nil)
)
