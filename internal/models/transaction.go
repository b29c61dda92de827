package models

// TxType is the kind of mutation a queued transaction records.
type TxType string

const (
	TxCreate TxType = "create"
	TxUpdate TxType = "update"
	TxDelete TxType = "delete"
)

// TxStatus is the lifecycle state of a queued transaction.
type TxStatus string

const (
	TxPending   TxStatus = "pending"
	TxCommitted TxStatus = "committed"
	TxFailed    TxStatus = "failed"
)

// MaxRetries is the retry ceiling. A pending transaction whose retry
// count reaches this value is no longer selected for processing and is
// surfaced as stalled instead.
const MaxRetries = 3

// Transaction is a durable record of one pending local mutation awaiting
// remote reconciliation. Not to be confused with a store-level atomic
// unit.
type Transaction struct {
	ID         string   `json:"id"`
	Type       TxType   `json:"type"`
	EntityType string   `json:"entityType"`
	EntityID   string   `json:"entityId"`
	Payload    string   `json:"payload"`
	Status     TxStatus `json:"status"`
	Retries    int      `json:"retries"`
	CreatedAt  int64    `json:"createdAt"`
}

// Stalled reports whether the transaction has exhausted its retries.
func (t Transaction) Stalled() bool {
	return t.Status == TxPending && t.Retries >= MaxRetries
}
