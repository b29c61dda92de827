package store

import (
	"fmt"

	"github.com/google/uuid"
)

// Local id prefixes, one per entity kind plus the transaction queue.
// Prefixed UUIDs keep local ids disjoint from server-assigned ids.
const (
	ProjectIDPrefix     = "proj"
	ContextIDPrefix     = "ctx"
	TaskIDPrefix        = "task"
	ContextTaskIDPrefix = "ctk"
	TransactionIDPrefix = "txn"
)

// NewID returns a new local identifier with the given prefix.
func NewID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString())
}
