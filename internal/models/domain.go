package models

import (
	"fmt"
	"strings"
)

// EntityStatus defines the local lifecycle states of a synced entity row.
type EntityStatus string

const (
	StatusPending EntityStatus = "pending"
	StatusSynced  EntityStatus = "synced"
	StatusDeleted EntityStatus = "deleted"
)

// Priority levels for tasks. Lower is more urgent.
const (
	PriorityUrgent    = 1
	PriorityHigh      = 2
	PriorityImportant = 3
	PriorityLow       = 4

	DefaultPriority = PriorityLow
)

// Entity table names. These double as the entityType tag on transactions
// and as the key for cache invalidation.
const (
	TableProjects     = "projects"
	TableContexts     = "contexts"
	TableTasks        = "tasks"
	TableContextTasks = "contexts_tasks"
)

// DependencyOrder is the fixed processing order for sync operations.
// Tasks reference projects; associations reference both contexts and tasks,
// so the order is load-bearing for create dispatch and initial sync.
var DependencyOrder = []string{
	TableProjects,
	TableContexts,
	TableTasks,
	TableContextTasks,
}

// DependencyRank returns the position of a table in DependencyOrder,
// or len(DependencyOrder) for tables outside the fixed order.
func DependencyRank(table string) int {
	for i, name := range DependencyOrder {
		if name == table {
			return i
		}
	}
	return len(DependencyOrder)
}

var priorityNames = map[int]string{
	PriorityUrgent:    "urgent",
	PriorityHigh:      "high",
	PriorityImportant: "important",
	PriorityLow:       "low",
}

func IsValidPriority(value int) bool {
	return value >= PriorityUrgent && value <= PriorityLow
}

// PriorityName returns the display name for a priority level.
func PriorityName(value int) string {
	if name, ok := priorityNames[value]; ok {
		return name
	}
	return fmt.Sprintf("priority-%d", value)
}

// ParsePriority accepts either a numeric level or a level name.
func ParsePriority(raw string) (int, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return 0, fmt.Errorf("priority is required")
	}
	for level, name := range priorityNames {
		if value == name || value == fmt.Sprintf("%d", level) {
			return level, nil
		}
	}
	return 0, fmt.Errorf("invalid priority: %s", raw)
}

func IsValidEntityStatus(status EntityStatus) bool {
	switch status {
	case StatusPending, StatusSynced, StatusDeleted:
		return true
	}
	return false
}
