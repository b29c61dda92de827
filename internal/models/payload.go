package models

import (
	"encoding/json"
	"fmt"
)

// Transaction payloads form a tagged union keyed by (entityType, type).
// Each variant is a concrete struct decoded at dispatch time, so handlers
// never reach into untyped JSON.

type CreateProjectPayload struct {
	Name string `json:"name"`
}

type CreateContextPayload struct {
	Name string `json:"name"`
}

type CreateTaskPayload struct {
	Name      string `json:"name"`
	Priority  int    `json:"priority"`
	ProjectID string `json:"projectId,omitempty"` // local project id
}

type CreateContextTaskPayload struct {
	LocalContextID string `json:"localContextId"`
	LocalTaskID    string `json:"localTaskId"`
}

type UpdateTaskPriorityPayload struct {
	Priority int `json:"priority"`
}

// DeletePayload carries the server id captured at delete time. An empty
// ServerID means the row never synced and no remote call is needed.
type DeletePayload struct {
	ServerID string `json:"serverId,omitempty"`
}

// EncodePayload serializes a payload variant for storage in the
// transactions table.
func EncodePayload(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	return string(raw), nil
}

// DecodePayload decodes the payload of a transaction into the variant
// matching its (entityType, type) tag.
func DecodePayload(t Transaction) (any, error) {
	decode := func(v any) (any, error) {
		if err := json.Unmarshal([]byte(t.Payload), v); err != nil {
			return nil, fmt.Errorf("decode %s %s payload: %w", t.EntityType, t.Type, err)
		}
		return v, nil
	}

	switch t.Type {
	case TxDelete:
		return decode(&DeletePayload{})
	case TxCreate:
		switch t.EntityType {
		case TableProjects:
			return decode(&CreateProjectPayload{})
		case TableContexts:
			return decode(&CreateContextPayload{})
		case TableTasks:
			return decode(&CreateTaskPayload{})
		case TableContextTasks:
			return decode(&CreateContextTaskPayload{})
		}
	case TxUpdate:
		if t.EntityType == TableTasks {
			return decode(&UpdateTaskPriorityPayload{})
		}
	}
	return nil, fmt.Errorf("no payload variant for %s %s", t.EntityType, t.Type)
}
