package api

import "time"

// Remote entity shapes as the backend returns them. The backend assigns
// globally unique, immutable ids at creation and never reuses them.

type RemoteProject struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type RemoteContext struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type RemoteTask struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Priority  int       `json:"priority"`
	ProjectID string    `json:"projectId,omitempty"` // server project id
	CreatedAt time.Time `json:"createdAt"`
}

// RemoteAssociation links a context and a task by their server ids.
type RemoteAssociation struct {
	ID        string    `json:"id"`
	ContextID string    `json:"contextId"`
	TaskID    string    `json:"taskId"`
	CreatedAt time.Time `json:"createdAt"`
}

type ProjectCreateRequest struct {
	Name string `json:"name"`
}

type ContextCreateRequest struct {
	Name string `json:"name"`
}

type TaskCreateRequest struct {
	Name      string `json:"name"`
	Priority  int    `json:"priority"`
	ProjectID string `json:"projectId,omitempty"` // server project id
}

type TaskUpdateRequest struct {
	Priority *int `json:"priority,omitempty"`
}

type AssociationCreateRequest struct {
	ContextID string `json:"contextId"`
	TaskID    string `json:"taskId"`
}

// ErrorResponse is the backend's error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
