package models

// Project is a locally persisted project row. ServerID is empty until the
// project's create transaction commits against the backend.
type Project struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Status    EntityStatus `json:"status"`
	ServerID  string       `json:"server_id,omitempty"`
	CreatedAt int64        `json:"created_at"`
	Version   int          `json:"version"`
}

// Context is a locally persisted context row (a GTD-style grouping such
// as "Work" or "Errands").
type Context struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Status    EntityStatus `json:"status"`
	ServerID  string       `json:"server_id,omitempty"`
	CreatedAt int64        `json:"created_at"`
	Version   int          `json:"version"`
}

// Task is a locally persisted task row. ProjectID is a local foreign key
// and may be empty.
type Task struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Priority  int          `json:"priority"`
	ProjectID string       `json:"project_id,omitempty"`
	Status    EntityStatus `json:"status"`
	ServerID  string       `json:"server_id,omitempty"`
	CreatedAt int64        `json:"created_at"`
	Version   int          `json:"version"`
}

// ContextTask associates a context with a task. The local columns always
// reference local rows; the server columns are resolved once both
// endpoints carry a server id.
type ContextTask struct {
	ID              string       `json:"id"`
	LocalContextID  string       `json:"local_context_id"`
	LocalTaskID     string       `json:"local_task_id"`
	ServerID        string       `json:"server_id,omitempty"`
	ServerContextID string       `json:"server_context_id,omitempty"`
	ServerTaskID    string       `json:"server_task_id,omitempty"`
	Status          EntityStatus `json:"status"`
	CreatedAt       int64        `json:"created_at"`
	Version         int          `json:"version"`
}

// TaskDetails is a task joined with its project name and the names of the
// contexts it is associated with.
type TaskDetails struct {
	Task
	ProjectName  string   `json:"project_name,omitempty"`
	ContextNames []string `json:"context_names,omitempty"`
}
