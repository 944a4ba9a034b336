// Package api defines the wire types shared by the strata HTTP server and
// client: the response envelope and the request/response bodies for every
// endpoint.
package api

import (
	"github.com/felixgeelhaar/strata/internal/plan"
)

// Envelope wraps every HTTP response body.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody carries a failed operation's code and message across the wire.
type ErrorBody struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// CreatePlanRequest is the body of POST /api/plans.
type CreatePlanRequest struct {
	Goal  string `json:"goal"`
	Notes string `json:"notes,omitempty"`
}

// CreatePlanResponse is the result of plan creation.
type CreatePlanResponse struct {
	ID int64 `json:"id"`
}

// ListPlansResponse is the result of GET /api/plans.
type ListPlansResponse struct {
	Plans []plan.PlanSummary `json:"plans"`
}

// AddTaskRequest is the body of POST /api/plans/{id}/tasks.
type AddTaskRequest struct {
	ParentPath  string `json:"parent_path,omitempty"`
	Description string `json:"description"`
	Level       string `json:"level"`
	Notes       string `json:"notes,omitempty"`
}

// AddTaskResponse reports where the new task landed.
type AddTaskResponse struct {
	Path string `json:"path"`
}

// CompleteTaskRequest is the body of POST /api/plans/{id}/tasks/complete.
type CompleteTaskRequest struct {
	Path    string `json:"path"`
	Lease   string `json:"lease,omitempty"`
	Summary string `json:"summary,omitempty"`
	Force   bool   `json:"force,omitempty"`
}

// TaskPathRequest addresses one task, used by uncomplete and remove.
type TaskPathRequest struct {
	Path string `json:"path"`
}

// RemoveTaskResponse returns the removed subtree.
type RemoveTaskResponse struct {
	Removed *plan.Task `json:"removed"`
}

// ChangeLevelRequest is the body of POST /api/plans/{id}/tasks/level.
type ChangeLevelRequest struct {
	Path  string `json:"path"`
	Level string `json:"level"`
}

// NotesResponse is the result of GET /api/plans/{id}/tasks/notes.
type NotesResponse struct {
	Path  string `json:"path"`
	Notes string `json:"notes"`
}

// SetNotesRequest is the body of PUT /api/plans/{id}/tasks/notes.
type SetNotesRequest struct {
	Path  string `json:"path"`
	Notes string `json:"notes"`
}

// MoveRequest is the body of POST /api/plans/{id}/move.
type MoveRequest struct {
	Path string `json:"path"`
}

// LeaseRequest is the body of POST /api/plans/{id}/lease.
type LeaseRequest struct {
	Path string `json:"path"`
}

// LeaseResponse carries a freshly issued completion lease.
type LeaseResponse struct {
	Token string `json:"token"`
	Path  string `json:"path"`
}

// GuideResponse is the result of GET /api/guide.
type GuideResponse struct {
	Guide string `json:"guide"`
}
