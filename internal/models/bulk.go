package models

import "time"

// Bulk action kinds executed by the worker.
const (
	BulkActionRoleGrant = "role_grant"
	BulkActionKick      = "kick"
)

// Bulk job statuses stored alongside results.
const (
	JobStatusQueued    = "queued"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// BulkResult is the per-job outcome tally written by the worker and read back
// by the jobs endpoint. ErrorNotes carries one short line per failed member.
type BulkResult struct {
	JobID       string    `json:"job_id"`
	Action      string    `json:"action"`
	Status      string    `json:"status"`
	Processed   int       `json:"processed"`
	AlreadyHad  int       `json:"already_had"`
	Errors      int       `json:"errors"`
	ErrorNotes  []string  `json:"error_notes,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}
