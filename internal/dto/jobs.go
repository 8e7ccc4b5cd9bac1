package dto

import "time"

// Solve job states.
const (
	JobStatusPending   = "PENDING"
	JobStatusRunning   = "RUNNING"
	JobStatusCompleted = "COMPLETED"
	JobStatusFailed    = "FAILED"
)

// SolveJobStatus reports on an asynchronous generation job.
type SolveJobStatus struct {
	JobID       string                     `json:"jobId"`
	Status      string                     `json:"status"`
	Error       string                     `json:"error,omitempty"`
	Result      *GenerateTimetableResponse `json:"result,omitempty"`
	EnqueuedAt  time.Time                  `json:"enqueuedAt"`
	CompletedAt *time.Time                 `json:"completedAt,omitempty"`
}
