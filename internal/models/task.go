package models

import "time"

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// Task is one unit of requested document retrieval work.
// Progress is meaningful only while the task is processing or completed.
type Task struct {
	TaskID          string     `json:"task_id"`
	UserID          string     `json:"user_id"`
	Username        string     `json:"username"`
	URLs            []string   `json:"urls"`
	Email           string     `json:"email"`
	Notes           string     `json:"notes"`
	Status          TaskStatus `json:"status"`
	Progress        int        `json:"progress"`
	SubmittedBy     string     `json:"submitted_by"`
	CreatedAt       time.Time  `json:"created_at"`
	StartedAt       *time.Time `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	DownloadedFiles []string   `json:"downloaded_files"`
	DirectLinks     []string   `json:"direct_links"`
	ErrorMessage    *string    `json:"error_message"`
}
