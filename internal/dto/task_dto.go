package dto

import (
	"time"

	"github.com/ambitiondl/xueke-backend/internal/models"
)

type CreateTaskRequest struct {
	UserID      string   `json:"user_id"`
	URLs        []string `json:"urls"`
	Email       string   `json:"email"`
	Notes       string   `json:"notes"`
	SubmittedBy string   `json:"submitted_by"`
}

type TaskResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Task    *models.Task `json:"task"`
}

type TaskStatusResponse struct {
	TaskID          string            `json:"task_id"`
	Status          models.TaskStatus `json:"status"`
	Progress        int               `json:"progress"`
	StartedAt       *time.Time        `json:"started_at"`
	CompletedAt     *time.Time        `json:"completed_at"`
	DownloadedCount int               `json:"downloaded_count"`
}

type TaskDownloadResponse struct {
	TaskID      string   `json:"task_id"`
	DirectLinks []string `json:"direct_links"`
	Files       []string `json:"files"`
	DownloadAll string   `json:"download_all"`
}

type CleanupResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	CleanedTasks   int    `json:"cleaned_tasks"`
	RemainingTasks int    `json:"remaining_tasks"`
}
