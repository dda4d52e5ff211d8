package dto

import (
	"time"

	"github.com/ambitiondl/xueke-backend/internal/models"
)

type PingResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Version   string `json:"version"`
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"user_type"`
}

type CreateUserResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	UserID  string      `json:"user_id"`
	User    UserSummary `json:"user"`
}

// UserSummary is a user record with credentials stripped, as returned by the
// list endpoint.
type UserSummary struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	UserType     string     `json:"user_type"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login"`
	LastActivity *time.Time `json:"last_activity"`
	LicenseCount int        `json:"license_count"`
}

type UserDetail struct {
	UserSummary
	LicenseValid   bool            `json:"license_valid"`
	LicenseInfo    *models.License `json:"license_info"`
	TaskCount      int             `json:"task_count"`
	CompletedTasks int             `json:"completed_tasks"`
	PendingTasks   int             `json:"pending_tasks"`
}

type StatsResponse struct {
	TotalUsers      int    `json:"total_users"`
	ActiveUsers     int    `json:"active_users"`
	TotalTasks      int    `json:"total_tasks"`
	PendingTasks    int    `json:"pending_tasks"`
	ProcessingTasks int    `json:"processing_tasks"`
	CompletedTasks  int    `json:"completed_tasks"`
	FailedTasks     int    `json:"failed_tasks"`
	TotalLicenses   int    `json:"total_licenses"`
	ActiveLicenses  int    `json:"active_licenses"`
	ExpiredLicenses int    `json:"expired_licenses"`
	ServerTime      string `json:"server_time"`
	Uptime          int    `json:"uptime"`
	TasksLast24h    int    `json:"tasks_last_24h"`
}

type SettingsResponse struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	Settings map[string]any `json:"settings"`
}

type BackupResponse struct {
	Timestamp string            `json:"timestamp"`
	Version   string            `json:"version"`
	Users     []UserSummary     `json:"users"`
	Tasks     []models.Task     `json:"tasks"`
	Licenses  []models.License  `json:"licenses"`
	Settings  map[string]any    `json:"settings"`
	Logs      []models.LogEntry `json:"logs"`
	Summary   BackupSummary     `json:"summary"`
}

type BackupSummary struct {
	UserCount    int `json:"user_count"`
	TaskCount    int `json:"task_count"`
	LicenseCount int `json:"license_count"`
	LogCount     int `json:"log_count"`
}
