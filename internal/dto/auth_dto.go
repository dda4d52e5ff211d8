package dto

import (
	"time"

	"github.com/ambitiondl/xueke-backend/internal/models"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	DeviceID string `json:"device_id"`
}

type LoginResponse struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message"`
	UserID      string   `json:"user_id"`
	AccessToken string   `json:"access_token,omitempty"`
	UserInfo    UserInfo `json:"user_info"`
}

// UserInfo is the session-less login payload: account basics plus a summary
// of the user's active license.
type UserInfo struct {
	UserID       string          `json:"user_id"`
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	UserType     string          `json:"user_type"`
	CreatedAt    time.Time       `json:"created_at"`
	LastLogin    *time.Time      `json:"last_login"`
	LicenseCount int             `json:"license_count"`
	LicenseValid bool            `json:"license_valid"`
	LicenseInfo  *models.License `json:"license_info"`
}

type LogoutRequest struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type AckResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
