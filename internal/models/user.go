package models

import "time"

// User is the stored account record. Handlers never return it directly;
// the dto summaries strip the password digest.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"password_hash"`
	UserType     string     `json:"user_type"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login"`
	LastActivity *time.Time `json:"last_activity"`
	DeviceID     string     `json:"device_id,omitempty"`
}

const (
	UserTypeAdmin = "admin"
	UserTypeUser  = "user"
)
