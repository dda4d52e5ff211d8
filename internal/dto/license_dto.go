package dto

import "time"

type ValidateLicenseRequest struct {
	LicenseKey string `json:"license_key"`
	DeviceID   string `json:"device_id"`
	UserID     string `json:"user_id"`
}

type ValidateLicenseResponse struct {
	Valid       bool         `json:"valid"`
	Message     string       `json:"message,omitempty"`
	Error       string       `json:"error,omitempty"`
	LicenseInfo *LicenseInfo `json:"license_info,omitempty"`
}

// LicenseInfo is the post-validation license summary, including the
// remaining-days figure computed with ceiling semantics.
type LicenseInfo struct {
	LicenseKey  string     `json:"license_key"`
	UserID      string     `json:"user_id"`
	Username    string     `json:"username"`
	Days        int        `json:"days"`
	MaxUses     int        `json:"max_uses"`
	UsedCount   int        `json:"used_count"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	DaysLeft    int        `json:"days_left"`
	ActivatedAt *time.Time `json:"activated_at"`
	DeviceID    string     `json:"device_id,omitempty"`
}
