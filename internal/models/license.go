package models

import "time"

// License entitles a user to the service for a bounded time and usage window.
// DeviceID is empty until the first successful validation binds a device.
type License struct {
	ID          string     `json:"id"`
	LicenseKey  string     `json:"license_key"`
	UserID      string     `json:"user_id"`
	Username    string     `json:"username"`
	Days        int        `json:"days"`
	MaxUses     int        `json:"max_uses"`
	UsedCount   int        `json:"used_count"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	IsActive    bool       `json:"is_active"`
	ActivatedAt *time.Time `json:"activated_at"`
	DeviceID    string     `json:"device_id,omitempty"`
	LastUse     *time.Time `json:"last_use"`
}

// Valid reports whether the license is active and not yet expired at t.
func (l License) Valid(t time.Time) bool {
	return l.IsActive && l.ExpiresAt.After(t)
}
