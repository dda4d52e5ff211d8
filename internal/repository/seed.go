package repository

import (
	"time"

	"github.com/ambitiondl/xueke-backend/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Demo credentials for the seeded accounts: admin/admin123, testuser/test123.
// Digests are computed once at startup so the store never sees a plaintext.
var (
	adminHash = mustHash("admin123")
	testHash  = mustHash("test123")
)

func mustHash(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}

// DefaultUsers is returned when the users collection has never been written.
func DefaultUsers() []models.User {
	now := time.Now().UTC()
	return []models.User{
		{
			ID:           "user_admin_001",
			Username:     "admin",
			Email:        "admin@example.com",
			PasswordHash: adminHash,
			UserType:     models.UserTypeAdmin,
			IsActive:     true,
			CreatedAt:    now,
			LastLogin:    &now,
			LastActivity: &now,
		},
		{
			ID:           "user_test_001",
			Username:     "testuser",
			Email:        "test@example.com",
			PasswordHash: testHash,
			UserType:     models.UserTypeUser,
			IsActive:     true,
			CreatedAt:    now,
		},
	}
}

// DefaultLicenses is returned when the licenses collection has never been written.
func DefaultLicenses() []models.License {
	now := time.Now().UTC()
	return []models.License{
		{
			ID:          "license_001",
			LicenseKey:  "XUKE-2024-ABCD-EFGH",
			UserID:      "user_admin_001",
			Username:    "admin",
			Days:        30,
			MaxUses:     10,
			UsedCount:   3,
			CreatedAt:   now,
			ExpiresAt:   now.AddDate(0, 0, 30),
			IsActive:    true,
			ActivatedAt: &now,
			DeviceID:    "device_001",
			LastUse:     &now,
		},
		{
			ID:          "license_002",
			LicenseKey:  "XUKE-2024-IJKL-MNOP",
			UserID:      "user_test_001",
			Username:    "testuser",
			Days:        7,
			MaxUses:     3,
			UsedCount:   1,
			CreatedAt:   now,
			ExpiresAt:   now.AddDate(0, 0, 7),
			IsActive:    true,
			ActivatedAt: &now,
			DeviceID:    "device_002",
			LastUse:     &now,
		},
	}
}
