package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ambitiondl/xueke-backend/internal/dto"
	"github.com/ambitiondl/xueke-backend/internal/models"
	"github.com/ambitiondl/xueke-backend/internal/repository"
)

var (
	ErrLicenseNotFound       = errors.New("license key not found")
	ErrLicenseInactive       = errors.New("license is inactive")
	ErrLicenseExpired        = errors.New("license has expired")
	ErrLicenseQuotaExceeded  = errors.New("license usage limit reached")
	ErrLicenseDeviceMismatch = errors.New("license is bound to another device")
	ErrLicenseUserMismatch   = errors.New("license belongs to another user")
)

type LicenseService struct {
	repo   *repository.Repository
	events *EventLogService
}

func NewLicenseService(repo *repository.Repository, events *EventLogService) *LicenseService {
	return &LicenseService{repo: repo, events: events}
}

// Validate checks licenseKey against expiry, usage cap, device binding and
// user binding, in that order. On success it increments the usage counter,
// stamps last_use, and binds the device on first use. Only successful
// validations are logged.
func (s *LicenseService) Validate(ctx context.Context, licenseKey, deviceID, userID string) (*dto.LicenseInfo, error) {
	now := time.Now().UTC()
	var info dto.LicenseInfo

	_, err := s.repo.UpdateLicenses(ctx, func(licenses []models.License) ([]models.License, error) {
		idx := -1
		for i := range licenses {
			if licenses[i].LicenseKey == licenseKey {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, ErrLicenseNotFound
		}
		lic := &licenses[idx]

		if !lic.IsActive {
			return nil, ErrLicenseInactive
		}
		if !lic.ExpiresAt.After(now) {
			return nil, ErrLicenseExpired
		}
		if lic.MaxUses > 0 && lic.UsedCount >= lic.MaxUses {
			return nil, fmt.Errorf("%w (%d/%d)", ErrLicenseQuotaExceeded, lic.UsedCount, lic.MaxUses)
		}
		if lic.DeviceID != "" && deviceID != "" && lic.DeviceID != deviceID {
			return nil, ErrLicenseDeviceMismatch
		}
		if userID != "" && lic.UserID != userID {
			return nil, ErrLicenseUserMismatch
		}

		lic.UsedCount++
		lic.LastUse = &now
		if deviceID != "" && lic.DeviceID == "" {
			lic.DeviceID = deviceID
			lic.ActivatedAt = &now
		}

		info = dto.LicenseInfo{
			LicenseKey:  lic.LicenseKey,
			UserID:      lic.UserID,
			Username:    lic.Username,
			Days:        lic.Days,
			MaxUses:     lic.MaxUses,
			UsedCount:   lic.UsedCount,
			CreatedAt:   lic.CreatedAt,
			ExpiresAt:   lic.ExpiresAt,
			DaysLeft:    daysLeft(lic.ExpiresAt, now),
			ActivatedAt: lic.ActivatedAt,
			DeviceID:    lic.DeviceID,
		}
		return licenses, nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.events.Append(ctx, "license_validated", map[string]any{
		"license_key": licenseKey,
		"user_id":     userID,
		"device_id":   deviceID,
	}); err != nil {
		slog.Error("failed to log license validation", "error", err)
	}

	return &info, nil
}

// daysLeft rounds up, so a license expiring in 9.1 days reports 10.
func daysLeft(expiresAt, now time.Time) int {
	return int(math.Ceil(expiresAt.Sub(now).Hours() / 24))
}
