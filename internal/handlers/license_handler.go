package handlers

import (
	"errors"
	"fmt"

	"github.com/ambitiondl/xueke-backend/internal/dto"
	"github.com/ambitiondl/xueke-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type LicenseHandler struct {
	licenseService *services.LicenseService
}

func NewLicenseHandler(licenseService *services.LicenseService) *LicenseHandler {
	return &LicenseHandler{licenseService: licenseService}
}

func (h *LicenseHandler) Validate(c *fiber.Ctx) error {
	var req dto.ValidateLicenseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ValidateLicenseResponse{
			Valid: false, Error: "invalid request body",
		})
	}
	if req.LicenseKey == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ValidateLicenseResponse{
			Valid: false, Error: "license_key is required",
		})
	}

	info, err := h.licenseService.Validate(c.Context(), req.LicenseKey, req.DeviceID, req.UserID)
	if err != nil {
		status := fiber.StatusBadRequest
		if errors.Is(err, services.ErrLicenseNotFound) {
			status = fiber.StatusNotFound
		}
		if !isLicenseError(err) {
			status = fiber.StatusInternalServerError
			err = errors.New("license validation failed")
		}
		return c.Status(status).JSON(dto.ValidateLicenseResponse{
			Valid: false, Error: err.Error(),
		})
	}

	return c.JSON(dto.ValidateLicenseResponse{
		Valid:       true,
		Message:     fmt.Sprintf("license valid, %d days left", info.DaysLeft),
		LicenseInfo: info,
	})
}

func isLicenseError(err error) bool {
	for _, known := range []error{
		services.ErrLicenseNotFound,
		services.ErrLicenseInactive,
		services.ErrLicenseExpired,
		services.ErrLicenseQuotaExceeded,
		services.ErrLicenseDeviceMismatch,
		services.ErrLicenseUserMismatch,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}
