package handlers

import (
	"fmt"

	"github.com/ambitiondl/xueke-backend/internal/config"
	"github.com/ambitiondl/xueke-backend/internal/dto"
	"github.com/ambitiondl/xueke-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type SystemHandler struct {
	systemService *services.SystemService
	taskService   *services.TaskService
	cfg           *config.Config
}

func NewSystemHandler(systemService *services.SystemService, taskService *services.TaskService, cfg *config.Config) *SystemHandler {
	return &SystemHandler{systemService: systemService, taskService: taskService, cfg: cfg}
}

func (h *SystemHandler) Ping(c *fiber.Ctx) error {
	return c.JSON(h.systemService.Ping())
}

func (h *SystemHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.systemService.Stats(c.Context())
	if err != nil {
		return internalError(c)
	}
	return c.JSON(stats)
}

func (h *SystemHandler) SaveSettings(c *fiber.Ctx) error {
	var patch map[string]any
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	settings, err := h.systemService.SaveSettings(c.Context(), patch)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SettingsResponse{
		Success:  true,
		Message:  "settings saved",
		Settings: settings,
	})
}

func (h *SystemHandler) Backup(c *fiber.Ctx) error {
	backup, err := h.systemService.Backup(c.Context())
	if err != nil {
		return internalError(c)
	}
	return c.JSON(backup)
}

func (h *SystemHandler) Cleanup(c *fiber.Ctx) error {
	cleaned, remaining, err := h.taskService.Cleanup(c.Context(), h.cfg.TaskRetentionDays, h.cfg.LogKeepCleanup)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(dto.CleanupResponse{
		Success:        true,
		Message:        fmt.Sprintf("cleanup finished, removed %d old tasks", cleaned),
		CleanedTasks:   cleaned,
		RemainingTasks: remaining,
	})
}
