package handlers

import (
	"errors"
	"fmt"

	"github.com/ambitiondl/xueke-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// DownloadHandler serves the synthesized artifact payloads under
// /download/:taskId/:filename.
type DownloadHandler struct {
	taskService *services.TaskService
}

func NewDownloadHandler(taskService *services.TaskService) *DownloadHandler {
	return &DownloadHandler{taskService: taskService}
}

func (h *DownloadHandler) Serve(c *fiber.Ctx) error {
	taskID := c.Params("taskId")
	filename := c.Params("filename")

	file, err := h.taskService.FileContent(c.Context(), taskID, filename)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			return c.Status(fiber.StatusNotFound).SendString("Task not found")
		case errors.Is(err, services.ErrFileNotFound):
			return c.Status(fiber.StatusNotFound).SendString("File not found")
		case errors.Is(err, services.ErrTaskNotCompleted):
			return c.Status(fiber.StatusBadRequest).SendString("Task not completed")
		}
		return c.Status(fiber.StatusInternalServerError).SendString("Download failed")
	}

	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Set(fiber.HeaderCacheControl, "no-cache")
	return c.Send(file.Body)
}
