package handlers

import (
	"errors"

	"github.com/ambitiondl/xueke-backend/internal/dto"
	"github.com/ambitiondl/xueke-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) List(c *fiber.Ctx) error {
	tasks, err := h.taskService.List(c.Context())
	if err != nil {
		return internalError(c)
	}
	return c.JSON(tasks)
}

func (h *TaskHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	task, err := h.taskService.Create(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidTaskInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return internalError(c)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.TaskResponse{
		Success: true,
		Message: "task created",
		Task:    task,
	})
}

func (h *TaskHandler) Get(c *fiber.Ctx) error {
	task, err := h.taskService.Get(c.Context(), c.Params("id"))
	if err != nil {
		return taskError(c, err)
	}
	return c.JSON(task)
}

func (h *TaskHandler) Process(c *fiber.Ctx) error {
	task, err := h.taskService.Start(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrTaskNotPending) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return taskError(c, err)
	}
	return c.JSON(dto.TaskResponse{
		Success: true,
		Message: "task processing started",
		Task:    task,
	})
}

func (h *TaskHandler) Status(c *fiber.Ctx) error {
	status, err := h.taskService.Status(c.Context(), c.Params("id"))
	if err != nil {
		return taskError(c, err)
	}
	return c.JSON(status)
}

func (h *TaskHandler) Download(c *fiber.Ctx) error {
	info, err := h.taskService.DownloadInfo(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrTaskNotCompleted) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return taskError(c, err)
	}
	return c.JSON(info)
}

func taskError(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrTaskNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return internalError(c)
}
