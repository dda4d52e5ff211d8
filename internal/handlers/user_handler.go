package handlers

import (
	"errors"

	"github.com/ambitiondl/xueke-backend/internal/dto"
	"github.com/ambitiondl/xueke-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService *services.UserService
	taskService *services.TaskService
}

func NewUserHandler(userService *services.UserService, taskService *services.TaskService) *UserHandler {
	return &UserHandler{userService: userService, taskService: taskService}
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.userService.List(c.Context())
	if err != nil {
		return internalError(c)
	}
	return c.JSON(users)
}

func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.userService.Create(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingFields):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrUsernameTaken), errors.Is(err, services.ErrEmailTaken):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return internalError(c)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.CreateUserResponse{
		Success: true,
		Message: "user created",
		UserID:  user.ID,
		User: dto.UserSummary{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			UserType:  user.UserType,
			IsActive:  user.IsActive,
			CreatedAt: user.CreatedAt,
		},
	})
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	detail, err := h.userService.Get(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return internalError(c)
	}
	return c.JSON(detail)
}

func (h *UserHandler) TouchActivity(c *fiber.Ctx) error {
	if err := h.userService.TouchActivity(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return internalError(c)
	}
	return c.JSON(dto.AckResponse{Success: true, Message: "activity updated"})
}

func (h *UserHandler) Tasks(c *fiber.Ctx) error {
	tasks, err := h.taskService.ListByUser(c.Context(), c.Params("id"))
	if err != nil {
		return internalError(c)
	}
	return c.JSON(tasks)
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
