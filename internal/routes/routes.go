package routes

import (
	"time"

	"github.com/ambitiondl/xueke-backend/internal/config"
	"github.com/ambitiondl/xueke-backend/internal/dto"
	"github.com/ambitiondl/xueke-backend/internal/handlers"
	"github.com/ambitiondl/xueke-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	licenseHandler *handlers.LicenseHandler,
	userHandler *handlers.UserHandler,
	taskHandler *handlers.TaskHandler,
	systemHandler *handlers.SystemHandler,
	downloadHandler *handlers.DownloadHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/ping", systemHandler.Ping)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", authHandler.Logout)

	api.Post("/license/validate", licenseHandler.Validate)

	api.Get("/users", userHandler.List)
	api.Get("/users/:id", userHandler.Get)
	api.Post("/users/:id/activity", userHandler.TouchActivity)
	api.Get("/users/:id/tasks", userHandler.Tasks)

	api.Get("/tasks", taskHandler.List)
	api.Post("/tasks", taskHandler.Create)
	api.Get("/tasks/:id", taskHandler.Get)
	api.Post("/tasks/:id/process", taskHandler.Process)
	api.Get("/tasks/:id/download", taskHandler.Download)
	api.Get("/tasks/:id/status", taskHandler.Status)

	api.Get("/stats", systemHandler.Stats)

	// Admin surface (JWT + admin role)
	jwt := middleware.JWTProtected(cfg)
	adminOnly := middleware.AdminRequired()
	api.Post("/users", jwt, adminOnly, userHandler.Create)
	api.Post("/settings", jwt, adminOnly, systemHandler.SaveSettings)
	api.Get("/backup", jwt, adminOnly, systemHandler.Backup)
	api.Post("/cleanup", jwt, adminOnly, systemHandler.Cleanup)

	app.Get("/download/:taskId/:filename", downloadHandler.Serve)

	// Unknown routes -> 404 JSON
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Not Found",
		})
	})
}
