package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ambitiondl/xueke-backend/internal/config"
	"github.com/ambitiondl/xueke-backend/internal/handlers"
	"github.com/ambitiondl/xueke-backend/internal/logging"
	"github.com/ambitiondl/xueke-backend/internal/middleware"
	"github.com/ambitiondl/xueke-backend/internal/repository"
	"github.com/ambitiondl/xueke-backend/internal/routes"
	"github.com/ambitiondl/xueke-backend/internal/services"
	"github.com/ambitiondl/xueke-backend/internal/store"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}

	// Store backend
	st, err := openStore(cfg)
	if err != nil {
		slog.Error("store connection failed", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	slog.Info("store connected", "backend", cfg.StoreBackend)

	repo := repository.New(st)

	// Services
	eventLog := services.NewEventLogService(repo, cfg.LogCap)
	notifier := services.NewNotifier(eventLog)
	authService := services.NewAuthService(repo, eventLog, cfg)
	userService := services.NewUserService(repo, eventLog)
	licenseService := services.NewLicenseService(repo, eventLog)
	taskService := services.NewTaskService(repo, eventLog, notifier, cfg.BaseURL, cfg.TaskStepDelay)
	systemService := services.NewSystemService(repo, eventLog, userService)

	// Event-log slog handler (ERROR+ async batch)
	storeLogHandler := logging.NewStoreHandler(eventLog)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		storeLogHandler,
	)))

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	licenseHandler := handlers.NewLicenseHandler(licenseService)
	userHandler := handlers.NewUserHandler(userService, taskService)
	taskHandler := handlers.NewTaskHandler(taskService)
	systemHandler := handlers.NewSystemHandler(systemService, taskService, cfg)
	downloadHandler := handlers.NewDownloadHandler(taskService)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, authHandler, licenseHandler, userHandler, taskHandler, systemHandler, downloadHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	storeLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	if err := st.Close(); err != nil {
		slog.Error("store close error", "error", err)
	}

	slog.Info("server stopped")
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case "sqlite":
		return store.NewSQLite(cfg.SQLitePath)
	case "memory":
		return store.NewMemory(), nil
	default:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return store.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
