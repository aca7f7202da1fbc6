package api

import (
	"commandlayer/internal/api/handlers"
	"commandlayer/internal/models"
	"commandlayer/internal/repository"
	"commandlayer/pkg/config"
	"commandlayer/pkg/middleware"
	"commandlayer/pkg/ratelimit"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func SetupRouter(
	authCfg *config.AuthConfig,
	commandHandler *handlers.CommandHandler,
	observabilityHandler *handlers.ObservabilityHandler,
	apiKeys *repository.APIKeyRepository,
	limiter *ratelimit.FixedWindow,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-API-Key",
	}))
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Protected routes
	api := app.Group("/api/v1", middleware.APIKeyAuth(authCfg, apiKeys, limiter, appLogger))

	api.Post("/commands",
		middleware.RequireRole(models.APIKeyRoleAdmin, models.APIKeyRoleRunner),
		commandHandler.ExecuteCommand,
	)

	readonly := middleware.RequireRole(models.APIKeyRoleAdmin, models.APIKeyRoleRunner, models.APIKeyRoleReadonly)
	api.Get("/command-logs", readonly, observabilityHandler.ListCommandLogs)
	api.Get("/assets", readonly, observabilityHandler.ListAssets)
	api.Get("/tasks", readonly, observabilityHandler.ListTasks)

	return app
}
