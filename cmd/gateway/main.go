package main

import (
	"fmt"
	"os"
	"time"

	"widget-board/internal/common/config"
	"widget-board/internal/common/logging"
	"widget-board/internal/common/middleware"
	"widget-board/internal/gateway/handlers"
	"widget-board/internal/gateway/proxy"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// API Gateway
// ============================================================

func main() {
	logger := logging.New(os.Stderr, "info", "gateway")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", "err", err)
	}
	logger.SetLevel(logging.ParseLevel(cfg.LogLevel))

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "API Gateway",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// ============================================================
	// Health Check & Docs Routes
	// ============================================================

	app.Get("/health/live", handlers.LivenessProbe)
	app.Get("/health/ready", handlers.ReadinessProbe(cfg.WidgetsURL))
	app.Get("/health/startup", handlers.StartupProbe)

	app.Get("/docs", handlers.SwaggerUI)
	app.Get("/docs/openapi.yaml", handlers.SwaggerSpec)
	app.Get("/metrics", middleware.Metrics())

	// ============================================================
	// API Routes
	// ============================================================

	api := app.Group("/api/v1")

	api.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Widget Board API v1",
			"status":  "ok",
		})
	})

	// ============================================================
	// Service Routes (Proxy)
	// ============================================================

	proxy.New(cfg.WidgetsURL, logger).Mount(api, "/widgets", "/api/widgets")

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Info("starting API gateway", "addr", addr, "env", cfg.Environment, "widgets", cfg.WidgetsURL)

	if err := app.Listen(addr); err != nil {
		logger.Fatal("failed to start server", "err", err)
	}
}
