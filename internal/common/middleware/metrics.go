package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ============================================================
// Metrics Endpoint
// ============================================================

// Metrics отдаёт метрики Prometheus из реестра по умолчанию.
func Metrics() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
