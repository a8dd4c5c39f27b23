package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

// ============================================================
// Logger Middleware
// ============================================================

// Logger пишет строку доступа на каждый запрос, вместе с query-строкой:
// по ней видно страницу и фильтр запросов к доске.
func Logger() fiber.Handler {
	return logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${url} | ${bytesSent}B\n",
		TimeFormat: "15:04:05.00",
		TimeZone:   "Local",
	})
}
