package http

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tenant-stock-api/pkg/metrics"
)

// MetricsMiddleware cuenta peticiones y mide su duración por método, ruta y status.
// Usa la ruta registrada (p. ej. /api/inventory/items/:identifier) para no explotar la cardinalidad.
func MetricsMiddleware(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		path := c.Route().Path
		method := c.Method()
		code := strconv.Itoa(status)

		m.HTTPRequestsTotal.WithLabelValues(method, path, code).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path, code).Observe(time.Since(start).Seconds())
		return err
	}
}
