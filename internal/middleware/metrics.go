package middleware

import (
	"time"

	"evspare/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// Metrics records request counts and latency by matched route. statusOf maps a
// handler error to the status the app error handler will send.
func Metrics(statusOf func(error) int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = statusOf(err)
		}

		route := c.Route().Path
		method := c.Method()
		metrics.HTTPRequestsTotal.WithLabelValues(method, route, metrics.StatusClass(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}
