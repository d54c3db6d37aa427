package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/arnold/goalforge-api/internal/metrics"
)

// Instrument records request counts and latency by route pattern, so that
// /api/goals/:id is one series rather than one per goal.
func Instrument(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}
		m.ObserveRequest(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
