package handler

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"civicdocs/internal/service"
)

// AdminCleanup runs a retention sweep on demand and reports how many expired
// documents it archived.
func AdminCleanup(sweeper service.RetentionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		processed, err := sweeper.Sweep(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		return c.JSON(fiber.Map{
			"success":       true,
			"deleted_count": processed,
			"message":       fmt.Sprintf("archived %d expired documents", processed),
		})
	}
}

// AdminStatistics reports storage aggregates over active documents.
func AdminStatistics(stats service.StatsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := stats.Stats(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		return c.JSON(fiber.Map{
			"success":    true,
			"statistics": res,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
		})
	}
}
