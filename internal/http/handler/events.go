package handler

import (
	"github.com/gofiber/fiber/v2"

	"doctransfer/internal/events"
)

// S3Events handles POST /events/s3: S3 notification webhooks for completed uploads.
func S3Events(dispatcher *events.Dispatcher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		evs, err := events.DecodeS3Event(c.Body())
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_EVENT", "invalid event payload")
		}

		processed, err := dispatcher.Dispatch(c.UserContext(), evs)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INGEST_FAILED", "one or more uploads could not be ingested")
		}
		return c.JSON(fiber.Map{"processed": processed})
	}
}
