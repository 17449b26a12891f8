// handlers/response.go
package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"checkpoint-rewards/pkg/apperrors"
	"checkpoint-rewards/pkg/logger"
)

// Envelope is the body shape every JSON endpoint returns.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func success(c *fiber.Ctx, data any, message string) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Success: true, Data: data, Message: message})
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Envelope{Success: false, Error: message})
}

// failWith maps an error to its HTTP status. Server-side failures are logged
// with the route; expected outcomes (validation, rate limit) are not.
func failWith(c *fiber.Ctx, err error) error {
	status := apperrors.HTTPStatus(err)
	fields := logrus.Fields{"method": c.Method(), "path": c.Path(), "status": status}
	switch {
	case status >= fiber.StatusInternalServerError:
		logger.WithFields(fields).WithError(err).Error("request failed")
	case status == fiber.StatusTooManyRequests:
		logger.WithFields(fields).Info(apperrors.Message(err))
	}
	return fail(c, status, apperrors.Message(err))
}

// parseBody decodes JSON into v, answering 400 on malformed input.
func parseBody(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return apperrors.Validation("Invalid request body")
	}
	return nil
}
