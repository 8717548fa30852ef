package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ruche-hive/ruche/internal/auth"
	"github.com/ruche-hive/ruche/internal/errors"
	"github.com/ruche-hive/ruche/internal/logging"
)

// errorHandler answers every failed request with {"message": ...}.
func errorHandler(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		logging.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(ErrorResponse{Message: err.Error()})
}

func statusFor(err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return errors.HTTPStatus(err)
}

// requestLogger logs method, path, status and duration of each request.
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = statusFor(err)
		}
		logging.Info("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration", time.Since(start),
			"request_id", c.Locals("requestid"),
		)
		return err
	}
}

// requestTimeout gives every request a context with the configured deadline.
func requestTimeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// bearerAuth rejects requests without a valid token.
func bearerAuth(signer *auth.Signer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		claims, err := signer.Parse(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		c.Locals("operator", claims.Operator)
		return c.Next()
	}
}
