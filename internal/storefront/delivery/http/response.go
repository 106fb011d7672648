package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tair/furniture-storefront/internal/query"
	"github.com/tair/furniture-storefront/internal/storefront/domain"
	"github.com/tair/furniture-storefront/internal/transport"
)

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func fail(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

// respondResult writes a query result; Loading answers 202 so the shell can poll again
func respondResult[T any](c *fiber.Ctx, res query.Result[T]) error {
	switch res.Status {
	case query.StatusLoading:
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"success": true,
			"status":  query.StatusLoading,
		})
	case query.StatusError:
		return fail(c, statusFor(res.Err), res.Err)
	default:
		return ok(c, res.Data)
	}
}

// respondError maps domain and transport errors to HTTP statuses
func respondError(c *fiber.Ctx, err error) error {
	return fail(c, statusFor(err), err)
}

func statusFor(err error) int {
	switch {
	case domain.IsValidation(err), errors.Is(err, domain.ErrEmptyCart), errors.Is(err, transport.ErrInvalid):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotAuthenticated), errors.Is(err, transport.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, transport.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrNotReady), errors.Is(err, transport.ErrUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusBadGateway
	}
}

// ErrorHandler handles errors globally
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"success":   false,
		"error":     err.Error(),
		"path":      c.Path(),
		"method":    c.Method(),
		"requestId": c.Get(fiber.HeaderXRequestID),
	})
}
