package auth

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/wichananm65/storefront-backend/internal/apperr"
)

// Middleware validates the bearer token and stores it under Locals("user").
func Middleware(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: []byte(secret),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		},
	})
}

// Roles reports the stored role of a user. A deleted user must come back as
// apperr.ErrNotFound.
type Roles interface {
	CurrentRole(ctx context.Context, userID int) (string, error)
}

// Refresh runs after Middleware and replaces the role carried by the token
// with the stored one, so demoted or deleted users lose access before
// their token expires.
func Refresh(roles Roles) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := FromCtx(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		}
		role, err := roles.CurrentRole(c.UserContext(), id.UserID)
		if errors.Is(err, apperr.ErrNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		}
		if err != nil {
			return apperr.Respond(c, err)
		}
		id.Role = role
		c.Locals(identityKey, id)
		return c.Next()
	}
}

// RequireRole rejects callers whose role is not in roles.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := FromCtx(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		}
		for _, r := range roles {
			if id.Role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Role: " + id.Role + " is not allowed to access this resource",
		})
	}
}
