// Package authtest injects caller identities into fiber apps under test
// without signing real tokens.
package authtest

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// Middleware turns X-User-ID and X-Role headers into the *jwt.Token that
// jwtware would have stored in Locals("user").
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				claims := jwt.MapClaims{"user_id": id}
				if role := c.Get("X-Role"); role != "" {
					claims["role"] = role
				}
				c.Locals("user", &jwt.Token{Claims: claims})
			}
		}
		return c.Next()
	}
}
