package auth

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/wichananm65/storefront-backend/internal/apperr"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity is the resolved caller handed to service operations.
type Identity struct {
	UserID int
	Role   string
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

const identityKey = "identity"

// FromCtx returns the identity Refresh resolved, falling back to the
// user_id and role claims of the token jwtware stored in c.Locals("user").
func FromCtx(c *fiber.Ctx) (Identity, error) {
	if id, ok := c.Locals(identityKey).(Identity); ok {
		return id, nil
	}
	tok, ok := c.Locals("user").(*jwt.Token)
	if !ok || tok == nil {
		return Identity{}, apperr.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, apperr.ErrUnauthorized
	}
	id, ok := claimInt(claims["user_id"])
	if !ok || id <= 0 {
		return Identity{}, apperr.ErrUnauthorized
	}
	role, _ := claims["role"].(string)
	if role == "" {
		role = RoleUser
	}
	return Identity{UserID: id, Role: role}, nil
}

func claimInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case string:
		id, err := strconv.Atoi(v)
		return id, err == nil
	default:
		return 0, false
	}
}
