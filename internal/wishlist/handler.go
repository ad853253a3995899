package wishlist

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/auth"
	"github.com/wichananm65/storefront-backend/internal/cart"
)

// Handler delegates wishlist operations to the wishlist service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/wishlist", h.getWishlist)
	app.Post("/api/v1/wishlist", h.addItem)
	app.Delete("/api/v1/wishlist", h.removeItem)
	app.Post("/api/v1/wishlist/move-to-cart", h.moveToCart)
}

func (h *Handler) getWishlist(c *fiber.Ctx) error {
	id, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	items, err := h.service.Fetch(c.UserContext(), id.UserID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"items": items})
}

func (h *Handler) addItem(c *fiber.Ctx) error {
	id, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(cart.ItemRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperr.BadRequest(c, err.Error())
	}
	if _, err := h.service.Add(c.UserContext(), id.UserID, payload.Key()); err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Added to wishlist"})
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	id, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(cart.ItemRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperr.BadRequest(c, err.Error())
	}
	if _, err := h.service.Remove(c.UserContext(), id.UserID, payload.Key()); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Removed from wishlist"})
}

func (h *Handler) moveToCart(c *fiber.Ctx) error {
	id, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(cart.ItemRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperr.BadRequest(c, err.Error())
	}
	if err := h.service.MoveToCart(c.UserContext(), id.UserID, payload.Key()); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Moved to cart"})
}
