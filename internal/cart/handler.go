package cart

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/auth"
)

// Handler delegates cart operations to the cart service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/cart", h.getCart)
	app.Post("/api/v1/cart", h.addToCart)
	app.Put("/api/v1/cart", h.updateQuantity)
	app.Delete("/api/v1/cart", h.removeItem)
	app.Post("/api/v1/cart/clear-ordered", h.clearOrdered)
}

// ItemRequest is the body shared by cart and wishlist item routes.
type ItemRequest struct {
	ProductID int      `json:"productId"`
	Quantity  int      `json:"quantity"`
	Size      Selector `json:"size"`
	SeamSize  Selector `json:"seamSize"`
	ColorName string   `json:"colorName"`
}

func (r ItemRequest) Key() Key {
	return NewKey(r.ProductID, r.Size, r.SeamSize, r.ColorName)
}

func (h *Handler) identity(c *fiber.Ctx) (int, bool) {
	id, err := auth.FromCtx(c)
	if err != nil {
		return 0, false
	}
	return id.UserID, true
}

func (h *Handler) respondCart(c *fiber.Ctx, userID int, status int) error {
	items, err := h.service.Fetch(c.UserContext(), userID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(status).JSON(fiber.Map{"items": items})
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	userID, ok := h.identity(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	return h.respondCart(c, userID, fiber.StatusOK)
}

func (h *Handler) addToCart(c *fiber.Ctx) error {
	userID, ok := h.identity(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(ItemRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperr.BadRequest(c, err.Error())
	}
	_, err := h.service.Add(c.UserContext(), userID, AddInput{
		ProductID: payload.ProductID,
		Quantity:  payload.Quantity,
		Size:      payload.Size,
		SeamSize:  payload.SeamSize,
		ColorName: payload.ColorName,
	})
	if err != nil {
		return apperr.Respond(c, err)
	}
	return h.respondCart(c, userID, fiber.StatusOK)
}

func (h *Handler) updateQuantity(c *fiber.Ctx) error {
	userID, ok := h.identity(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(ItemRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperr.BadRequest(c, err.Error())
	}
	if _, err := h.service.UpdateQuantity(c.UserContext(), userID, payload.Key(), payload.Quantity); err != nil {
		return apperr.Respond(c, err)
	}
	return h.respondCart(c, userID, fiber.StatusOK)
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	userID, ok := h.identity(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(ItemRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperr.BadRequest(c, err.Error())
	}
	if _, err := h.service.Remove(c.UserContext(), userID, payload.Key()); err != nil {
		return apperr.Respond(c, err)
	}
	return h.respondCart(c, userID, fiber.StatusOK)
}

type clearRequest struct {
	ProductIDs []int `json:"productIds"`
}

func (h *Handler) clearOrdered(c *fiber.Ctx) error {
	userID, ok := h.identity(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(clearRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperr.BadRequest(c, err.Error())
	}
	if _, err := h.service.ClearByProductIDs(c.UserContext(), userID, payload.ProductIDs); err != nil {
		return apperr.Respond(c, err)
	}
	return h.respondCart(c, userID, fiber.StatusOK)
}
