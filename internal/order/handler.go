package order

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/auth"
)

// Handler delegates order operations to the order service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/orders", h.createOrder)
	app.Get("/api/v1/orders/me", h.getMyOrders)
	app.Get("/api/v1/orders/:id<int>", h.getOrder)
}

func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/orders", h.getAllOrders)
	r.Put("/orders/:id<int>/advance", h.advanceOrder)
	r.Delete("/orders/:id<int>", h.cancelOrder)
}

func (h *Handler) createOrder(c *fiber.Ctx) error {
	caller, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(PlaceInput)
	if err := c.BodyParser(payload); err != nil {
		return apperr.BadRequest(c, err.Error())
	}
	created, err := h.service.Place(c.UserContext(), caller.UserID, *payload)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) getMyOrders(c *fiber.Ctx) error {
	caller, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	orders, err := h.service.Mine(c.UserContext(), caller)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(orders)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	caller, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, _ := strconv.Atoi(c.Params("id"))
	o, err := h.service.Get(c.UserContext(), caller, id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) getAllOrders(c *fiber.Ctx) error {
	orders, err := h.service.All(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(orders)
}

func (h *Handler) advanceOrder(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	o, err := h.service.Advance(c.UserContext(), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) cancelOrder(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	if _, err := h.service.Cancel(c.UserContext(), id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order deleted"})
}
