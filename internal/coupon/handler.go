package coupon

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront-backend/internal/apperr"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/v1/coupons/validate", h.validate)
}

func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/coupons", h.list)
	r.Get("/coupons/:id<int>", h.get)
	r.Post("/coupons", h.create)
	r.Put("/coupons/:id<int>", h.update)
	r.Delete("/coupons/:id<int>", h.remove)
}

type validateRequest struct {
	Code        string          `json:"code"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

func (h *Handler) validate(c *fiber.Ctx) error {
	payload := new(validateRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperr.BadRequest(c, err.Error())
	}
	q, err := h.service.Validate(c.UserContext(), payload.Code, payload.TotalAmount)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(q)
}

func (h *Handler) list(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(items)
}

func (h *Handler) get(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	item, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(item)
}

func (h *Handler) create(c *fiber.Ctx) error {
	payload := new(Input)
	if err := c.BodyParser(payload); err != nil {
		return apperr.BadRequest(c, err.Error())
	}
	created, err := h.service.Create(c.UserContext(), *payload)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) update(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	payload := new(Input)
	if err := c.BodyParser(payload); err != nil {
		return apperr.BadRequest(c, err.Error())
	}
	updated, err := h.service.Update(c.UserContext(), id, *payload)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) remove(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Coupon deleted"})
}
