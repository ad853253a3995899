package analytics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/storefront-backend/internal/apperr"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/stats", h.getStats)
	r.Get("/pie", h.getPie)
	r.Get("/bar", h.getBar)
	r.Get("/line", h.getLine)
}

func (h *Handler) getStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"stats": stats})
}

func (h *Handler) getPie(c *fiber.Ctx) error {
	charts, err := h.service.Pie(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"charts": charts})
}

func (h *Handler) getBar(c *fiber.Ctx) error {
	charts, err := h.service.Bar(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"charts": charts})
}

func (h *Handler) getLine(c *fiber.Ctx) error {
	charts, err := h.service.Line(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"charts": charts})
}
