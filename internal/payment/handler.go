package payment

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/auth"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/payments", h.createPayment)
	app.Post("/api/v1/payments/execute", h.executePayment)
}

func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/payments", h.listPayments)
}

type createRequest struct {
	OrderID int `json:"orderId"`
}

type executeRequest struct {
	OrderID   int    `json:"orderId"`
	PaymentID string `json:"paymentId"`
	PayerID   string `json:"payerId"`
}

func (h *Handler) createPayment(c *fiber.Ctx) error {
	caller, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(createRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperr.BadRequest(c, err.Error())
	}
	a, err := h.service.Create(c.UserContext(), caller, payload.OrderID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(a)
}

func (h *Handler) executePayment(c *fiber.Ctx) error {
	caller, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(executeRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperr.BadRequest(c, err.Error())
	}
	p, err := h.service.Execute(c.UserContext(), caller, payload.OrderID, payload.PaymentID, payload.PayerID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Payment successful", "paymentDetails": p})
}

func (h *Handler) listPayments(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(items)
}
