package address

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/auth"
)

// Handler delegates address operations to the address service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/address", h.getAddresses)
	app.Post("/api/v1/address", h.addAddress)
	app.Put("/api/v1/address/:id<int>", h.updateAddress)
	app.Delete("/api/v1/address/:id<int>", h.deleteAddress)
}

func (h *Handler) getAddresses(c *fiber.Ctx) error {
	caller, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	addrs, err := h.service.List(c.UserContext(), caller.UserID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(addrs)
}

func (h *Handler) addAddress(c *fiber.Ctx) error {
	caller, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(Input)
	if err := c.BodyParser(payload); err != nil {
		return apperr.BadRequest(c, err.Error())
	}

	addr, err := h.service.Add(c.UserContext(), caller.UserID, *payload)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(addr)
}

func (h *Handler) updateAddress(c *fiber.Ctx) error {
	caller, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, _ := strconv.Atoi(c.Params("id"))
	payload := new(Input)
	if err := c.BodyParser(payload); err != nil {
		return apperr.BadRequest(c, err.Error())
	}

	addr, err := h.service.Update(c.UserContext(), caller.UserID, id, *payload)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(addr)
}

func (h *Handler) deleteAddress(c *fiber.Ctx) error {
	caller, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, _ := strconv.Atoi(c.Params("id"))
	if err := h.service.Delete(c.UserContext(), caller.UserID, id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Address deleted"})
}
