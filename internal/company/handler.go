package company

import (
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/storefront-backend/internal/apperr"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/company", h.getCompanies)
}

func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/company/:id<int>", h.getCompany)
	r.Post("/company", h.createCompany)
	r.Put("/company/:id<int>", h.updateCompany)
	r.Delete("/company/:id<int>", h.deleteCompany)
}

func (h *Handler) getCompanies(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(items)
}

func (h *Handler) getCompany(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	item, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(item)
}

func formInput(c *fiber.Ctx) (Input, *multipart.FileHeader) {
	in := Input{
		Address:   c.FormValue("address"),
		Phone:     c.FormValue("phone"),
		Email:     c.FormValue("email"),
		Facebook:  c.FormValue("facebook"),
		Twitter:   c.FormValue("twitter"),
		Instagram: c.FormValue("instagram"),
		Linkedin:  c.FormValue("linkedin"),
	}
	logo, err := c.FormFile("logo")
	if err != nil {
		return in, nil
	}
	return in, logo
}

func (h *Handler) createCompany(c *fiber.Ctx) error {
	in, logo := formInput(c)
	created, err := h.service.Create(c.UserContext(), in, logo)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateCompany(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	in, logo := formInput(c)
	updated, err := h.service.Update(c.UserContext(), id, in, logo)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) deleteCompany(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Company info deleted"})
}
