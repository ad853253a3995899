package banner

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
	app.Get("/api/v1/banners/:slot", h.getBanners)
	app.Get("/api/v1/banners/item/:id<int>", h.getBanner)
}

func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Post("/banners/:slot", h.createBanner)
	r.Put("/banners/:id<int>", h.updateBanner)
	r.Delete("/banners/:id<int>", h.deleteBanner)
}

func (h *Handler) getBanners(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext(), c.Params("slot"))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(items)
}

func (h *Handler) getBanner(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	item, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(item)
}

func formInput(c *fiber.Ctx) (Input, []*multipart.FileHeader) {
	in := Input{
		Title:       c.FormValue("title"),
		Heading:     c.FormValue("heading"),
		Description: c.FormValue("description"),
		Link:        c.FormValue("link"),
	}
	form, err := c.MultipartForm()
	if err != nil {
		return in, nil
	}
	return in, form.File["photos"]
}

func (h *Handler) createBanner(c *fiber.Ctx) error {
	in, files := formInput(c)
	created, err := h.service.Create(c.UserContext(), c.Params("slot"), in, files)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateBanner(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	in, files := formInput(c)
	updated, err := h.service.Update(c.UserContext(), id, in, files)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) deleteBanner(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Banner deleted"})
}
