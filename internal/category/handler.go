package category

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
	app.Get("/api/v1/categories", h.getCategories)
	app.Get("/api/v1/categories/:id<int>", h.getCategory)
}

func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Post("/categories", h.createCategory)
	r.Put("/categories/:id<int>", h.updateCategory)
	r.Delete("/categories/:id<int>", h.deleteCategory)
	r.Post("/categories/:id<int>/subcategories", h.addSubcategory)
	r.Put("/categories/:id<int>/subcategories/:subId<int>", h.updateSubcategory)
	r.Delete("/categories/:id<int>/subcategories/:subId<int>", h.deleteSubcategory)
}

func (h *Handler) getCategories(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(items)
}

func (h *Handler) getCategory(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	item, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(item)
}

// photos are optional on both create and update
func formPhotos(c *fiber.Ctx) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	return form.File["photos"]
}

func (h *Handler) createCategory(c *fiber.Ctx) error {
	created, err := h.service.Create(c.UserContext(), c.FormValue("name"), formPhotos(c))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateCategory(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	updated, err := h.service.Update(c.UserContext(), id, c.FormValue("name"), formPhotos(c))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) deleteCategory(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Category deleted"})
}

type subcategoryRequest struct {
	Name string `json:"name"`
}

func (h *Handler) addSubcategory(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	payload := new(subcategoryRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperr.BadRequest(c, err.Error())
	}
	sub, err := h.service.AddSubcategory(c.UserContext(), id, payload.Name)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

func (h *Handler) updateSubcategory(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	subID, _ := strconv.Atoi(c.Params("subId"))
	payload := new(SubcategoryInput)
	if err := c.BodyParser(payload); err != nil {
		return apperr.BadRequest(c, err.Error())
	}
	sub, err := h.service.UpdateSubcategory(c.UserContext(), id, subID, *payload)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(sub)
}

func (h *Handler) deleteSubcategory(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	subID, _ := strconv.Atoi(c.Params("subId"))
	if err := h.service.DeleteSubcategory(c.UserContext(), id, subID); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Subcategory deleted"})
}
