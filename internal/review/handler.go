package review

import (
	"strconv"

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

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/products/:id<int>/reviews", h.getReviews)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/products/:id<int>/reviews", h.submitReview)
}

func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Delete("/products/:id<int>/reviews/:reviewId<int>", h.deleteReview)
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *Handler) getReviews(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	items, err := h.service.List(c.UserContext(), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(items)
}

func (h *Handler) submitReview(c *fiber.Ctx) error {
	caller, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, _ := strconv.Atoi(c.Params("id"))
	payload := new(reviewRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperr.BadRequest(c, err.Error())
	}
	rv, err := h.service.Submit(c.UserContext(), caller, id, payload.Rating, payload.Comment)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rv)
}

func (h *Handler) deleteReview(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	reviewID, _ := strconv.Atoi(c.Params("reviewId"))
	if err := h.service.Delete(c.UserContext(), id, reviewID); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Review deleted"})
}
